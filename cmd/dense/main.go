// Package main provides the dense CLI: it lists compute devices and trains
// feed-forward networks described by a YAML config.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/born-ml/dense/internal/backend/webgpu"
	"github.com/born-ml/dense/internal/config"
	"github.com/born-ml/dense/internal/serialization"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("dense %s\n", version)
	case "devices":
		devices()
	case "train":
		train(os.Args[2:])
	case "inspect":
		inspect(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dense <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  version    Show version")
	fmt.Fprintln(os.Stderr, "  devices    List accelerator devices")
	fmt.Fprintln(os.Stderr, "  train      Train a network from a YAML config")
	fmt.Fprintln(os.Stderr, "  inspect    Print the manifest of a stored model")
}

func devices() {
	found := webgpu.Devices()
	if len(found) == 0 {
		fmt.Println("no accelerator devices; the cpu backend is always available")
		return
	}
	for _, d := range found {
		fmt.Println(d)
	}
}

func train(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "dense.yaml", "path to YAML config")
	backend := fs.String("backend", "", "override backend (cpu or webgpu)")
	device := fs.Int("device", 0, "override accelerator index")
	epochs := fs.Int("epochs", 0, "override epoch count")
	learningRate := fs.Float64("lr", 0, "override learning rate")
	batchSize := fs.Int("batch", 0, "override batch size")
	seed := fs.Int64("seed", 0, "override weight initialization seed")
	output := fs.String("output", "", "override model directory")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.ApplyOverrides(config.Overrides{
		Backend:      *backend,
		Device:       *device,
		Epochs:       *epochs,
		LearningRate: *learningRate,
		BatchSize:    *batchSize,
		Seed:         *seed,
		Output:       *output,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "dense: ", log.LstdFlags)
	summary, err := run(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("train: %v", err)
	}
	fmt.Println(summary)
}

func inspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("usage: dense inspect <model-dir>")
	}

	manifest, err := serialization.ReadManifest(fs.Arg(0))
	if err != nil {
		log.Fatalf("inspect: %v", err)
	}
	fmt.Printf("model %s (format %d, created %s)\n", manifest.ModelID, manifest.FormatVersion, manifest.CreatedAt.Format("2006-01-02 15:04:05"))
	for i, l := range manifest.Layers {
		fmt.Printf("  layer %d: %d -> %d %s\n", i, l.InputSize, l.OutputSize, l.Activation)
	}
}
