package serialization

// SetWriteWeights replaces the weights writer used by Store and returns a
// function restoring the previous one.
func SetWriteWeights(fn func(path string, tensors []Tensor, metadata map[string]string) error) (restore func()) {
	previous := writeWeights
	writeWeights = fn
	return func() { writeWeights = previous }
}
