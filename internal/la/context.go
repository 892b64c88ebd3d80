package la

import "fmt"

// Kind identifies the family of a compute backend.
type Kind int

// Supported backend kinds.
const (
	Host Kind = iota
	Accelerator
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Host:
		return "host"
	case Accelerator:
		return "accelerator"
	default:
		return "unknown"
	}
}

// Device describes an accelerator visible on this machine.
type Device struct {
	ID      int    // Position in the enumeration order.
	Name    string // Adapter description reported by the driver.
	Backend string // Native API behind the adapter (e.g. "WebGPU").
}

// String returns "Backend:ID (Name)".
func (d Device) String() string {
	return fmt.Sprintf("%s:%d (%s)", d.Backend, d.ID, d.Name)
}

// Buffer is backend-resident element storage.
// Only the Context that allocated a Buffer may interpret it.
type Buffer interface {
	// Len returns the number of float32 elements.
	Len() int
}

// Context is the capability set every compute backend implements.
//
// Implementations:
//   - backend/cpu: host memory, gonum BLAS for products
//   - backend/webgpu: accelerator device via WebGPU compute shaders
//
// All shape and context validation happens in Matrix before any of these
// methods are called: backends may assume well-formed, non-empty operands
// and a destination that does not alias any source. Every method must
// return only after its result is observable through Download.
type Context interface {
	// Metadata.
	Name() string // Backend name (e.g. "CPU", "WebGPU (adapter)").
	Kind() Kind   // Backend family.

	// Storage.
	Allocate(n int) Buffer            // Uninitialized storage for n elements.
	Upload(dst Buffer, src []float32) // Copy host values into dst.
	Download(src Buffer) []float32    // Copy of all elements.
	Get(src Buffer, i int) float32    // Single element read.
	Set(dst Buffer, i int, v float32) // Single element write.
	Release(buf Buffer)               // Return storage to the backend.

	// Matrix operations. Shapes are row-major (rows, cols).
	MatMul(dst, a, b Buffer, m, k, n int)                     // dst(m,n) = a(m,k) @ b(k,n).
	Transpose(dst, src Buffer, rows, cols int)                // dst(cols,rows) = srcᵀ.
	Concat(dst, a, b Buffer, rows, colsA, colsB int)          // dst = [a | b].
	Slice(dst, src Buffer, srcCols, row, col, rows, cols int) // dst = src[row:row+rows, col:col+cols].
	SumRows(dst, src Buffer, rows, cols int)                  // dst(1,cols) = column sums.
	SumColumns(dst, src Buffer, rows, cols int)               // dst(rows,1) = row sums.

	// Element-wise binary operations.
	Add(dst, a, b Buffer)      // a + b.
	Sub(dst, a, b Buffer)      // a - b.
	Hadamard(dst, a, b Buffer) // a * b.

	// Scalar operations.
	Scale(dst, src Buffer, s float32)     // src * s.
	DivScalar(dst, src Buffer, s float32) // src / s.
	AddScalar(dst, src Buffer, s float32) // src + s.

	// Element-wise math and activations.
	Log(dst, src Buffer)                     // Natural logarithm.
	Sigmoid(dst, src Buffer)                 // 1 / (1 + exp(-x)).
	SigmoidGradient(dst, src Buffer)         // y * (1 - y) of sigmoid outputs.
	Tanh(dst, src Buffer)                    // Hyperbolic tangent.
	TanhGradient(dst, src Buffer)            // 1 - y² of tanh outputs.
	ReLU(dst, src Buffer)                    // max(0, x).
	ReLUGradient(dst, src Buffer)            // 1 where y > 0, else 0.
	Softmax(dst, src Buffer, rows, cols int) // Row-wise softmax.
}
