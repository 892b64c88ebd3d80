//go:build windows

package webgpu

import "fmt"

// workgroupSize is the number of invocations per 1D workgroup.
const workgroupSize = 256

// tileSize is the edge of a 2D workgroup.
const tileSize = 16

// binaryShader builds an element-wise kernel: result = expr(a, b).
func binaryShader(expr string) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = a[idx];
        let y = b[idx];
        result[idx] = %s;
    }
}
`, expr)
}

// unaryShader builds an element-wise kernel: result = expr(x).
func unaryShader(expr string) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = input[idx];
        result[idx] = %s;
    }
}
`, expr)
}

// scalarShader builds an element-wise kernel with a scalar operand s.
func scalarShader(expr string) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    scalar: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = input[idx];
        let s = params.scalar;
        result[idx] = %s;
    }
}
`, expr)
}

// Element-wise kernels, keyed by pipeline name.
var (
	addShader      = binaryShader("x + y")
	subShader      = binaryShader("x - y")
	hadamardShader = binaryShader("x * y")

	scaleShader     = scalarShader("x * s")
	divScalarShader = scalarShader("x / s")
	addScalarShader = scalarShader("x + s")

	logShader             = unaryShader("log(x)")
	sigmoidShader         = unaryShader("1.0 / (1.0 + exp(-x))")
	sigmoidGradientShader = unaryShader("x * (1.0 - x)")
	tanhShader            = unaryShader("tanh(x)")
	tanhGradientShader    = unaryShader("1.0 - x * x")
	reluShader            = unaryShader("max(0.0, x)")
	reluGradientShader    = unaryShader("select(0.0, 1.0, x > 0.0)")
)

// matmulShader computes C = A @ B, one invocation per output element.
// The inner product is accumulated in ascending k order.
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,
    K: u32,
    N: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;
    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[row * params.K + k] * b[k * params.N + col];
    }
    result[row * params.N + col] = sum;
}
`

// transposeShader writes inputᵀ.
const transposeShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;
    if (row >= params.rows || col >= params.cols) {
        return;
    }
    result[col * params.rows + row] = input[row * params.cols + col];
}
`

// concatShader writes [a | b] for row-aligned a and b.
const concatShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols_a: u32,
    cols_b: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;
    let cols = params.cols_a + params.cols_b;
    if (row >= params.rows || col >= cols) {
        return;
    }

    if (col < params.cols_a) {
        result[row * cols + col] = a[row * params.cols_a + col];
    } else {
        result[row * cols + col] = b[row * params.cols_b + (col - params.cols_a)];
    }
}
`

// sliceShader copies a rectangular block out of input.
const sliceShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    src_cols: u32,
    row: u32,
    col: u32,
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let r = global_id.y;
    let c = global_id.x;
    if (r >= params.rows || c >= params.cols) {
        return;
    }
    result[r * params.cols + c] = input[(params.row + r) * params.src_cols + params.col + c];
}
`

// sumRowsShader reduces each column to a single sum, top to bottom.
const sumRowsShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let col = global_id.x;
    if (col >= params.cols) {
        return;
    }

    var sum: f32 = 0.0;
    for (var r: u32 = 0u; r < params.rows; r = r + 1u) {
        sum = sum + input[r * params.cols + col];
    }
    result[col] = sum;
}
`

// sumColumnsShader reduces each row to a single sum, left to right.
const sumColumnsShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.rows) {
        return;
    }

    var sum: f32 = 0.0;
    for (var c: u32 = 0u; c < params.cols; c = c + 1u) {
        sum = sum + input[row * params.cols + c];
    }
    result[row] = sum;
}
`

// softmaxShader computes a numerically stable softmax per row.
const softmaxShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.rows) {
        return;
    }

    let offset = row * params.cols;

    var max_val: f32 = input[offset];
    for (var i: u32 = 1u; i < params.cols; i = i + 1u) {
        max_val = max(max_val, input[offset + i]);
    }

    var sum: f32 = 0.0;
    for (var i: u32 = 0u; i < params.cols; i = i + 1u) {
        let e = exp(input[offset + i] - max_val);
        result[offset + i] = e;
        sum = sum + e;
    }

    for (var i: u32 = 0u; i < params.cols; i = i + 1u) {
        result[offset + i] = result[offset + i] / sum;
    }
}
`
