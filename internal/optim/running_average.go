package optim

// RunningAverage is the mean of the most recent values added, up to a
// fixed window.
type RunningAverage struct {
	values []float32
	next   int
	count  int
}

// NewRunningAverage creates an average over the last window values.
// A window below 1 is treated as 1.
func NewRunningAverage(window int) *RunningAverage {
	return &RunningAverage{values: make([]float32, max(window, 1))}
}

// Add records a value, evicting the oldest one once the window is full.
func (r *RunningAverage) Add(value float32) {
	r.values[r.next] = value
	r.next = (r.next + 1) % len(r.values)
	r.count = min(r.count+1, len(r.values))
}

// Len returns the number of values currently averaged.
func (r *RunningAverage) Len() int {
	return r.count
}

// Value returns the mean of the recorded values, or 0 if there are none.
func (r *RunningAverage) Value() float32 {
	if r.count == 0 {
		return 0
	}
	var total float32
	for _, v := range r.values[:r.count] {
		total += v
	}
	return total / float32(r.count)
}
