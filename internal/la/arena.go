package la

// Arena collects intermediate matrices so they can be released together.
//
// Trainers create one Arena per minibatch step: every temporary produced
// while computing and applying gradients is tracked and handed back to its
// context in one Release call, letting pooling backends reuse the buffers
// on the next step.
//
// The zero value is ready to use. An Arena is not safe for concurrent use.
type Arena struct {
	tracked []*Matrix
}

// Track records m for release and returns it.
func (a *Arena) Track(m *Matrix) *Matrix {
	if m != nil {
		a.tracked = append(a.tracked, m)
	}
	return m
}

// TrackErr records m for release and passes err through.
// It lets fallible operations be tracked inline:
//
//	sum, err := arena.TrackErr(x.Add(y))
func (a *Arena) TrackErr(m *Matrix, err error) (*Matrix, error) {
	if err != nil {
		return nil, err
	}
	return a.Track(m), nil
}

// Len returns the number of tracked matrices.
func (a *Arena) Len() int {
	return len(a.tracked)
}

// Release releases every tracked matrix except those listed in keep.
func (a *Arena) Release(keep ...*Matrix) {
	for _, m := range a.tracked {
		kept := false
		for _, k := range keep {
			if m == k {
				kept = true
				break
			}
		}
		if !kept {
			m.Release()
		}
	}
	clear(a.tracked)
	a.tracked = a.tracked[:0]
}
