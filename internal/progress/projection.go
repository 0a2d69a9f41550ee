package progress

// Frame is the per-level execution state that projection needs.
type Frame struct {
	// CompletedChildWork is the summed contribution of children that have finished.
	CompletedChildWork float64
	// OwnWorkDone is the portion of OwnEstimate the work function has reported.
	OwnWorkDone float64
	// ChildWorkTotal is the summed contribution of all attached children.
	ChildWorkTotal float64
	// OwnEstimate is the predicted work of the node's own function.
	OwnEstimate float64
	// Contribution is the weight this node adds to its parent when complete.
	Contribution float64
	// Complete is set once the node's work function has returned.
	Complete bool
	// Floor is the highest fraction already reported for this frame.
	Floor float64
}

// Total is the full estimate of the frame's level.
func (f Frame) Total() float64 {
	return f.ChildWorkTotal + f.OwnEstimate
}

// Fraction converts work done into a clamped fraction of total. A level
// with nothing estimated is fully determined by completion and reports 1.
func Fraction(done, total float64) float64 {
	if total <= 0 {
		return 1
	}
	return clamp01(done / total)
}

// ToParentWork converts a child's fraction into work done at its parent.
func ToParentWork(fraction, contribution float64) float64 {
	return clamp01(fraction) * contribution
}

// Project returns one fraction per frame, root first. Frames are ordered
// root to current; each frame's successor is its active child.
func Project(frames []Frame) []float64 {
	out := make([]float64, len(frames))
	childWork := 0.0
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		var fraction float64
		if f.Complete {
			fraction = 1
		} else {
			fraction = Fraction(f.CompletedChildWork+f.OwnWorkDone+childWork, f.Total())
		}
		if fraction < f.Floor {
			fraction = f.Floor
		}
		out[i] = fraction
		childWork = ToParentWork(fraction, f.Contribution)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
