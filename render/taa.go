// taa.go tracks the temporal anti-aliasing history/feedback state (spec
// 4.1.7), grounded on the ping-pong FBO bookkeeping pattern the teacher
// uses for bloom in internal/opengl/postprocess.go, generalized from a
// fixed blur pass count to a single current/history swap.
package render

const DefaultTAAFeedback = 0.9

// TAAState tracks which of a pair of history images holds the previous
// frame's resolved color, and whether the next pass must skip
// reprojection (first frame, or a detected invalid history).
type TAAState struct {
	HistoryIndex int // 0 or 1: which slot currently holds history
	Feedback     float32
	FirstFrame   bool
}

func NewTAAState() *TAAState {
	return &TAAState{Feedback: DefaultTAAFeedback, FirstFrame: true}
}

// Swap flips the current/history slot after a successful resolve (spec
// 4.1.7: "Swap current/history after each successful pass").
func (s *TAAState) Swap() {
	s.HistoryIndex = 1 - s.HistoryIndex
	s.FirstFrame = false
}

// Reset forces the next pass to skip reprojection (spec 4.1.7: "reset
// on first frame or when history reprojects outside [0,1]").
func (s *TAAState) Reset() {
	s.FirstFrame = true
}

// Blend computes the resolved TAA pixel given clamped history and
// current color (spec 4.1.7: "blends mix(current, clamp(history, min,
// max), feedback)"). The 3x3 neighborhood clamp itself happens in the
// fragment shader; this models the scalar blend the CPU side config
// drives via the transient UBO.
func (s *TAAState) Blend(current, clampedHistory float32) float32 {
	if s.FirstFrame {
		return current
	}
	return current*(1-s.Feedback) + clampedHistory*s.Feedback
}
