package nav

// Stack is the ordered sequence of open frames. It is never empty: the
// root frame cannot be popped.
type Stack struct {
	frames []Frame
}

func NewStack(root Frame) *Stack {
	return &Stack{frames: []Frame{root}}
}

func (s *Stack) Push(f Frame) {
	s.frames = append(s.frames, f)
}

// Pop discards the top frame and returns it. At depth 1 it does nothing and
// reports false.
func (s *Stack) Pop() (Frame, bool) {
	if len(s.frames) <= 1 {
		return nil, false
	}
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return top, true
}

func (s *Stack) Top() Frame { return s.frames[len(s.frames)-1] }
func (s *Stack) Depth() int { return len(s.frames) }

// Frames returns the frames from root to top.
func (s *Stack) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}
