package cpu

const stackSize = 16

// callStack holds return addresses. depth counts the live entries, so an
// empty stack is depth == 0 rather than a wrapped pointer.
type callStack struct {
	entries [stackSize]uint16
	depth   int
}

func (s *callStack) push(addr uint16) error {
	if s.depth == stackSize {
		return ErrStackOverflow
	}
	s.entries[s.depth] = addr
	s.depth++
	return nil
}

func (s *callStack) pop() (uint16, error) {
	if s.depth == 0 {
		return 0, ErrStackUnderflow
	}
	s.depth--
	return s.entries[s.depth], nil
}
