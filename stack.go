package main

// The stack is a standard LIFO of float64 values used implicitly by
// most operations.  The top four levels are conventionally called X,
// Y, Z and T after the HP register names, but the stack itself grows
// without bound.  Underflow traps; there is no overflow.
type stack []float64

func (s *stack) clear() {
	*s = (*s)[:0]
}

// need traps with StackUnderflow unless at least n values are present.
func (s *stack) need(n int, op string) {
	if len(*s) < n {
		panic(&Error{Errno: StackUnderflow, Op: op})
	}
}

func (s *stack) push(v float64) {
	*s = append(*s, v)
}

func (s *stack) pop() float64 {
	s.need(1, "")
	var v float64
	*s, v = (*s)[:len(*s)-1], (*s)[len(*s)-1]
	return v
}

func (s *stack) peek() float64 {
	s.need(1, "")
	return (*s)[len(*s)-1]
}

// rollDown moves the top value to the bottom of the stack.
func (s *stack) rollDown() {
	if len(*s) < 2 {
		return
	}
	t := (*s)[len(*s)-1]
	copy((*s)[1:], (*s)[:len(*s)-1])
	(*s)[0] = t
}

// rollUp moves the bottom value to the top of the stack.
func (s *stack) rollUp() {
	if len(*s) < 2 {
		return
	}
	b := (*s)[0]
	copy((*s)[:len(*s)-1], (*s)[1:])
	(*s)[len(*s)-1] = b
}
