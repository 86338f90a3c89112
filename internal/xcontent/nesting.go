package xcontent

// nesting validates the order of generator calls shared by every encoding.
type nesting struct {
	frames    []nestFrame
	afterName bool
	rootDone  bool
}

type nestFrame struct {
	object bool
	n      int
}

// beforeValue registers a value (scalar or container start) and reports
// whether it is not the first member of an array.
func (s *nesting) beforeValue() (bool, error) {
	if s.afterName {
		s.afterName = false
		return false, nil
	}
	if len(s.frames) == 0 {
		if s.rootDone {
			return false, structuralError("more than one root value")
		}
		return false, nil
	}
	top := &s.frames[len(s.frames)-1]
	if top.object {
		return false, structuralError("object member without a field name")
	}
	top.n++
	return top.n > 1, nil
}

// beforeName registers a field name and reports whether it is not the first member.
func (s *nesting) beforeName() (bool, error) {
	if len(s.frames) == 0 || !s.frames[len(s.frames)-1].object {
		return false, structuralError("field name outside of an object")
	}
	if s.afterName {
		return false, structuralError("field name without a value")
	}
	top := &s.frames[len(s.frames)-1]
	top.n++
	s.afterName = true
	return top.n > 1, nil
}

func (s *nesting) push(object bool) {
	s.frames = append(s.frames, nestFrame{object: object})
}

// pop closes the innermost container and returns its member count.
func (s *nesting) pop(object bool) (int, error) {
	if len(s.frames) == 0 {
		return 0, structuralError("end without a matching start")
	}
	top := s.frames[len(s.frames)-1]
	if top.object != object {
		return 0, structuralError("mismatched container end")
	}
	if s.afterName {
		return 0, structuralError("object closed after a field name")
	}
	s.frames = s.frames[:len(s.frames)-1]
	if len(s.frames) == 0 {
		s.rootDone = true
	}
	return top.n, nil
}

func (s *nesting) scalarDone() {
	if len(s.frames) == 0 {
		s.rootDone = true
	}
}

func (s *nesting) depth() int { return len(s.frames) }

func (s *nesting) done() error {
	if len(s.frames) > 0 {
		return structuralError("%d unclosed container(s)", len(s.frames))
	}
	if !s.rootDone {
		return structuralError("no root value written")
	}
	return nil
}
