package services

// Command is one undoable project mutation. apply performs the mutation
// and returns its inverse; commands only reach the history after applying
// successfully, so a failed command leaves the history untouched.
type Command interface {
	Label() string
	apply(p *Project) (Command, error)
}

// UndoStack holds the two command histories. Applying a fresh command
// clears the redo side.
type UndoStack struct {
	undo []Command
	redo []Command
}

func (s *UndoStack) CanUndo() bool { return len(s.undo) > 0 }
func (s *UndoStack) CanRedo() bool { return len(s.redo) > 0 }

// UndoLabel names the command Undo would reverse, "" when there is none.
func (s *UndoStack) UndoLabel() string {
	if len(s.undo) == 0 {
		return ""
	}
	return s.undo[len(s.undo)-1].Label()
}

// RedoLabel names the command Redo would reapply, "" when there is none.
func (s *UndoStack) RedoLabel() string {
	if len(s.redo) == 0 {
		return ""
	}
	return s.redo[len(s.redo)-1].Label()
}

func (s *UndoStack) push(inverse Command) {
	s.undo = append(s.undo, inverse)
	s.redo = nil
}

func (s *UndoStack) clear() {
	s.undo = nil
	s.redo = nil
}
