package models

// Transcript is the ordered, append-only list of Turns shown in the widget.
// It is not safe for concurrent use; the widget controller guards it.
type Transcript struct {
	turns []Turn
}

// NewTranscript returns an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{turns: []Turn{}}
}

// Append adds a turn at the end of the transcript
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Len returns the number of turns
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of all turns in display order
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Last returns the newest turn, if any
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// LastByRole returns the newest turn written by role
func (t *Transcript) LastByRole(role Role) (Turn, bool) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == role {
			return t.turns[i], true
		}
	}
	return Turn{}, false
}

// WithSystem returns a new slice made of system followed by every turn of the
// transcript. This is the message list sent to the completion endpoint.
func (t *Transcript) WithSystem(system Turn) []Turn {
	out := make([]Turn, 0, len(t.turns)+1)
	out = append(out, system)
	out = append(out, t.turns...)
	return out
}
