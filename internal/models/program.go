package models

// ProgramPart is one scheduled item of an event program. Free-text notes
// are keyed by the part ID, headcounts by the session ID.
type ProgramPart struct {
	ID       string `json:"id"`
	Session  string `json:"session,omitempty"`
	Time     string `json:"time"`
	Title    string `json:"title"`
	Duration int    `json:"duration,omitempty"` // minutes
}

// AssemblyProgram is a schedule template, possibly user-edited. The program
// type selects the local storage key the program is cached under.
type AssemblyProgram struct {
	ProgramType string        `json:"programType"`
	Parts       []ProgramPart `json:"parts"`
}

// Clone returns a deep copy of the program.
func (p *AssemblyProgram) Clone() *AssemblyProgram {
	if p == nil {
		return nil
	}
	c := &AssemblyProgram{ProgramType: p.ProgramType}
	if p.Parts != nil {
		c.Parts = make([]ProgramPart, len(p.Parts))
		copy(c.Parts, p.Parts)
	}
	return c
}

// IsEmpty reports whether the program has no parts.
func (p *AssemblyProgram) IsEmpty() bool {
	return p == nil || len(p.Parts) == 0
}
