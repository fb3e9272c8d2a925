// Package models defines the event document and its parts: the org
// structure, committee, department assignments, volunteers and program
// templates synchronized between the local store and the remote backend.
package models

// EventType discriminates which default schema applies to an event.
type EventType string

const (
	// EventTypeAssemblyCO is a circuit assembly with the circuit overseer.
	EventTypeAssemblyCO EventType = "CIRCUIT_ASSEMBLY_CO"
	// EventTypeAssemblyBR is a circuit assembly with a Bethel representative.
	EventTypeAssemblyBR EventType = "CIRCUIT_ASSEMBLY_BR"
	// EventTypeConvention is a regional convention.
	EventTypeConvention EventType = "REGIONAL_CONVENTION"
)

// DefaultEventType applies when a session carries no explicit type hint.
const DefaultEventType = EventTypeAssemblyBR

// ManagementType is the structural variant governing which department
// arrays and committee roles apply. An org structure is never "mixed":
// exactly one variant's arrays are populated.
type ManagementType string

const (
	ManagementAssembly   ManagementType = "ASSEMBLY"
	ManagementConvention ManagementType = "CONVENTION"
)

// Variant maps an event type onto its structural variant.
func (t EventType) Variant() ManagementType {
	if t == EventTypeConvention {
		return ManagementConvention
	}
	return ManagementAssembly
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeAssemblyCO, EventTypeAssemblyBR, EventTypeConvention:
		return true
	}
	return false
}

// CurrentSchemaVersion tags documents written by this release. Earlier
// documents carry 0 (the field did not exist) and are upgraded by
// reconciliation, never rejected.
const CurrentSchemaVersion = 2

// EventDocument is the unit of synchronization: the fully composed,
// canonical state of one event. Locally the document is stored as separate
// slices under suffixed keys; the remote store always holds the whole
// document in a single row.
type EventDocument struct {
	Org           *OrgStructure     `json:"org,omitempty"`
	Notes         map[string]string `json:"notes,omitempty"`
	Attendance    map[string]string `json:"attendance,omitempty"`
	Program       *AssemblyProgram  `json:"program,omitempty"`
	Type          EventType         `json:"type,omitempty"`
	Version       string            `json:"version,omitempty"`
	SchemaVersion int               `json:"schemaVersion,omitempty"`
}

// Clone returns a deep copy sharing no maps, slices or pointers with the
// receiver. Snapshots handed to a concurrent uploader must not alias the
// live document.
func (d *EventDocument) Clone() *EventDocument {
	if d == nil {
		return nil
	}
	c := *d
	c.Org = d.Org.Clone()
	c.Program = d.Program.Clone()
	c.Notes = cloneStringMap(d.Notes)
	c.Attendance = cloneStringMap(d.Attendance)
	return &c
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
