package models

// VolunteerData is a person record placed into overseer, assistant,
// attendant or parking slots. A volunteer is owned by exactly one slot at a
// time: moving between slots is copy plus null-out, never a shared pointer.
type VolunteerData struct {
	Name         string `json:"name"`
	Congregation string `json:"congregation,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Consent      bool   `json:"consent,omitempty"`
}

// Clone returns an independent copy of the volunteer.
func (v *VolunteerData) Clone() *VolunteerData {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// DepartmentAssignment is one named department with an overseer slot and a
// fixed number of assistant slots.
type DepartmentAssignment struct {
	Name               string           `json:"name"`
	Overseer           *VolunteerData   `json:"overseer"`
	Assistants         []*VolunteerData `json:"assistants"`
	RequiredAssistants int              `json:"requiredAssistants"`
}

// Clone returns a deep copy of the department.
func (d DepartmentAssignment) Clone() DepartmentAssignment {
	c := d
	c.Overseer = d.Overseer.Clone()
	if d.Assistants != nil {
		c.Assistants = make([]*VolunteerData, len(d.Assistants))
		for i, a := range d.Assistants {
			c.Assistants[i] = a.Clone()
		}
	}
	return c
}

// Committee holds the named leadership roles of an event. Which slots are
// populated depends on the event type: assemblies use the overseer pair,
// conventions the coordinator/program/rooming trio.
type Committee struct {
	AssemblyOverseer          *VolunteerData `json:"assemblyOverseer,omitempty"`
	AssistantAssemblyOverseer *VolunteerData `json:"assistantAssemblyOverseer,omitempty"`
	ConventionCoordinator     *VolunteerData `json:"conventionCoordinator,omitempty"`
	ProgramOverseer           *VolunteerData `json:"programOverseer,omitempty"`
	RoomingOverseer           *VolunteerData `json:"roomingOverseer,omitempty"`
	Congregation              string         `json:"congregation,omitempty"`
}

// IsEmpty reports whether no committee slot or congregation is filled.
func (c Committee) IsEmpty() bool {
	return c.AssemblyOverseer == nil &&
		c.AssistantAssemblyOverseer == nil &&
		c.ConventionCoordinator == nil &&
		c.ProgramOverseer == nil &&
		c.RoomingOverseer == nil &&
		c.Congregation == ""
}

// OrgStructure is the committee plus department assignment trees for one
// event. The assembly variant populates AODepartments/AAODepartments; the
// convention variant populates the Coord/Prog/Room arrays. Reconciliation
// backfills exactly one variant's arrays, never both.
type OrgStructure struct {
	Committee Committee `json:"committee"`

	// Assembly variant.
	AODepartments  []DepartmentAssignment `json:"aoDepartments,omitempty"`
	AAODepartments []DepartmentAssignment `json:"aaoDepartments,omitempty"`

	// Convention variant.
	CoordDepartments []DepartmentAssignment `json:"coordDepartments,omitempty"`
	ProgDepartments  []DepartmentAssignment `json:"progDepartments,omitempty"`
	RoomDepartments  []DepartmentAssignment `json:"roomDepartments,omitempty"`
}

// IsEmpty reports whether the structure holds no committee data and no
// departments at all. Used both as the "nothing loaded" probe and as the
// live-edit guard before a reload.
func (o *OrgStructure) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.Committee.IsEmpty() &&
		len(o.AODepartments) == 0 && len(o.AAODepartments) == 0 &&
		len(o.CoordDepartments) == 0 && len(o.ProgDepartments) == 0 &&
		len(o.RoomDepartments) == 0
}

// Variant infers the structural variant from which department arrays are
// populated. Empty structures report the assembly variant.
func (o *OrgStructure) Variant() ManagementType {
	if o == nil {
		return ManagementAssembly
	}
	if len(o.CoordDepartments) > 0 || len(o.ProgDepartments) > 0 || len(o.RoomDepartments) > 0 {
		return ManagementConvention
	}
	return ManagementAssembly
}

// Clone returns a deep copy of the org structure.
func (o *OrgStructure) Clone() *OrgStructure {
	if o == nil {
		return nil
	}
	c := &OrgStructure{Committee: o.Committee}
	c.Committee.AssemblyOverseer = o.Committee.AssemblyOverseer.Clone()
	c.Committee.AssistantAssemblyOverseer = o.Committee.AssistantAssemblyOverseer.Clone()
	c.Committee.ConventionCoordinator = o.Committee.ConventionCoordinator.Clone()
	c.Committee.ProgramOverseer = o.Committee.ProgramOverseer.Clone()
	c.Committee.RoomingOverseer = o.Committee.RoomingOverseer.Clone()
	c.AODepartments = cloneDepartments(o.AODepartments)
	c.AAODepartments = cloneDepartments(o.AAODepartments)
	c.CoordDepartments = cloneDepartments(o.CoordDepartments)
	c.ProgDepartments = cloneDepartments(o.ProgDepartments)
	c.RoomDepartments = cloneDepartments(o.RoomDepartments)
	return c
}

func cloneDepartments(src []DepartmentAssignment) []DepartmentAssignment {
	if src == nil {
		return nil
	}
	out := make([]DepartmentAssignment, len(src))
	for i, d := range src {
		out[i] = d.Clone()
	}
	return out
}
