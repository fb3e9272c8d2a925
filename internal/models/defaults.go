package models

func dept(name string, assistants int) DepartmentAssignment {
	return DepartmentAssignment{
		Name:               name,
		Assistants:         make([]*VolunteerData, assistants),
		RequiredAssistants: assistants,
	}
}

// DefaultOrgStructure returns the default assignment template for the given
// event type. The result is freshly allocated on every call, so callers may
// mutate it freely.
func DefaultOrgStructure(t EventType) *OrgStructure {
	if t.Variant() == ManagementConvention {
		return &OrgStructure{
			CoordDepartments: DefaultCoordDepartments(),
			ProgDepartments:  DefaultProgDepartments(),
			RoomDepartments:  DefaultRoomDepartments(),
		}
	}
	return &OrgStructure{
		AODepartments:  DefaultAODepartments(),
		AAODepartments: DefaultAAODepartments(),
	}
}

// DefaultAODepartments lists the departments reporting to the assembly
// overseer.
func DefaultAODepartments() []DepartmentAssignment {
	return []DepartmentAssignment{
		dept("Attendants", 4),
		dept("Parking", 2),
		dept("Sound & Stage", 2),
		dept("First Aid", 1),
		dept("Information", 1),
	}
}

// DefaultAAODepartments lists the departments reporting to the assistant
// assembly overseer.
func DefaultAAODepartments() []DepartmentAssignment {
	return []DepartmentAssignment{
		dept("Cleaning", 4),
		dept("Accounts", 1),
		dept("Checkroom", 2),
	}
}

// DefaultCoordDepartments lists the convention coordinator's departments.
func DefaultCoordDepartments() []DepartmentAssignment {
	return []DepartmentAssignment{
		dept("Attendants", 6),
		dept("Parking", 4),
		dept("Cleaning", 6),
		dept("First Aid", 2),
		dept("Safety", 2),
	}
}

// DefaultProgDepartments lists the program overseer's departments.
func DefaultProgDepartments() []DepartmentAssignment {
	return []DepartmentAssignment{
		dept("Sound", 3),
		dept("Stage", 2),
		dept("Audio/Video", 2),
		dept("Interpreting", 1),
	}
}

// DefaultRoomDepartments lists the rooming overseer's departments.
func DefaultRoomDepartments() []DepartmentAssignment {
	return []DepartmentAssignment{
		dept("Rooming", 2),
		dept("Information & Volunteer Service", 2),
	}
}

// DefaultProgram returns the default schedule template for the given event
// type, freshly allocated.
func DefaultProgram(t EventType) *AssemblyProgram {
	switch t {
	case EventTypeConvention:
		return &AssemblyProgram{
			ProgramType: string(EventTypeConvention),
			Parts: []ProgramPart{
				{ID: "fri-am-music", Session: "fri-am", Time: "09:20", Title: "Music-Video Presentation", Duration: 10},
				{ID: "fri-am-opening", Session: "fri-am", Time: "09:30", Title: "Song and Prayer", Duration: 10},
				{ID: "fri-am-chairman", Session: "fri-am", Time: "09:40", Title: "Chairman's Address", Duration: 30},
				{ID: "fri-am-symposium", Session: "fri-am", Time: "10:10", Title: "Symposium, Part 1", Duration: 50},
				{ID: "fri-pm-drama", Session: "fri-pm", Time: "13:30", Title: "Drama", Duration: 45},
				{ID: "fri-pm-closing", Session: "fri-pm", Time: "16:40", Title: "Concluding Talk", Duration: 30},
			},
		}
	case EventTypeAssemblyCO:
		return &AssemblyProgram{
			ProgramType: string(EventTypeAssemblyCO),
			Parts: []ProgramPart{
				{ID: "am-music", Session: "am", Time: "09:30", Title: "Music-Video Presentation", Duration: 10},
				{ID: "am-opening", Session: "am", Time: "09:40", Title: "Song and Prayer", Duration: 10},
				{ID: "am-chairman", Session: "am", Time: "09:50", Title: "Chairman's Address", Duration: 20},
				{ID: "am-baptism", Session: "am", Time: "11:30", Title: "Baptism Talk", Duration: 30},
				{ID: "pm-co-talk", Session: "pm", Time: "14:50", Title: "Circuit Overseer's Talk", Duration: 40},
				{ID: "pm-closing", Session: "pm", Time: "15:50", Title: "Concluding Comments", Duration: 15},
			},
		}
	default:
		return &AssemblyProgram{
			ProgramType: string(EventTypeAssemblyBR),
			Parts: []ProgramPart{
				{ID: "am-music", Session: "am", Time: "09:30", Title: "Music-Video Presentation", Duration: 10},
				{ID: "am-opening", Session: "am", Time: "09:40", Title: "Song and Prayer", Duration: 10},
				{ID: "am-chairman", Session: "am", Time: "09:50", Title: "Chairman's Address", Duration: 20},
				{ID: "am-baptism", Session: "am", Time: "11:30", Title: "Baptism Talk", Duration: 30},
				{ID: "pm-br-talk", Session: "pm", Time: "14:50", Title: "Bethel Representative's Talk", Duration: 40},
				{ID: "pm-closing", Session: "pm", Time: "15:50", Title: "Concluding Comments", Duration: 15},
			},
		}
	}
}
