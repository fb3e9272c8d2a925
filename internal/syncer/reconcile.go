package syncer

import (
	"reflect"
	"strings"

	"github.com/dmitrijs2005/assemblysync/internal/models"
)

// reconcileOrg backfills a loaded org structure against the default
// template for the given event type and returns the repaired structure plus
// whether anything changed.
//
// Rules, in order:
//   - arrays are atomic: a department array is adopted or replaced
//     wholesale, never merged element-wise. The committee carries no
//     default entries, so it passes through untouched;
//   - values present in the loaded structure always win — defaults never
//     override existing data;
//   - only the arrays of the resolved variant are backfilled, so an
//     assembly structure never grows convention arrays and vice versa;
//   - a variant array that exists but is empty (a corruption pattern left
//     behind by an old bug) is replaced with a deep copy of its default.
//
// The function is idempotent: reconciling an already-reconciled structure
// is a no-op.
func reconcileOrg(loaded *models.OrgStructure, t models.EventType) (*models.OrgStructure, bool) {
	defaults := models.DefaultOrgStructure(t)

	if loaded == nil {
		return defaults, true
	}

	merged := loaded.Clone()

	if t.Variant() == models.ManagementConvention {
		if len(merged.CoordDepartments) == 0 {
			merged.CoordDepartments = defaults.CoordDepartments
		}
		if len(merged.ProgDepartments) == 0 {
			merged.ProgDepartments = defaults.ProgDepartments
		}
		if len(merged.RoomDepartments) == 0 {
			merged.RoomDepartments = defaults.RoomDepartments
		}
	} else {
		if len(merged.AODepartments) == 0 {
			merged.AODepartments = defaults.AODepartments
		}
		if len(merged.AAODepartments) == 0 {
			merged.AAODepartments = defaults.AAODepartments
		}
	}

	reconcileDepartments(merged.AODepartments)
	reconcileDepartments(merged.AAODepartments)
	reconcileDepartments(merged.CoordDepartments)
	reconcileDepartments(merged.ProgDepartments)
	reconcileDepartments(merged.RoomDepartments)

	return merged, !reflect.DeepEqual(loaded, merged)
}

// reconcileDepartments normalizes fields a department saved under an older
// schema may lack: a nil assistants slice gains its required slots.
func reconcileDepartments(depts []models.DepartmentAssignment) {
	for i := range depts {
		d := &depts[i]
		if d.Assistants == nil && d.RequiredAssistants > 0 {
			d.Assistants = make([]*models.VolunteerData, d.RequiredAssistants)
		}
	}
}

// reconcileDocument fills the document-level holes a partial remote payload
// leaves behind: a missing program gains the default for the event's type,
// missing maps become empty, the org structure goes through reconcileOrg.
// Fields present in the payload are preserved verbatim.
func reconcileDocument(doc *models.EventDocument, t models.EventType) *models.EventDocument {
	if doc == nil {
		doc = &models.EventDocument{}
	}
	if doc.Type == "" {
		doc.Type = t
	}
	doc.Org, _ = reconcileOrg(doc.Org, doc.Type)
	if doc.Program.IsEmpty() {
		doc.Program = models.DefaultProgram(doc.Type)
	}
	if doc.Notes == nil {
		doc.Notes = map[string]string{}
	}
	if doc.Attendance == nil {
		doc.Attendance = map[string]string{}
	}
	if doc.SchemaVersion < models.CurrentSchemaVersion {
		doc.SchemaVersion = models.CurrentSchemaVersion
	}
	return doc
}

// canonicalID collapses the spellings an inconsistently entered event id
// may arrive in: surrounding whitespace is trimmed and spaces and hyphens
// are treated as the same separator. Two ids with equal canonical forms are
// considered spellings of the same event.
func canonicalID(eventID string) string {
	return strings.ReplaceAll(strings.TrimSpace(eventID), " ", "-")
}
