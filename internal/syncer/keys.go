package syncer

import (
	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/models"
)

// Local cache keys are namespaced by event id plus a semantic suffix. Each
// UI section persists its own slice of the document; the composed document
// only ever exists in memory and in the remote row. The variant- and
// type-suffixed keys double as the implicit schema version of what was
// written, so the scheme must not change.

func structureKey(eventID string, mt models.ManagementType) string {
	if mt == models.ManagementConvention {
		return eventID + common.SuffixConventionStructure
	}
	return eventID + common.SuffixStructure
}

func notesKey(eventID string) string      { return eventID + common.SuffixNotes }
func attendanceKey(eventID string) string { return eventID + common.SuffixAttendance }

func programKey(eventID, programType string) string {
	return eventID + common.SuffixProgram + programType
}

func lastTypeKey(eventID string) string { return eventID + common.SuffixLastEventType }

// sessionKey stores the active session record.
const sessionKey = "active_session"
