// Package common contains the shared constants and sentinel errors used
// across the local store, encryption envelope, remote store client and the
// sync orchestrator. Match the errors with errors.Is.
package common

// Local storage key suffixes. The variant- and type-suffixed keys are the
// only place the persisted schema "version" is encoded, so the scheme must
// stay stable across releases.
const (
	SuffixStructure           = "_structure"
	SuffixConventionStructure = "_CONVENTION_structure"
	SuffixNotes               = "_notes"
	SuffixAttendance          = "_attendance"
	SuffixProgram             = "_program_" // followed by the program type
	SuffixLastEventType       = "_last_event_type"
)

// Credential keys for the remote store client. Persisted through the local
// store so a reconnect survives reloads.
const (
	KeyBackendURL = "cloud_backend_url"
	KeyBackendKey = "cloud_backend_key"
	KeyCloudPass  = "cloud_backend_pass"
)

// EventTableName is the single logical table holding one row per event.
const EventTableName = "event_document"
