package session

// EventKind names what changed.
type EventKind string

const (
	EventFileSelected        EventKind = "file_selected"
	EventTranscribeStarted   EventKind = "transcribe_started"
	EventTranscribeCompleted EventKind = "transcribe_completed"
	EventTranscribeFailed    EventKind = "transcribe_failed"
	EventDismissed           EventKind = "dismissed"
	EventRefineStarted       EventKind = "refine_started"
	EventRefineCompleted     EventKind = "refine_completed"
	EventRefineFailed        EventKind = "refine_failed"
	EventFinalChanged        EventKind = "final_changed"
	EventEdited              EventKind = "edited"
	EventTabChanged          EventKind = "tab_changed"
	EventCleared             EventKind = "cleared"

	// EventSnapshot is never published by the orchestrator. Streams send it
	// first so a new subscriber starts from the current state.
	EventSnapshot EventKind = "snapshot"
)

// RefineFailurePrefix starts the alert shown when a refine fails.
const RefineFailurePrefix = "Failed to process request: "

// Event carries the state after a change. Message is set for failures.
type Event struct {
	Kind     EventKind `json:"kind"`
	Message  string    `json:"message,omitempty"`
	Snapshot Snapshot  `json:"snapshot"`
}
