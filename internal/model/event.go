package model

// ProgressEvent is a normalized progress notification. Percent is always in [0, 100].
type ProgressEvent struct {
	Percent int
	Label   string
}

// OutcomeKind tags the terminal result of a task
type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is emitted exactly once per task, always as its last event.
// Message carries the verbatim engine error for failures.
type Outcome struct {
	Kind       OutcomeKind
	Message    string
	OutputPath string // set on success when the engine reports it
}

// Status maps the outcome to the matching terminal task status
func (o Outcome) Status() TaskStatus {
	switch o.Kind {
	case OutcomeSucceeded:
		return TaskStatusSucceeded
	case OutcomeCancelled:
		return TaskStatusCancelled
	default:
		return TaskStatusFailed
	}
}

// Event is one message on a task's event channel: either a progress update or the outcome.
type Event struct {
	Progress *ProgressEvent
	Outcome  *Outcome
}

// IsTerminal reports whether the event carries the task outcome
func (e Event) IsTerminal() bool {
	return e.Outcome != nil
}
