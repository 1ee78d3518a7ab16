package model

// TaskStatus represents the lifecycle state of a download task
type TaskStatus string

const (
	// TaskStatusIdle means the task was created but not started
	TaskStatusIdle TaskStatus = "Idle"

	// TaskStatusPending means the task is queued waiting for a free slot
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusRunning means the engine is transferring or transcoding
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusStopping means cancellation was requested and cleanup is in progress
	TaskStatusStopping TaskStatus = "Stopping"

	// TaskStatusSucceeded means the engine returned normally
	TaskStatusSucceeded TaskStatus = "Succeeded"

	// TaskStatusCancelled means the task was cancelled by the user
	TaskStatusCancelled TaskStatus = "Cancelled"

	// TaskStatusFailed means the engine raised an error
	TaskStatusFailed TaskStatus = "Failed"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusRunning || ts == TaskStatusStopping
}

// IsFinished returns true if the task reached a terminal state (succeeded, cancelled, or failed)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusSucceeded || ts == TaskStatusCancelled || ts == TaskStatusFailed
}
