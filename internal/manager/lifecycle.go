package manager

import "task-tracker/internal/models"

// taskState - состояние задачи в жизненном цикле
type taskState int

const (
	stateActive taskState = iota
	stateCompleted
	stateRemoved
)

func (s taskState) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateCompleted:
		return "completed"
	case stateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

func stateOf(task *models.Task) taskState {
	if task.Completed {
		return stateCompleted
	}
	return stateActive
}

// canTransition: Active -> Completed, любое живое -> Removed. Обратного пути в Active нет.
func canTransition(from, to taskState) bool {
	switch from {
	case stateActive:
		return to == stateCompleted || to == stateRemoved
	case stateCompleted:
		return to == stateRemoved
	default:
		return false
	}
}
