package model

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses, in board order.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task categories
const (
	TaskCategoryWork     = "Work"
	TaskCategoryPersonal = "Personal"
	TaskCategoryOther    = "Other"
)

// Task priorities
const (
	TaskPriorityLow      = "low"
	TaskPriorityMedium   = "medium"
	TaskPriorityHigh     = "high"
	TaskPriorityCritical = "critical"
)

// Task is a card on an organization's board. Order is the position within
// the (organization, status) lane.
type Task struct {
	BaseModel
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Description    *string    `gorm:"type:text" json:"description"`
	Status         string     `gorm:"type:varchar(20);not null;index:idx_task_lane,priority:2" json:"status"`
	Category       *string    `gorm:"type:varchar(20)" json:"category"`
	Order          int        `gorm:"column:position;not null" json:"order"`
	Priority       *string    `gorm:"type:varchar(20)" json:"priority"`
	DueDate        *time.Time `json:"due_date"`
	AssigneeID     *uuid.UUID `gorm:"type:uuid;index" json:"assignee_id"`
	Assignee       *User      `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"-"`
	IssueKey       *string    `gorm:"type:varchar(50)" json:"issue_key"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index:idx_task_lane,priority:1" json:"organization_id"`
	CreatedByID    uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy      *User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserRef is the short user reference in task details.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// TaskDetail adds creator and assignee to a task.
type TaskDetail struct {
	Task
	CreatedByUser *UserRef `json:"created_by"`
	AssigneeUser  *UserRef `json:"assignee"`
}

func (t *Task) ToDetail() TaskDetail {
	return TaskDetail{Task: *t, CreatedByUser: t.CreatedBy.Ref(), AssigneeUser: t.Assignee.Ref()}
}
