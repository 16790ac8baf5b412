package models

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"taskify/internal/errs"
)

// Status is the task workflow state. Any state may be set directly;
// there is no enforced transition graph.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

// Field bounds shared by the API layer and the service layer.
const (
	TitleMaxLen       = 255
	DescriptionMaxLen = 2000
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

type Task struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;index:idx_tasks_user_created,priority:1"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Status      Status    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_tasks_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeTitle trims the title and checks the non-empty and length
// invariants. Returns the trimmed title or a ValidationError.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errs.Validation("title", "must not be empty")
	}
	if len(title) > TitleMaxLen {
		return "", errs.Validation("title", "must be at most 255 characters")
	}
	return title, nil
}

// ValidateDescription checks the description length bound.
func ValidateDescription(description string) error {
	if len(description) > DescriptionMaxLen {
		return errs.Validation("description", "must be at most 2000 characters")
	}
	return nil
}
