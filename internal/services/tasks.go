// Package services contains the task CRUD and authentication services
// behind the HTTP handlers. Every task query is scoped by the owner's
// user id; a task belonging to someone else is indistinguishable from a
// missing one.
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskify/internal/errs"
	"taskify/internal/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// TaskCreate carries the fields of a create request.
type TaskCreate struct {
	Title       string
	Description string
	Status      models.Status
}

// TaskUpdate carries a partial update. Nil fields keep their prior value.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.Status
}

// ListOptions controls filtering and pagination of task listings.
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}

type TaskService interface {
	CreateTask(db *gorm.DB, userID uuid.UUID, in TaskCreate) (models.Task, error)
	GetTask(db *gorm.DB, userID uuid.UUID, idOrPrefix string) (models.Task, error)
	ListTasks(db *gorm.DB, userID uuid.UUID, opts ListOptions) ([]models.Task, int64, error)
	UpdateTask(db *gorm.DB, userID uuid.UUID, idOrPrefix string, in TaskUpdate) (models.Task, error)
	DeleteTask(db *gorm.DB, userID uuid.UUID, idOrPrefix string) (bool, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, in TaskCreate) (models.Task, error) {
	title, err := models.NormalizeTitle(in.Title)
	if err != nil {
		return models.Task{}, err
	}
	if err := models.ValidateDescription(in.Description); err != nil {
		return models.Task{}, err
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return models.Task{}, errs.Validation("status", "must be one of pending, in_progress, completed, archived")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.Task{}, err
	}
	now := time.Now().UTC()
	task := models.Task{
		ID:          id.String(),
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTask(db *gorm.DB, userID uuid.UUID, idOrPrefix string) (models.Task, error) {
	return resolveTask(db, userID, idOrPrefix)
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, opts ListOptions) ([]models.Task, int64, error) {
	if opts.Status != "" && !models.Status(opts.Status).Valid() {
		return nil, 0, errs.Validation("status", "unknown status filter")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := db.Model(&models.Task{}).Where("user_id = ?", userID)
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	// Total reflects the filtered set, not the page.
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID uuid.UUID, idOrPrefix string, in TaskUpdate) (task models.Task, err error) {
	// Validate everything before touching the row: a failed call must
	// leave every field unchanged.
	fields := map[string]any{}
	if in.Title != nil {
		title, terr := models.NormalizeTitle(*in.Title)
		if terr != nil {
			return models.Task{}, terr
		}
		fields["title"] = title
	}
	if in.Description != nil {
		if derr := models.ValidateDescription(*in.Description); derr != nil {
			return models.Task{}, derr
		}
		fields["description"] = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return models.Task{}, errs.Validation("status", "must be one of pending, in_progress, completed, archived")
		}
		fields["status"] = *in.Status
	}

	// Ownership check and mutation run in one transaction so a concurrent
	// delete of the same row surfaces as not-found rather than a partial
	// write.
	err = db.Transaction(func(tx *gorm.DB) error {
		task, err = resolveTask(tx, userID, idOrPrefix)
		if err != nil {
			return err
		}
		fields["updated_at"] = time.Now().UTC()
		res := tx.Model(&models.Task{}).
			Where("id = ? AND user_id = ?", task.ID, userID).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		return tx.First(&task, "id = ? AND user_id = ?", task.ID, userID).Error
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID uuid.UUID, idOrPrefix string) (bool, error) {
	var removed bool
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := resolveTask(tx, userID, idOrPrefix)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", task.ID, userID).Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if errors.Is(err, errs.ErrNotFound) {
		// Nothing to delete is a normal outcome, not an error.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return removed, nil
}

// resolveTask maps a full id or short prefix to exactly one task owned by
// userID. The prefix path uses an indexed LIKE query instead of loading
// the owner's id set into memory.
func resolveTask(db *gorm.DB, userID uuid.UUID, idOrPrefix string) (models.Task, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" || !validIDPrefix(idOrPrefix) {
		return models.Task{}, errs.ErrNotFound
	}

	var task models.Task
	err := db.First(&task, "id = ? AND user_id = ?", idOrPrefix, userID).Error
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, err
	}

	var matches []models.Task
	err = db.
		Where("user_id = ? AND id LIKE ?", userID, idOrPrefix+"%").
		Limit(2).
		Find(&matches).Error
	if err != nil {
		return models.Task{}, err
	}
	switch len(matches) {
	case 0:
		return models.Task{}, errs.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, &errs.AmbiguousIDError{Input: idOrPrefix}
	}
}

// validIDPrefix rejects input that cannot be part of a UUID, which also
// keeps LIKE wildcards out of the prefix query.
func validIDPrefix(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
