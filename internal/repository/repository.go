package repository

import (
	"context"
	"errors"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrNotPending is returned when a status transition targets a record
	// that is not in pending state. Records transition exactly once.
	ErrNotPending = errors.New("record is not pending")
)

type Filter struct {
	Limit  int
	Action *models.ActionKind
	Status *models.RecordStatus
}

// NotificationRepository stores dispatch records for the session. List
// returns records most recent first.
type NotificationRepository interface {
	Add(ctx context.Context, rec *models.NotificationRecord) error
	UpdateStatus(ctx context.Context, id string, status models.RecordStatus) error
	GetByID(ctx context.Context, id string) (*models.NotificationRecord, error)
	List(ctx context.Context, opts Filter) ([]models.NotificationRecord, error)
}
