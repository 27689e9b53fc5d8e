package outbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
)

// Repository persists outbox rows. Inserts ride the caller's transaction so
// an event commits atomically with the state change that produced it; the
// publisher reads and marks rows on its own connection.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, event models.OutboxEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&event).Error
}

// FetchUnpublished returns up to limit pending events, oldest first. Rows
// that have burned through maxAttempts publish tries are left behind for
// manual inspection.
func (r *Repository) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	var rows []models.OutboxEvent
	err := r.db.
		Where("published_at IS NULL").
		Where("attempt_count < ?", maxAttempts).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) MarkPublished(id uuid.UUID) error {
	return r.update(id, map[string]any{"published_at": time.Now()})
}

func (r *Repository) MarkFailed(id uuid.UUID, cause error) error {
	return r.update(id, map[string]any{
		"last_error":    cause.Error(),
		"attempt_count": gorm.Expr("attempt_count + 1"),
	})
}

func (r *Repository) update(id uuid.UUID, fields map[string]any) error {
	return r.db.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(fields).Error
}
