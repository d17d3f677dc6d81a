package repo

import (
	"context"

	"wghttp/internal/models"

	"gorm.io/gorm"
)

const defaultListLimit = 100

type EventStore struct{ db *gorm.DB }

func NewEventStore(db *gorm.DB) *EventStore { return &EventStore{db: db} }

func (s *EventStore) Record(ctx context.Context, ev *models.Event) error {
	return s.db.WithContext(ctx).Create(ev).Error
}

// List — последние события, новые первыми. device пустой — по всем устройствам.
func (s *EventStore) List(ctx context.Context, device string, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := s.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if device != "" {
		q = q.Where("device = ?", device)
	}
	var out []models.Event
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
