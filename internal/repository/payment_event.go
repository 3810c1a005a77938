package repository

import (
	"context"
	"errors"
	"time"

	"digimarket/internal/model"

	"gorm.io/gorm"
)

type PaymentEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed inserts the dedupe row. It runs inside the settlement
	// transaction; a duplicate insert aborts the whole settlement.
	MarkProcessed(ctx context.Context, tx *gorm.DB, eventID, eventType string) error
}

type paymentEventRepoImpl struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepoImpl{db: db}
}

func (r *paymentEventRepoImpl) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PaymentEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error

	return count > 0, err
}

func (r *paymentEventRepoImpl) MarkProcessed(ctx context.Context, tx *gorm.DB, eventID string, eventType string) error {
	err := tx.WithContext(ctx).Create(&model.PaymentEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}).Error

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrDuplicatePayment
	}

	return err
}
