package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "tourplanner/internal/models/db_models"
)

type PaymentRepository interface {
	GetByTourID(ctx context.Context, tourID uuid.UUID) (*dbm.Payment, error)
	// RecordPaid stores the payment and marks the tour paid. It returns the existing
	// payment and false when the tour was already paid.
	RecordPaid(ctx context.Context, payment *dbm.Payment) (*dbm.Payment, bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByTourID(ctx context.Context, tourID uuid.UUID) (*dbm.Payment, error) {
	var payment dbm.Payment
	err := r.db.WithContext(ctx).Where("tour_id = ?", tourID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) RecordPaid(ctx context.Context, payment *dbm.Payment) (*dbm.Payment, bool, error) {
	var stored dbm.Payment
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing dbm.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tour_id = ?", payment.TourID).
			First(&existing).Error
		switch {
		case err == nil && existing.Status == dbm.PaymentStatusPaid:
			stored = existing
			return nil
		case err == nil:
			if err := tx.Model(&existing).Updates(map[string]any{
				"status":       dbm.PaymentStatusPaid,
				"amount_minor": payment.AmountMinor,
				"currency":     payment.Currency,
				"method":       payment.Method,
				"paid_at":      payment.PaidAt,
			}).Error; err != nil {
				return err
			}
			stored = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			payment.Status = dbm.PaymentStatusPaid
			if err := tx.Create(payment).Error; err != nil {
				return err
			}
			stored = *payment
		default:
			return err
		}

		created = true
		return tx.Model(&dbm.Tour{}).
			Where("id = ?", payment.TourID).
			Update("status", dbm.TourStatusPaid).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}
