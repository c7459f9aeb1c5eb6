package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "tourplanner/internal/models/db_models"
)

type TourRepository interface {
	Create(ctx context.Context, tour *dbm.Tour) (uuid.UUID, error)
	GetByID(ctx context.Context, tourID uuid.UUID) (*dbm.Tour, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page int, pageSize int) ([]dbm.Tour, error)
	UpdateStatus(ctx context.Context, tourID uuid.UUID, status dbm.TourStatus) error
}

type tourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) TourRepository {
	return &tourRepository{db: db}
}

// Create writes the tour, its flights, days and items in one transaction.
func (r *tourRepository) Create(ctx context.Context, tour *dbm.Tour) (uuid.UUID, error) {
	flights := tour.Flights
	days := tour.Days
	tour.Flights = nil
	tour.Days = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tour).Error; err != nil {
			return err
		}

		for i := range flights {
			flights[i].TourID = tour.ID
		}
		if len(flights) > 0 {
			if err := tx.Create(&flights).Error; err != nil {
				return err
			}
		}

		for i := range days {
			items := days[i].Items
			days[i].Items = nil
			days[i].TourID = tour.ID
			if err := tx.Create(&days[i]).Error; err != nil {
				return err
			}

			for j := range items {
				items[j].TourDayID = days[i].ID
				items[j].Position = j
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			days[i].Items = items
		}
		return nil
	})

	tour.Flights = flights
	tour.Days = days
	if err != nil {
		return uuid.Nil, err
	}
	return tour.ID, nil
}

func (r *tourRepository) GetByID(ctx context.Context, tourID uuid.UUID) (*dbm.Tour, error) {
	var tour dbm.Tour
	err := r.db.WithContext(ctx).
		Where("id = ?", tourID).
		Preload("Flights").
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC")
		}).
		Preload("Days.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&tour).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tour, nil
}

func (r *tourRepository) ListByUser(ctx context.Context, userID uuid.UUID, page int, pageSize int) ([]dbm.Tour, error) {
	var tours []dbm.Tour
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tours).Error
	if err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *tourRepository) UpdateStatus(ctx context.Context, tourID uuid.UUID, status dbm.TourStatus) error {
	return r.db.WithContext(ctx).
		Model(&dbm.Tour{}).
		Where("id = ?", tourID).
		Update("status", status).Error
}
