package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "tourplanner/internal/models/db_models"
)

type UserPreferenceRepository interface {
	Get(ctx context.Context, userID uuid.UUID, cityKey string) (*dbm.UserPreference, error)
	Upsert(ctx context.Context, pref *dbm.UserPreference) error
}

type userPreferenceRepository struct {
	db *gorm.DB
}

func NewUserPreferenceRepository(db *gorm.DB) UserPreferenceRepository {
	return &userPreferenceRepository{db: db}
}

func (r *userPreferenceRepository) Get(ctx context.Context, userID uuid.UUID, cityKey string) (*dbm.UserPreference, error) {
	var pref dbm.UserPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND city_key = ?", userID, cityKey).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (r *userPreferenceRepository) Upsert(ctx context.Context, pref *dbm.UserPreference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "city_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"city_name",
			"liked_restaurants", "liked_hotels", "liked_activities", "liked_transport",
			"disliked_restaurants", "disliked_hotels", "disliked_activities", "disliked_transport",
			"updated_at",
		}),
	}).Create(pref).Error
}
