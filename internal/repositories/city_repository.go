package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tourplanner/internal/models/db_models"
)

type CityRepository interface {
	FindExact(ctx context.Context, name string) (*db_models.City, error)
	FindByNameLike(ctx context.Context, fragment string) (*db_models.City, error)
	FindByASCIILike(ctx context.Context, fragment string) (*db_models.City, error)
	List(ctx context.Context, page int, pageSize int) ([]db_models.City, error)
	UpsertMany(ctx context.Context, cities []db_models.City) error
}

type cityRepository struct {
	db *gorm.DB
}

func NewCityRepository(db *gorm.DB) CityRepository {
	return &cityRepository{db: db}
}

func (r *cityRepository) FindExact(ctx context.Context, name string) (*db_models.City, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *cityRepository) FindByNameLike(ctx context.Context, fragment string) (*db_models.City, error) {
	return r.first(ctx, "name ILIKE ?", "%"+fragment+"%")
}

func (r *cityRepository) FindByASCIILike(ctx context.Context, fragment string) (*db_models.City, error) {
	return r.first(ctx, "city_ascii ILIKE ?", "%"+fragment+"%")
}

func (r *cityRepository) first(ctx context.Context, query string, arg any) (*db_models.City, error) {
	var city db_models.City
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("length(name) ASC").
		First(&city).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *cityRepository) List(ctx context.Context, page int, pageSize int) ([]db_models.City, error) {
	var cities []db_models.City
	err := r.db.WithContext(ctx).Scopes(func(db *gorm.DB) *gorm.DB {
		offset := (page - 1) * pageSize
		return db.Offset(offset).Limit(pageSize)
	}).Order("name ASC").Find(&cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// UpsertMany stores provider cities keyed by their external id.
func (r *cityRepository) UpsertMany(ctx context.Context, cities []db_models.City) error {
	if len(cities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range cities {
			var existing db_models.City
			err := tx.Where("external_id = ?", cities[i].ExternalID).First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).Updates(map[string]any{
					"name":       cities[i].Name,
					"city_ascii": cities[i].NameASCII,
					"country":    cities[i].Country,
				}).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cities[i]).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}
