package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserPreference is the last set of likes and dislikes a user saved for a city.
type UserPreference struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_city"`
	CityKey  string    `gorm:"uniqueIndex:idx_user_city"`
	CityName string

	LikedRestaurants    pq.StringArray `gorm:"type:text[]"`
	LikedHotels         pq.StringArray `gorm:"type:text[]"`
	LikedActivities     pq.StringArray `gorm:"type:text[]"`
	LikedTransport      pq.StringArray `gorm:"type:text[]"`
	DislikedRestaurants pq.StringArray `gorm:"type:text[]"`
	DislikedHotels      pq.StringArray `gorm:"type:text[]"`
	DislikedActivities  pq.StringArray `gorm:"type:text[]"`
	DislikedTransport   pq.StringArray `gorm:"type:text[]"`
}
