package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel keeps timestamps as unix seconds.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt int64          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Stamp assigns the id and creation time up front, for callers that need them before
// the row is written.
func (b *BaseModel) Stamp(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt == 0 {
		b.CreatedAt = now.Unix()
	}
	b.UpdatedAt = b.CreatedAt
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	b.Stamp(time.Now())
	return nil
}

func (b *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = time.Now().Unix()
	return nil
}
