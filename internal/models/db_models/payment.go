package db_models

import "github.com/google/uuid"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Payment struct {
	BaseModel
	TourID      uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	UserID      *uuid.UUID    `gorm:"type:uuid;index"`
	AmountMinor int64         // e.g., 35550 = $355.50
	Currency    string        `gorm:"size:3"`
	Status      PaymentStatus `gorm:"index"`
	Method      string
	PaidAt      *int64
}
