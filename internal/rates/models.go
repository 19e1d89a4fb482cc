package rates

import (
	"time"
)

// DefaultRateID is assigned to every publicly submitted booking until an
// admin picks a different rate.
const DefaultRateID = "default"

type Rate struct {
	ID          string  `json:"id" gorm:"primaryKey;size:64"`
	Description string  `json:"description" gorm:"not null;size:255"`
	HourlyRate  float64 `json:"hourly_rate" gorm:"not null;check:hourly_rate >= 0"`

	// Ordered discount tiers; scan order matters for tier selection.
	DiscountTiers []DiscountTier `json:"discount_tiers" gorm:"foreignKey:RateID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type DiscountTier struct {
	ID             uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	RateID         string  `json:"-" gorm:"not null;index;size:64"`
	Position       int     `json:"position" gorm:"not null"`
	ThresholdHours float64 `json:"threshold_hours" gorm:"not null;check:threshold_hours >= 0"`
	Kind           string  `json:"kind" gorm:"not null;size:20;default:'flat'"`
	Value          float64 `json:"value" gorm:"not null;check:value >= 0"`
}

type RateResponse struct {
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	HourlyRate    float64        `json:"hourly_rate"`
	DiscountTiers []DiscountTier `json:"discount_tiers"`
}

func (r *Rate) ToResponse() RateResponse {
	tiers := r.DiscountTiers
	if tiers == nil {
		tiers = []DiscountTier{}
	}
	return RateResponse{
		ID:            r.ID,
		Description:   r.Description,
		HourlyRate:    r.HourlyRate,
		DiscountTiers: tiers,
	}
}

// TableName specifies the table name for GORM
func (Rate) TableName() string {
	return "rates"
}

func (DiscountTier) TableName() string {
	return "rate_discount_tiers"
}
