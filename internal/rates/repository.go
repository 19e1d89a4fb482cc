package rates

import (
	"gorm.io/gorm"
)

type Repository interface {
	GetAll() ([]Rate, error)
	GetByID(id string) (*Rate, error)
	Create(rate *Rate) error
	EnsureDefault(rate *Rate) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAll() ([]Rate, error) {
	var rates []Rate
	err := r.db.
		Preload("DiscountTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("id ASC").
		Find(&rates).Error
	return rates, err
}

func (r *repository) GetByID(id string) (*Rate, error) {
	var rate Rate
	err := r.db.
		Preload("DiscountTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) Create(rate *Rate) error {
	return r.db.Create(rate).Error
}

// EnsureDefault inserts the rate only when no row with its id exists yet,
// so migrations stay idempotent across restarts.
func (r *repository) EnsureDefault(rate *Rate) error {
	var count int64
	if err := r.db.Model(&Rate{}).Where("id = ?", rate.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(rate).Error
}
