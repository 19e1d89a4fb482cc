package invoices

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(invoice *Invoice) error
	GetByID(id uuid.UUID) (*Invoice, error)
	GetByEventID(eventID uuid.UUID) ([]Invoice, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*Invoice, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(invoice *Invoice) error {
	return r.db.Create(invoice).Error
}

func (r *repository) GetByID(id uuid.UUID) (*Invoice, error) {
	var invoice Invoice
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByEventID returns every invoice that bills the given event, most
// recent first. Used by the admin event review screen.
func (r *repository) GetByEventID(eventID uuid.UUID) ([]Invoice, error) {
	var invoices []Invoice
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id IN (?)", r.db.Model(&InvoiceItem{}).
			Select("DISTINCT invoice_id").
			Where("event_id = ?", eventID)).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *repository) Update(id uuid.UUID, updates map[string]interface{}) (*Invoice, error) {
	if err := r.db.Model(&Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// touchUpdatedAt is shared by status transitions so updated_at moves with them.
func touchUpdatedAt(updates map[string]interface{}) map[string]interface{} {
	updates["updated_at"] = time.Now()
	return updates
}
