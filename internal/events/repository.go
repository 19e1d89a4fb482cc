package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBookingExists is returned when a new booking would clash with an
// existing one, buffer included.
var ErrBookingExists = errors.New("a booking exists for these dates")

type Repository interface {
	CreateBooking(contact *Contact, event *Event, buffer time.Duration) error
	GetByID(id uuid.UUID) (*Event, error)
	GetByIDs(ids []uuid.UUID) ([]Event, error)
	GetAll(query EventListQuery) ([]Event, int64, error)
	ListBetween(from, to time.Time) ([]Event, error)
	ListUpcoming(from time.Time) ([]Event, error)
	UpdateStatus(id uuid.UUID, status EventStatus) (*Event, error)
	SetRate(id uuid.UUID, rateID string) (*Event, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateBooking upserts the contact and inserts the event after checking for
// clashes. The overlap check and the insert run in one transaction with the
// candidate window locked, so two concurrent submissions for the same slot
// cannot both succeed.
func (r *repository) CreateBooking(contact *Contact, event *Event, buffer time.Duration) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(contact).Error; err != nil {
			return fmt.Errorf("failed to upsert contact: %w", err)
		}

		var clashes int64
		err := tx.Model(&Event{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status <> ?", EventStatusCancelled).
			Where("event_start < ? AND event_end > ?", event.EventEnd.Add(buffer), event.EventStart.Add(-buffer)).
			Count(&clashes).Error
		if err != nil {
			return fmt.Errorf("failed to check for clashing bookings: %w", err)
		}
		if clashes > 0 {
			return ErrBookingExists
		}

		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.Preload("Contact").Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetByIDs(ids []uuid.UUID) ([]Event, error) {
	var events []Event
	err := r.db.Preload("Contact").
		Where("id IN ?", ids).
		Order("event_start ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) GetAll(query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	db := r.db.Model(&Event{})
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}
	offset := (query.Page - 1) * query.Limit

	err := db.Preload("Contact").
		Order("event_start ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error

	return events, totalCount, err
}

// ListBetween returns non-cancelled events starting inside the window.
func (r *repository) ListBetween(from, to time.Time) ([]Event, error) {
	var events []Event
	err := r.db.Where("status <> ?", EventStatusCancelled).
		Where("event_start >= ? AND event_start < ?", from, to).
		Order("event_start ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) ListUpcoming(from time.Time) ([]Event, error) {
	var events []Event
	err := r.db.Where("status <> ?", EventStatusCancelled).
		Where("event_end > ?", from).
		Order("event_start ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) UpdateStatus(id uuid.UUID, status EventStatus) (*Event, error) {
	if err := r.db.Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *repository) SetRate(id uuid.UUID, rateID string) (*Event, error) {
	if err := r.db.Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"rate_id": rateID, "updated_at": time.Now()}).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}
