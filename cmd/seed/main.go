package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"hallbook/internal/auth"
	"hallbook/internal/events"
	"hallbook/internal/rates"
	"hallbook/internal/shared/config"
	"hallbook/internal/shared/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	fmt.Println("🌱 Starting Hallbook Database Seeder...")

	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Order matters due to foreign key constraints
	tables := []string{
		"invoice_items",
		"invoices",
		"events",
		"contacts",
		"rate_discount_tiers",
		"rates",
		"admin_users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if err := s.SeedAdmin(ctx); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedRates(); err != nil {
		return fmt.Errorf("failed to seed rates: %w", err)
	}

	if err := s.SeedEvents(); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedAdmin creates the booking secretary's login. There is no signup route,
// so this is the only way an admin account comes into existence.
func (s *Seeder) SeedAdmin(ctx context.Context) error {
	fmt.Println("  👤 Seeding admin user...")

	authService := auth.NewService(auth.NewRepository(s.db.PostgreSQL), s.cfg)
	user, err := authService.CreateAdmin(ctx, "bookings@oakfieldhall.org", "Booking Secretary", "qwerty")
	if err != nil {
		return err
	}

	fmt.Printf("    ✅ Created admin: %s\n", user.Email)
	return nil
}

// SeedRates creates the standard rate plus a discounted charity rate.
func (s *Seeder) SeedRates() error {
	fmt.Println("  💷 Seeding rates...")

	ratesData := []rates.Rate{
		{
			ID:          rates.DefaultRateID,
			Description: "External Hire Rate",
			HourlyRate:  25,
			DiscountTiers: []rates.DiscountTier{
				{Position: 0, ThresholdHours: 5, Kind: "flat", Value: 25},
			},
		},
		{
			ID:          "charity",
			Description: "Registered Charity Rate",
			HourlyRate:  18,
			DiscountTiers: []rates.DiscountTier{
				{Position: 0, ThresholdHours: 5, Kind: "flat", Value: 20},
				{Position: 1, ThresholdHours: 8, Kind: "flat", Value: 35},
			},
		},
	}

	for i := range ratesData {
		if err := s.db.PostgreSQL.Create(&ratesData[i]).Error; err != nil {
			return fmt.Errorf("failed to create rate %s: %w", ratesData[i].ID, err)
		}
		fmt.Printf("    ✅ Created rate: %s (£%.2f/hour)\n", ratesData[i].ID, ratesData[i].HourlyRate)
	}

	return nil
}

// SeedEvents creates sample bookings across the status lifecycle.
func (s *Seeder) SeedEvents() error {
	fmt.Println("  🎪 Seeding events...")

	contactsData := []events.Contact{
		{Email: "jean.harper@example.com", Name: "Jean Harper"},
		{Email: "treasurer@millbrook-wi.example.org", Name: "Millbrook WI"},
		{Email: "coach@oakfield-juniors.example.org", Name: "Oakfield Juniors FC"},
	}

	for i := range contactsData {
		if err := s.db.PostgreSQL.Create(&contactsData[i]).Error; err != nil {
			return fmt.Errorf("failed to create contact %s: %w", contactsData[i].Email, err)
		}
	}

	eventsData := []struct {
		name        string
		details     string
		contact     string
		rateID      string
		status      events.EventStatus
		daysFromNow int
		startHour   int
		durationHrs float64
		public      bool
	}{
		{
			name:        "Spring Craft Fair",
			details:     "Annual craft fair with around thirty stalls, refreshments in the side room and a tombola. Open to the public from mid morning.",
			contact:     "jean.harper@example.com",
			rateID:      rates.DefaultRateID,
			status:      events.EventStatusApproved,
			daysFromNow: 21,
			startHour:   10,
			durationHrs: 6,
			public:      true,
		},
		{
			name:        "WI Monthly Meeting",
			details:     "Regular monthly meeting of the Millbrook Women's Institute. Speaker this month on local history, followed by tea and committee business.",
			contact:     "treasurer@millbrook-wi.example.org",
			rateID:      "charity",
			status:      events.EventStatusApproved,
			daysFromNow: 28,
			startHour:   19,
			durationHrs: 2.5,
			public:      true,
		},
		{
			name:        "Juniors Presentation Night",
			details:     "End of season presentation evening for the junior football club. Trophies, buffet and a disco afterwards. Parents and families attending.",
			contact:     "coach@oakfield-juniors.example.org",
			rateID:      "charity",
			status:      events.EventStatusAwaitingDocuments,
			daysFromNow: 35,
			startHour:   18,
			durationHrs: 4,
			public:      false,
		},
		{
			name:        "Harper Family Birthday",
			details:     "Private sixtieth birthday party for around forty guests. Catering brought in, background music only, finished and cleared by ten.",
			contact:     "jean.harper@example.com",
			rateID:      rates.DefaultRateID,
			status:      events.EventStatusProvisional,
			daysFromNow: 42,
			startHour:   14,
			durationHrs: 5,
			public:      false,
		},
	}

	for _, eventData := range eventsData {
		day := time.Now().UTC().AddDate(0, 0, eventData.daysFromNow)
		start := time.Date(day.Year(), day.Month(), day.Day(), eventData.startHour, 0, 0, 0, time.UTC)

		event := events.Event{
			ID:              uuid.New(),
			Name:            eventData.name,
			Details:         eventData.details,
			EventStart:      start,
			EventEnd:        start.Add(time.Duration(eventData.durationHrs * float64(time.Hour))),
			PubliclyVisible: eventData.public,
			Status:          eventData.status,
			ContactEmail:    eventData.contact,
			RateID:          eventData.rateID,
		}

		if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}

		fmt.Printf("    ✅ Created event: %s (%s)\n", event.Name, event.Status)
	}

	return nil
}
