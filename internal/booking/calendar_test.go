package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampNavigation(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	past := now.AddDate(0, -2, 0)
	assert.Equal(t, now, ClampNavigation(past, now))

	future := now.AddDate(0, 3, 0)
	assert.Equal(t, future, ClampNavigation(future, now))
}

func TestCheckSlot(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	policy := DefaultPolicy()

	// First bookable moment is midnight fourteen days out.
	boundary := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, CheckSlot(boundary.Add(-time.Minute), now, policy), ErrSlotTooSoon)
	assert.NoError(t, CheckSlot(boundary, now, policy))
	assert.NoError(t, CheckSlot(boundary.Add(9*time.Hour), now, policy))
}
