package orders

import (
	"context"
	"testing"
	"time"

	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateTrackingProjectsElapsedDays(t *testing.T) {
	o, err := NewOrder("u", galaxyOrder("OD1"))
	require.NoError(t, err)

	tests := []struct {
		after  time.Duration
		status models.OrderStatus
		events int
	}{
		{time.Hour, models.OrderStatusOrdered, 1},
		{25 * time.Hour, models.OrderStatusShipped, 2},
		{49 * time.Hour, models.OrderStatusOutForDelivery, 3},
		{30 * 24 * time.Hour, models.OrderStatusDelivered, 4},
	}
	for _, tt := range tests {
		got := SimulateTracking(o, placedAt.Add(tt.after))
		assert.Equal(t, tt.status, got.Status, tt.after)
		assert.Len(t, got.TrackingHistory, tt.events)
	}

	assert.Equal(t, models.OrderStatusOrdered, o.Status)
	assert.Len(t, o.TrackingHistory, 1)
}

func TestSimulateTrackingDatesMilestones(t *testing.T) {
	o, err := NewOrder("u", galaxyOrder("OD1"))
	require.NoError(t, err)

	got := SimulateTracking(o, placedAt.AddDate(0, 0, 5))
	require.Len(t, got.TrackingHistory, 4)
	assert.Equal(t, placedAt.AddDate(0, 0, 1), got.TrackingHistory[1].Date)
	assert.Equal(t, placedAt.AddDate(0, 0, 3), got.TrackingHistory[3].Date)
}

func TestListAppliesSimulationWithoutWriting(t *testing.T) {
	now := placedAt
	m, _ := newManager(t, Options{SimulateTracking: true, Now: func() time.Time { return now }})
	ctx := context.Background()
	_, err := m.Create(ctx, "u", galaxyOrder("OD1"))
	require.NoError(t, err)

	now = placedAt.AddDate(0, 0, 2).Add(time.Minute)
	o, err := m.Get(ctx, "OD1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, o.Status)

	stored, err := m.orders.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOrdered, stored[0].Status)
}

func TestSimulateTrackingKeepsHistoryChronological(t *testing.T) {
	o, err := NewOrder("u", galaxyOrder("OD1"))
	require.NoError(t, err)
	shippedAt := placedAt.Add(60 * time.Hour)
	require.NoError(t, advance(&o, models.OrderStatusShipped, shippedAt))

	got := SimulateTracking(o, placedAt.Add(80*time.Hour))
	require.Len(t, got.TrackingHistory, 4)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
	assert.Equal(t, shippedAt, got.TrackingHistory[2].Date, "out for delivery cannot precede the real shipment")
	assert.Equal(t, placedAt.AddDate(0, 0, 3), got.TrackingHistory[3].Date)
	for i := 1; i < len(got.TrackingHistory); i++ {
		assert.False(t, got.TrackingHistory[i].Date.Before(got.TrackingHistory[i-1].Date), i)
	}
}
