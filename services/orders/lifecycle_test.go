package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/swiftcart-api/events"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/persistence"
	"github.com/junaidrashid-git/swiftcart-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var placedAt = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

func newManager(t *testing.T, opts Options) (*Manager, *events.Recorder) {
	t.Helper()
	coll := persistence.NewCollection[models.Order](store.NewMemoryStore(), nil, zap.NewNop(), persistence.Options{
		Name: "orders", Version: "v1", SchemaVersion: 1,
	})
	rec := &events.Recorder{}
	if opts.Now == nil {
		opts.Now = func() time.Time { return placedAt }
	}
	return NewManager(coll, rec, zap.NewNop(), opts), rec
}

func galaxyOrder(id string) CreateInput {
	return CreateInput{
		ID:    id,
		Items: []models.OrderItem{{ProductID: "prod_galaxy_s23", Quantity: 1, PriceAtPurchase: 74999}},
		Date:  placedAt,
	}
}

func TestCreatePlacesOrder(t *testing.T) {
	m, rec := newManager(t, Options{})
	ctx := context.Background()

	o, err := m.Create(ctx, "user_1", galaxyOrder("OD1"))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusOrdered, o.Status)
	assert.Equal(t, time.Date(2024, 1, 13, 9, 30, 0, 0, time.UTC), o.EstimatedDelivery)
	assert.Equal(t, 74999.0, o.Total)
	require.Len(t, o.TrackingHistory, 1)
	assert.Equal(t, models.TrackingEvent{
		Status:      models.OrderStatusOrdered,
		Date:        placedAt,
		Location:    "Online",
		Description: "Your order has been placed successfully.",
	}, o.TrackingHistory[0])

	got, err := m.Get(ctx, "OD1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *o, *got)

	again, err := m.Get(ctx, "OD1")
	require.NoError(t, err)
	assert.Equal(t, got, again)

	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.OrderCreated, evs[0].EventType)
	assert.Equal(t, "OD1", evs[0].Payload.ID)
}

func TestCreateGeneratesID(t *testing.T) {
	m, _ := newManager(t, Options{})
	in := galaxyOrder("")
	in.Date = time.Time{}

	o, err := m.Create(context.Background(), "user_1", in)
	require.NoError(t, err)
	assert.Regexp(t, `^OD[0-9A-F]{12}$`, o.ID)
	assert.Equal(t, placedAt, o.Date)
}

func TestCreatePrependsNewest(t *testing.T) {
	m, _ := newManager(t, Options{})
	ctx := context.Background()
	_, err := m.Create(ctx, "u", galaxyOrder("first"))
	require.NoError(t, err)
	_, err = m.Create(ctx, "u", galaxyOrder("second"))
	require.NoError(t, err)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID)
	assert.Equal(t, "first", list[1].ID)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	m, _ := newManager(t, Options{})
	ctx := context.Background()

	cases := map[string]CreateInput{
		"no items":      {ID: "a", Date: placedAt},
		"zero quantity": {ID: "b", Date: placedAt, Items: []models.OrderItem{{ProductID: "p", Quantity: 0, PriceAtPurchase: 1}}},
		"no product":    {ID: "c", Date: placedAt, Items: []models.OrderItem{{Quantity: 1, PriceAtPurchase: 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Create(ctx, "u", in)
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}

	_, err := m.Create(ctx, "u", galaxyOrder("dup"))
	require.NoError(t, err)
	_, err = m.Create(ctx, "u", galaxyOrder("dup"))
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestUpdateStatusWalksLifecycle(t *testing.T) {
	now := placedAt
	m, rec := newManager(t, Options{Now: func() time.Time { return now }})
	ctx := context.Background()
	_, err := m.Create(ctx, "u", galaxyOrder("OD1"))
	require.NoError(t, err)

	for i, st := range []models.OrderStatus{models.OrderStatusShipped, models.OrderStatusOutForDelivery, models.OrderStatusDelivered} {
		now = placedAt.AddDate(0, 0, i+1)
		ok, err := m.UpdateStatus(ctx, "OD1", st)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	o, err := m.Get(ctx, "OD1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
	require.Len(t, o.TrackingHistory, 4)
	for i, ev := range o.TrackingHistory {
		assert.Equal(t, i, ev.Status.Rank())
		if i > 0 {
			assert.True(t, ev.Date.After(o.TrackingHistory[i-1].Date))
		}
	}
	assert.Equal(t, "Your item has been delivered.", o.TrackingHistory[3].Description)
	assert.Len(t, rec.Events(), 4)
}

func TestUpdateStatusRejectsSkipsAndRegressions(t *testing.T) {
	m, _ := newManager(t, Options{})
	ctx := context.Background()
	_, err := m.Create(ctx, "u", galaxyOrder("OD1"))
	require.NoError(t, err)

	_, err = m.UpdateStatus(ctx, "OD1", models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	ok, err := m.UpdateStatus(ctx, "OD1", models.OrderStatusShipped)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.UpdateStatus(ctx, "OD1", models.OrderStatusOrdered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = m.UpdateStatus(ctx, "OD1", models.OrderStatus("Cancelled"))
	assert.ErrorIs(t, err, models.ErrUnknownOrderStatus)

	o, err := m.Get(ctx, "OD1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, o.Status)
	assert.Len(t, o.TrackingHistory, 2)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	m, rec := newManager(t, Options{})
	ctx := context.Background()
	_, err := m.Create(ctx, "u", galaxyOrder("OD1"))
	require.NoError(t, err)

	ok, err := m.UpdateStatus(ctx, "OD1", models.OrderStatusOrdered)
	require.NoError(t, err)
	assert.True(t, ok)

	o, _ := m.Get(ctx, "OD1")
	assert.Len(t, o.TrackingHistory, 1)
	assert.Len(t, rec.Events(), 1)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	m, rec := newManager(t, Options{})
	ctx := context.Background()
	_, err := m.Create(ctx, "u", galaxyOrder("OD1"))
	require.NoError(t, err)
	before, _ := m.List(ctx)

	ok, err := m.UpdateStatus(ctx, "missing", models.OrderStatusShipped)
	require.NoError(t, err)
	assert.False(t, ok)

	after, _ := m.List(ctx)
	assert.Equal(t, before, after)
	assert.Len(t, rec.Events(), 1)

	got, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConcurrentUpdatesOfDifferentOrdersAreKept(t *testing.T) {
	m, _ := newManager(t, Options{})
	ctx := context.Background()
	const n = 6
	for i := 0; i < n; i++ {
		_, err := m.Create(ctx, "u", galaxyOrder(fmt.Sprintf("OD%d", i)))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := m.UpdateStatus(ctx, id, models.OrderStatusShipped); err != nil {
				errs <- err
			}
		}(fmt.Sprintf("OD%d", i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	for _, o := range list {
		assert.Equal(t, models.OrderStatusShipped, o.Status, o.ID)
	}
}

func TestListForUser(t *testing.T) {
	m, _ := newManager(t, Options{})
	ctx := context.Background()
	_, _ = m.Create(ctx, "alice", galaxyOrder("a1"))
	_, _ = m.Create(ctx, "bob", galaxyOrder("b1"))
	_, _ = m.Create(ctx, "alice", galaxyOrder("a2"))

	mine, err := m.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a2", mine[0].ID)

	none, err := m.ListForUser(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.OrderEvent) error {
	return errors.New("broker down")
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	coll := persistence.NewCollection[models.Order](store.NewMemoryStore(), nil, zap.NewNop(), persistence.Options{Name: "orders", Version: "v1", SchemaVersion: 1})
	m := NewManager(coll, failingPublisher{}, zap.NewNop(), Options{})

	_, err := m.Create(context.Background(), "u", galaxyOrder("OD1"))
	assert.NoError(t, err)
}
