// Package orders owns the order state machine: Ordered, Shipped, OutForDelivery, Delivered.
package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/swiftcart-api/events"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/persistence"
	"go.uber.org/zap"
)

const (
	deliveryOffsetDays = 3
	placedLocation     = "Online"
	placedDescription  = "Your order has been placed successfully."
)

var (
	ErrInvalidOrder      = errors.New("orders: invalid order")
	ErrInvalidTransition = errors.New("orders: invalid status transition")
)

// milestones describe the tracking event appended when an order enters a status.
var milestones = map[models.OrderStatus]struct{ location, description string }{
	models.OrderStatusShipped:        {"Seller Warehouse", "Your item has been shipped."},
	models.OrderStatusOutForDelivery: {"Local Delivery Hub", "Your item is out for delivery."},
	models.OrderStatusDelivered:      {"Delivery Address", "Your item has been delivered."},
}

type CreateInput struct {
	ID              string             `json:"id"`
	Items           []models.OrderItem `json:"items"`
	Date            time.Time          `json:"date"`
	ShippingAddress string             `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

type Options struct {
	SimulateTracking bool
	Now              func() time.Time
}

type Manager struct {
	orders    *persistence.Collection[models.Order]
	publisher events.Publisher
	simulate  bool
	now       func() time.Time
	log       *zap.Logger
}

func NewManager(orders *persistence.Collection[models.Order], publisher events.Publisher, log *zap.Logger, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = events.Multi{}
	}
	return &Manager{orders: orders, publisher: publisher, simulate: opts.SimulateTracking, now: now, log: log}
}

// NewOrder builds a freshly placed order: status Ordered, one creation tracking event,
// and delivery estimated three calendar days after the placement date.
func NewOrder(userID string, in CreateInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	var total float64
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.PriceAtPurchase < 0 {
			return models.Order{}, fmt.Errorf("%w: bad item %q", ErrInvalidOrder, item.ProductID)
		}
		total += item.PriceAtPurchase * float64(item.Quantity)
	}
	if in.Date.IsZero() {
		return models.Order{}, fmt.Errorf("%w: missing date", ErrInvalidOrder)
	}

	id := in.ID
	if id == "" {
		id = "OD" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	}

	return models.Order{
		ID:                id,
		UserID:            userID,
		Items:             append([]models.OrderItem(nil), in.Items...),
		Total:             total,
		Date:              in.Date,
		Status:            models.OrderStatusOrdered,
		EstimatedDelivery: in.Date.AddDate(0, 0, deliveryOffsetDays),
		TrackingHistory: []models.TrackingEvent{{
			Status:      models.OrderStatusOrdered,
			Date:        in.Date,
			Location:    placedLocation,
			Description: placedDescription,
		}},
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
	}, nil
}

// Create places an order owned by userID. A missing date means now.
func (m *Manager) Create(ctx context.Context, userID string, in CreateInput) (*models.Order, error) {
	if in.Date.IsZero() {
		in.Date = m.now().UTC()
	}
	order, err := NewOrder(userID, in)
	if err != nil {
		return nil, err
	}

	var created models.Order
	if m.orders.TryRemote(ctx, http.MethodPost, "/orders", order, &created) {
		if created.ID == "" {
			created = order
		}
		m.log.Info("order placed remotely", zap.String("order_id", created.ID), zap.String("user_id", userID))
		m.publish(ctx, events.OrderCreated, created)
		return &created, nil
	}

	_, err = m.orders.Mutate(ctx, func(list []models.Order) ([]models.Order, error) {
		for _, o := range list {
			if o.ID == order.ID {
				return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidOrder, order.ID)
			}
		}
		return append([]models.Order{order}, list...), nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("order placed", zap.String("order_id", order.ID), zap.String("user_id", userID), zap.Float64("total", order.Total))
	m.publish(ctx, events.OrderCreated, order)
	return &order, nil
}

// UpdateStatus moves an order to status. Only the immediate successor is accepted;
// setting the current status again is a no-op. An unknown id is a silent no-op and
// reports false.
func (m *Manager) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %q", models.ErrUnknownOrderStatus, status)
	}

	if m.orders.RemoteEnabled() {
		if found, handled, err := m.updateRemote(ctx, id, status); handled {
			return found, err
		}
	}

	var (
		found   bool
		updated models.Order
	)
	_, err := m.orders.Mutate(ctx, func(list []models.Order) ([]models.Order, error) {
		found, updated = false, models.Order{}
		for i := range list {
			if list[i].ID != id {
				continue
			}
			found = true
			if list[i].Status == status {
				return nil, persistence.ErrSkipWrite
			}
			next := list[i].Clone()
			if err := advance(&next, status, m.now().UTC()); err != nil {
				return nil, err
			}
			list[i], updated = next, next
			return list, nil
		}
		return nil, persistence.ErrSkipWrite
	})
	if err != nil {
		return false, err
	}
	if !found {
		m.log.Debug("status update for unknown order ignored", zap.String("order_id", id))
		return false, nil
	}
	if updated.ID != "" {
		m.log.Info("order status changed", zap.String("order_id", id), zap.String("status", string(status)))
		m.publish(ctx, events.OrderStatusChanged, updated)
	}
	return true, nil
}

// updateRemote checks the transition against the current order before sending the
// PATCH. handled is false when the PATCH failed and the local store must be used.
func (m *Manager) updateRemote(ctx context.Context, id string, status models.OrderStatus) (found, handled bool, err error) {
	list, err := m.orders.Load(ctx)
	if err != nil {
		return false, true, err
	}
	var current *models.Order
	for i := range list {
		if list[i].ID == id {
			current = &list[i]
			break
		}
	}
	if current == nil {
		m.log.Debug("status update for unknown order ignored", zap.String("order_id", id))
		return false, true, nil
	}
	if current.Status == status {
		return true, true, nil
	}
	next := current.Clone()
	if err := advance(&next, status, m.now().UTC()); err != nil {
		return false, true, err
	}

	if !m.orders.TryRemote(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), map[string]models.OrderStatus{"status": status}, nil) {
		return false, false, nil
	}
	m.log.Info("order status changed remotely", zap.String("order_id", id), zap.String("status", string(status)))
	m.publish(ctx, events.OrderStatusChanged, next)
	return true, true, nil
}

// List returns every order, with simulated tracking applied when enabled.
func (m *Manager) List(ctx context.Context) ([]models.Order, error) {
	list, err := m.orders.Load(ctx)
	if err != nil {
		return nil, err
	}
	if m.simulate {
		now := m.now().UTC()
		for i := range list {
			list[i] = SimulateTracking(list[i], now)
		}
	}
	return list, nil
}

func (m *Manager) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// Get returns nil, not an error, when no order has id.
func (m *Manager) Get(ctx context.Context, id string) (*models.Order, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range all {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

func (m *Manager) publish(ctx context.Context, t events.Type, o models.Order) {
	if err := m.publisher.Publish(ctx, events.NewOrderEvent(t, o, m.now().UTC())); err != nil {
		m.log.Warn("failed to publish order event", zap.String("order_id", o.ID), zap.String("event", string(t)), zap.Error(err))
	}
}

// advance applies one forward step and records its tracking event.
func advance(o *models.Order, to models.OrderStatus, at time.Time) error {
	next, ok := o.Status.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	m := milestones[to]
	o.Status = to
	o.TrackingHistory = append(o.TrackingHistory, models.TrackingEvent{
		Status:      to,
		Date:        at,
		Location:    m.location,
		Description: m.description,
	})
	return nil
}

// HasPurchased reports whether userID has a delivered order containing productID.
func (m *Manager) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	mine, err := m.ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, o := range mine {
		if o.Status != models.OrderStatusDelivered {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}
