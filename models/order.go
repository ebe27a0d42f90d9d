package models

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string

// Order statuses, in lifecycle order.
const (
	OrderStatusOrdered        OrderStatus = "Ordered"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "OutForDelivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
)

var orderStatusSequence = []OrderStatus{
	OrderStatusOrdered,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

var ErrUnknownOrderStatus = errors.New("invalid order status")

// OrderStatuses returns the lifecycle in order.
func OrderStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderStatusSequence...)
}

// ParseOrderStatus accepts any casing and tolerates spaces, dashes and underscores,
// so "out for delivery" and "OUT_FOR_DELIVERY" both map to OrderStatusOutForDelivery.
func ParseOrderStatus(s string) (OrderStatus, error) {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range orderStatusSequence {
		if strings.ToLower(string(st)) == norm {
			return st, nil
		}
	}
	return "", ErrUnknownOrderStatus
}

// Rank is the position of s in the lifecycle, or -1 if s is unknown.
func (s OrderStatus) Rank() int {
	for i, st := range orderStatusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool { return s.Rank() >= 0 }

// Next returns the immediate successor of s. Delivered has none.
func (s OrderStatus) Next() (OrderStatus, bool) {
	r := s.Rank()
	if r < 0 || r+1 >= len(orderStatusSequence) {
		return "", false
	}
	return orderStatusSequence[r+1], true
}

func (s OrderStatus) Terminal() bool { return s == OrderStatusDelivered }

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Items             []OrderItem     `json:"items"`
	Total             float64         `json:"total"`
	Date              time.Time       `json:"date"`
	Status            OrderStatus     `json:"status"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	TrackingHistory   []TrackingEvent `json:"trackingHistory"`
	ShippingAddress   string          `json:"shippingAddress,omitempty"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
}

type OrderItem struct {
	ProductID       string  `json:"productId"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
}

// TrackingEvent is append-only; slice order is chronological order.
type TrackingEvent struct {
	Status      OrderStatus `json:"status"`
	Date        time.Time   `json:"date"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	o.TrackingHistory = append([]TrackingEvent(nil), o.TrackingHistory...)
	return o
}
