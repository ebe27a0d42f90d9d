package orders

import (
	"time"

	"github.com/junaidrashid-git/swiftcart-api/models"
)

// SimulateTracking projects the delivery progress an order would show if it moved one
// status per elapsed day after placement. Every intermediate milestone is emitted in
// order, dated at its day boundary or at the previous event if that is later, so the
// history stays chronological. The stored order is not touched.
func SimulateTracking(o models.Order, now time.Time) models.Order {
	out := o.Clone()
	days := int(now.Sub(o.Date) / (24 * time.Hour))
	for out.Status.Rank() < days {
		next, ok := out.Status.Next()
		if !ok {
			break
		}
		at := o.Date.AddDate(0, 0, next.Rank())
		if n := len(out.TrackingHistory); n > 0 && out.TrackingHistory[n-1].Date.After(at) {
			at = out.TrackingHistory[n-1].Date
		}
		if err := advance(&out, next, at); err != nil {
			break
		}
	}
	return out
}
