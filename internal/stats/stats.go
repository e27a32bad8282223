// Package stats maintains the aggregate figures shown above the order
// table. Compute is the source of truth; ApplyDelta is the incremental
// path used on single-order updates and must always agree with a full
// recompute over the same rows.
package stats

import (
	"github.com/furxx2000/orderdeck/internal/models"
)

// Compute calculates OrderStats with a full scan over the given rows
func Compute(orders []models.Order) models.OrderStats {
	var s models.OrderStats

	for _, o := range orders {
		s.TotalAmount += o.Amount

		switch o.Status {
		case models.OrderStatusPending:
			s.PendingCount++
		case models.OrderStatusProcessing:
			s.ProcessingCount++
		}

		if o.DeliveryStatus == models.DeliveryStatusShipping {
			s.ShippingCount++
		}
	}

	return s
}

// ApplyDelta adjusts stats for a single order changing from old to new.
// Unchanged fields contribute nothing, so applying the same value twice
// cannot drift the counters.
func ApplyDelta(s models.OrderStats, old, new models.Order) models.OrderStats {
	if old.Amount != new.Amount {
		s.TotalAmount += new.Amount - old.Amount
	}

	if old.Status != new.Status {
		switch old.Status {
		case models.OrderStatusPending:
			s.PendingCount--
		case models.OrderStatusProcessing:
			s.ProcessingCount--
		}

		switch new.Status {
		case models.OrderStatusPending:
			s.PendingCount++
		case models.OrderStatusProcessing:
			s.ProcessingCount++
		}
	}

	if old.DeliveryStatus != new.DeliveryStatus {
		if old.DeliveryStatus == models.DeliveryStatusShipping {
			s.ShippingCount--
		}
		if new.DeliveryStatus == models.DeliveryStatusShipping {
			s.ShippingCount++
		}
	}

	return s
}
