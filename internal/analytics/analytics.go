// Package analytics derives reporting summaries from order lists. The
// reports are single-pass and leave their input untouched.
package analytics

import (
	"github.com/furxx2000/orderdeck/internal/models"
)

// TopUser is the highest spender among completed and paid orders
type TopUser struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// SpendingReport summarizes per-user spending over completed, paid orders
type SpendingReport struct {
	UserTotals     map[string]float64 `json:"userTotals"`
	TopUser        *TopUser           `json:"topUser"`
	CompletionRate float64            `json:"completionRate"`
}

// DeliveryBucket aggregates the orders sharing one delivery status
type DeliveryBucket struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

// Anomaly flags an order whose statuses contradict each other
type Anomaly struct {
	Order  models.Order `json:"order"`
	Reason string       `json:"reason"`
}

// Anomaly reasons
const (
	ReasonCompletedNotDelivered     = "completed_but_not_delivered"
	ReasonPaymentPendingButShipping = "payment_pending_but_shipping/delivered"
)

// DeliveryReport summarizes the fulfillment side of an order list
type DeliveryReport struct {
	PaidButNotDelivered []models.Order                           `json:"paidButNotDelivered"`
	DeliveryStats       map[models.DeliveryStatus]DeliveryBucket `json:"deliveryStats"`
	Anomalies           []Anomaly                                `json:"anomalies"`
}

// UserSpending computes per-user totals over completed and paid orders,
// the top spender, and the share of completed orders. The completion
// rate counts every completed order whether or not it was paid.
func UserSpending(orders []models.Order) SpendingReport {
	report := SpendingReport{
		UserTotals: make(map[string]float64),
	}

	if len(orders) == 0 {
		return report
	}

	completed := 0

	for _, order := range orders {
		if order.Status == models.OrderStatusCompleted {
			completed++
		}

		if order.Status != models.OrderStatusCompleted || order.PaymentStatus != models.PaymentStatusPaid {
			continue
		}

		total := report.UserTotals[order.User] + order.Amount
		report.UserTotals[order.User] = total

		if report.TopUser == nil || total > report.TopUser.Total {
			report.TopUser = &TopUser{Name: order.User, Total: total}
		}
	}

	report.CompletionRate = float64(completed) / float64(len(orders))
	return report
}

// Fulfillment computes the delivery report: paid orders that have not
// arrived, per-status totals, and status combinations that should not
// occur together.
func Fulfillment(orders []models.Order) DeliveryReport {
	report := DeliveryReport{
		PaidButNotDelivered: []models.Order{},
		DeliveryStats:       make(map[models.DeliveryStatus]DeliveryBucket),
		Anomalies:           []Anomaly{},
	}

	for _, order := range orders {
		if order.PaymentStatus == models.PaymentStatusPaid && order.DeliveryStatus != models.DeliveryStatusDelivered {
			report.PaidButNotDelivered = append(report.PaidButNotDelivered, order)
		}

		bucket := report.DeliveryStats[order.DeliveryStatus]
		bucket.Count++
		bucket.TotalAmount += order.Amount
		report.DeliveryStats[order.DeliveryStatus] = bucket

		if order.Status == models.OrderStatusCompleted && order.DeliveryStatus != models.DeliveryStatusDelivered {
			report.Anomalies = append(report.Anomalies, Anomaly{Order: order, Reason: ReasonCompletedNotDelivered})
		}

		if order.PaymentStatus == models.PaymentStatusPending &&
			(order.DeliveryStatus == models.DeliveryStatusShipping || order.DeliveryStatus == models.DeliveryStatusDelivered) {
			report.Anomalies = append(report.Anomalies, Anomaly{Order: order, Reason: ReasonPaymentPendingButShipping})
		}
	}

	return report
}
