package analytics

import (
	"math"
	"testing"

	"github.com/furxx2000/orderdeck/internal/models"
)

func mk(id, user string, amount float64, status models.OrderStatus, payment models.PaymentStatus, delivery models.DeliveryStatus) models.Order {
	return models.Order{
		ID:             id,
		User:           user,
		Amount:         amount,
		Status:         status,
		PaymentStatus:  payment,
		DeliveryStatus: delivery,
		Date:           "2024-11-01",
	}
}

func TestUserSpending(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		report := UserSpending(nil)

		if len(report.UserTotals) != 0 || report.TopUser != nil || report.CompletionRate != 0 {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("totals cover completed and paid orders only", func(t *testing.T) {
		orders := []models.Order{
			mk("1", "User A", 100, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("2", "User A", 50, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("3", "User B", 200, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("4", "User A", 100, models.OrderStatusPending, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("5", "User B", 100, models.OrderStatusCompleted, models.PaymentStatusPending, models.DeliveryStatusDelivered),
		}

		report := UserSpending(orders)

		if got := report.UserTotals["User A"]; got != 150 {
			t.Errorf("User A total = %v, want 150", got)
		}
		if got := report.UserTotals["User B"]; got != 200 {
			t.Errorf("User B total = %v, want 200", got)
		}
	})

	t.Run("top user tracks the running maximum", func(t *testing.T) {
		orders := []models.Order{
			mk("1", "User A", 100, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("2", "User B", 200, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("3", "User A", 150, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
		}

		report := UserSpending(orders)

		if report.TopUser == nil {
			t.Fatal("expected a top user")
		}
		if report.TopUser.Name != "User A" || report.TopUser.Total != 250 {
			t.Errorf("top user = %+v, want User A with 250", report.TopUser)
		}
	})

	t.Run("completion rate counts unpaid completed orders", func(t *testing.T) {
		orders := []models.Order{
			mk("1", "User A", 100, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("2", "User B", 100, models.OrderStatusPending, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("3", "User C", 100, models.OrderStatusCompleted, models.PaymentStatusPending, models.DeliveryStatusDelivered),
			mk("4", "User D", 100, models.OrderStatusCancelled, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
		}

		report := UserSpending(orders)

		if math.Abs(report.CompletionRate-0.5) > 1e-9 {
			t.Errorf("completion rate = %v, want 0.5", report.CompletionRate)
		}
	})
}

func TestFulfillment(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		report := Fulfillment(nil)

		if len(report.PaidButNotDelivered) != 0 || len(report.DeliveryStats) != 0 || len(report.Anomalies) != 0 {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("paid but not delivered", func(t *testing.T) {
		orders := []models.Order{
			mk("1", "User A", 100, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusShipping),
			mk("2", "User B", 200, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
			mk("3", "User C", 300, models.OrderStatusPending, models.PaymentStatusPending, models.DeliveryStatusPending),
		}

		report := Fulfillment(orders)

		if len(report.PaidButNotDelivered) != 1 || report.PaidButNotDelivered[0].ID != "1" {
			t.Errorf("paidButNotDelivered = %+v", report.PaidButNotDelivered)
		}
	})

	t.Run("delivery stats aggregate count and amount", func(t *testing.T) {
		orders := []models.Order{
			mk("1", "User A", 100, models.OrderStatusProcessing, models.PaymentStatusPaid, models.DeliveryStatusShipping),
			mk("2", "User B", 200, models.OrderStatusProcessing, models.PaymentStatusPaid, models.DeliveryStatusShipping),
			mk("3", "User C", 300, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
		}

		report := Fulfillment(orders)

		shipping := report.DeliveryStats[models.DeliveryStatusShipping]
		if shipping.Count != 2 || shipping.TotalAmount != 300 {
			t.Errorf("shipping bucket = %+v, want count 2 amount 300", shipping)
		}
		delivered := report.DeliveryStats[models.DeliveryStatusDelivered]
		if delivered.Count != 1 || delivered.TotalAmount != 300 {
			t.Errorf("delivered bucket = %+v, want count 1 amount 300", delivered)
		}
	})

	t.Run("anomalies", func(t *testing.T) {
		orders := []models.Order{
			mk("1", "User A", 100, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusShipping),
			mk("2", "User B", 200, models.OrderStatusProcessing, models.PaymentStatusPending, models.DeliveryStatusShipping),
			mk("3", "User C", 300, models.OrderStatusCompleted, models.PaymentStatusPaid, models.DeliveryStatusDelivered),
		}

		report := Fulfillment(orders)

		if len(report.Anomalies) != 2 {
			t.Fatalf("anomalies = %+v, want 2", report.Anomalies)
		}
		if report.Anomalies[0].Order.ID != "1" || report.Anomalies[0].Reason != ReasonCompletedNotDelivered {
			t.Errorf("first anomaly = %+v", report.Anomalies[0])
		}
		if report.Anomalies[1].Order.ID != "2" || report.Anomalies[1].Reason != ReasonPaymentPendingButShipping {
			t.Errorf("second anomaly = %+v", report.Anomalies[1])
		}
	})

	t.Run("one order can trip both anomaly checks", func(t *testing.T) {
		orders := []models.Order{
			mk("1", "User A", 100, models.OrderStatusCompleted, models.PaymentStatusPending, models.DeliveryStatusShipping),
		}

		report := Fulfillment(orders)

		if len(report.Anomalies) != 2 {
			t.Fatalf("anomalies = %+v, want both reasons", report.Anomalies)
		}
	})
}
