package database

import (
	"fmt"
	"math/rand"

	"github.com/furxx2000/orderdeck/internal/models"
)

var seedOrders = []models.Order{
	{ID: "ord-1", User: "Alice", Amount: 1500, Status: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusDelivered, Date: "2024-11-01"},
	{ID: "ord-2", User: "Bob", Amount: 2300, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusShipping, Date: "2024-11-03"},
	{ID: "ord-3", User: "Alice", Amount: 800, Status: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusDelivered, Date: "2024-11-05"},
	{ID: "ord-4", User: "Charlie", Amount: 3200, Status: models.OrderStatusCancelled, PaymentStatus: models.PaymentStatusRefunded, DeliveryStatus: models.DeliveryStatusCancelled, Date: "2024-11-02"},
	{ID: "ord-5", User: "Bob", Amount: 1200, Status: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusDelivered, Date: "2024-11-04"},
	{ID: "ord-6", User: "Alice", Amount: 4500, Status: models.OrderStatusProcessing, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusPreparing, Date: "2024-11-06"},
	{ID: "ord-7", User: "David", Amount: 980, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending, DeliveryStatus: models.DeliveryStatusPending, Date: "2024-11-07"},
	{ID: "ord-8", User: "Bob", Amount: 2100, Status: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusDelivered, Date: "2024-11-08"},
}

var seedUsers = []string{"Alice", "Bob", "Charlie", "David", "Erin", "Frank", "Grace", "Heidi"}

// Seed fills an empty orders table with demo data: the fixed base set
// plus n randomly generated rows for exercising pagination.
func (d *Database) Seed(n int) error {
	var count int

	if err := d.DB.Get(&count, `SELECT COUNT(*) FROM orders`); err != nil {
		return fmt.Errorf("failed to count orders: %w", err)
	}

	if count > 0 {
		return nil
	}

	rows := append([]models.Order(nil), seedOrders...)

	for i := 0; i < n; i++ {
		rows = append(rows, randomOrder(i))
	}

	query := `
		INSERT INTO orders (id, "user", amount, status, payment_status, delivery_status, date)
		VALUES (:id, :user, :amount, :status, :payment_status, :delivery_status, :date)
	`

	for i := range rows {
		if _, err := d.DB.NamedExec(query, rows[i]); err != nil {
			return fmt.Errorf("failed to seed order %s: %w", rows[i].ID, err)
		}
	}

	d.logger.Info("Seeded orders table", "rows", len(rows))
	return nil
}

func randomOrder(i int) models.Order {
	status := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	}[rand.Intn(4)]

	payment := models.PaymentStatusPaid
	delivery := models.DeliveryStatusDelivered

	switch status {
	case models.OrderStatusPending:
		payment = models.PaymentStatusPending
		delivery = models.DeliveryStatusPending
	case models.OrderStatusProcessing:
		delivery = []models.DeliveryStatus{
			models.DeliveryStatusPreparing,
			models.DeliveryStatusShipping,
		}[rand.Intn(2)]
	case models.OrderStatusCancelled:
		payment = models.PaymentStatusRefunded
		delivery = models.DeliveryStatusCancelled
	}

	return models.Order{
		ID:             models.GenerateID("ord"),
		User:           seedUsers[rand.Intn(len(seedUsers))],
		Amount:         float64(rand.Intn(49000)+1000) / 10,
		Status:         status,
		PaymentStatus:  payment,
		DeliveryStatus: delivery,
		Date:           fmt.Sprintf("2024-11-%02d", rand.Intn(28)+1),
	}
}
