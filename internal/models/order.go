package models

// OrderStatus represents the overall status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents the payment status of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DeliveryStatus represents the delivery status of an order
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusPreparing DeliveryStatus = "preparing"
	DeliveryStatusShipping  DeliveryStatus = "shipping"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

// IsValid reports whether s is one of the known order statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether s is one of the known payment statuses
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsValid reports whether s is one of the known delivery statuses
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusPreparing, DeliveryStatusShipping,
		DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

// DeliveryStatuses lists every delivery status in display order
var DeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusPreparing,
	DeliveryStatusShipping,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

// Order represents an order in the system. The json names match the wire
// shape the dashboard consumes.
type Order struct {
	ID             string         `db:"id" json:"id"`
	User           string         `db:"user" json:"user"`
	Amount         float64        `db:"amount" json:"amount"`
	Status         OrderStatus    `db:"status" json:"status"`
	PaymentStatus  PaymentStatus  `db:"payment_status" json:"paymentStatus"`
	DeliveryStatus DeliveryStatus `db:"delivery_status" json:"deliveryStatus"`
	Date           string         `db:"date" json:"date"`
}

// Validate reports whether every enum field holds a known value
func (o *Order) Validate() bool {
	return o.ID != "" &&
		o.Status.IsValid() &&
		o.PaymentStatus.IsValid() &&
		o.DeliveryStatus.IsValid()
}

// OrderStats holds the aggregate figures for a filtered order set
type OrderStats struct {
	TotalAmount     float64 `db:"total_amount" json:"totalAmount"`
	PendingCount    int     `db:"pending_count" json:"pendingCount"`
	ProcessingCount int     `db:"processing_count" json:"processingCount"`
	ShippingCount   int     `db:"shipping_count" json:"shippingCount"`
}

// PageMeta describes the pagination window of a paginated response
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// PaginatedOrders is the response shape of the paginated listing endpoint
type PaginatedOrders struct {
	Data  []Order    `json:"data"`
	Meta  PageMeta   `json:"meta"`
	Stats OrderStats `json:"stats"`
}
