package service

import (
	"context"
	"fmt"

	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/repository"
	apperrors "github.com/furxx2000/orderdeck/pkg/errors"
	"github.com/furxx2000/orderdeck/pkg/logger"
)

// OrderService handles order-related operations
type OrderService struct {
	orderRepo  *repository.OrderRepository
	outboxRepo *repository.OutboxRepository
	logger     logger.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo *repository.OrderRepository,
	outboxRepo *repository.OutboxRepository,
	logger logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// GetAllOrders retrieves every order
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// ListOrders retrieves one page of orders with pagination metadata and
// aggregate stats over the filtered set
func (s *OrderService) ListOrders(ctx context.Context, f repository.OrderFilter) (*models.PaginatedOrders, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 5
	}

	orders, total, stats, err := s.orderRepo.ListPaginated(ctx, f)

	if err != nil {
		return nil, err
	}

	totalPages := (total + f.PageSize - 1) / f.PageSize

	return &models.PaginatedOrders{
		Data: orders,
		Meta: models.PageMeta{
			Total:      total,
			Page:       f.Page,
			PageSize:   f.PageSize,
			TotalPages: totalPages,
		},
		Stats: stats,
	}, nil
}

// CheckDeliveryTransition enforces the delivery business rules. A
// cancelled order stays cancelled, and an unpaid order never moves into
// shipping or delivered.
func CheckDeliveryTransition(order *models.Order, newStatus models.DeliveryStatus) error {
	if order.Status == models.OrderStatusCancelled && newStatus != models.DeliveryStatusCancelled {
		return apperrors.NewBusinessRuleError("a cancelled order can only have delivery status 'cancelled'")
	}

	if order.PaymentStatus == models.PaymentStatusPending &&
		(newStatus == models.DeliveryStatusShipping || newStatus == models.DeliveryStatusDelivered) {
		return apperrors.NewBusinessRuleError("a pending-payment order cannot be updated to 'shipping' or 'delivered'")
	}

	return nil
}

// UpdateDeliveryStatus updates an order's delivery status and records an
// outbox event in the same transaction
func (s *OrderService) UpdateDeliveryStatus(ctx context.Context, orderID string, newStatus models.DeliveryStatus) (*models.Order, error) {
	if !newStatus.IsValid() {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("invalid delivery status: %s", newStatus))
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)

	if err != nil {
		return nil, err
	}

	if err := CheckDeliveryTransition(order, newStatus); err != nil {
		return nil, err
	}

	if order.DeliveryStatus == newStatus {
		// No change needed
		return order, nil
	}

	oldStatus := order.DeliveryStatus
	order.DeliveryStatus = newStatus

	outboxMsg, err := models.NewDeliveryStatusChangedEvent(order, oldStatus)

	if err != nil {
		s.logger.Error("Failed to create outbox message", "error", err)
		return nil, fmt.Errorf("failed to create outbox message: %w", err)
	}

	tx, err := s.orderRepo.BeginTx(ctx)

	if err != nil {
		return nil, err
	}

	// Rollback transaction in case of error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = s.orderRepo.UpdateDeliveryStatusInTx(tx, orderID, newStatus); err != nil {
		return nil, err
	}

	if err = s.outboxRepo.CreateInTx(tx, outboxMsg); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Delivery status updated with outbox message",
		"order_id", order.ID, "old_status", oldStatus, "new_status", newStatus, "outbox_id", outboxMsg.ID)
	return order, nil
}
