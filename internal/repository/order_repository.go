package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/furxx2000/orderdeck/internal/database"
	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/pkg/logger"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrDatabase = errors.New("database error")
)

// filterColumns maps the wire-level column keys onto SQL columns. Only
// whitelisted columns ever reach the query text.
var filterColumns = map[string]string{
	"id":             "id",
	"user":           `"user"`,
	"status":         "status",
	"paymentStatus":  "payment_status",
	"deliveryStatus": "delivery_status",
	"date":           "date",
}

var sortColumns = map[string]string{
	"id":             "id",
	"user":           `"user"`,
	"amount":         "amount",
	"status":         "status",
	"paymentStatus":  "payment_status",
	"deliveryStatus": "delivery_status",
	"date":           "date",
}

// OrderFilter describes one paginated listing request
type OrderFilter struct {
	Search        string
	Filters       map[string][]string
	SortID        string
	SortDirection string
	Page          int // 1-based
	PageSize      int
}

// OrderRepository handles database operations for orders
type OrderRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *database.Database, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `id, "user", amount, status, payment_status, delivery_status, date`

// GetAll retrieves every order, in date order
func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY date ASC, id ASC`, orderColumns)

	orders := []models.Order{}
	err := r.db.DB.SelectContext(ctx, &orders, query)

	if err != nil {
		r.logger.Error("Failed to get all orders", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return orders, nil
}

// GetByID retrieves an order by its ID
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	var order models.Order
	err := r.db.DB.GetContext(ctx, &order, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get order by ID", "error", err, "orderID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &order, nil
}

// ListPaginated retrieves one page of orders matching the filter, plus
// the total count and aggregate stats over the whole filtered set.
func (r *OrderRepository) ListPaginated(ctx context.Context, f OrderFilter) ([]models.Order, int, models.OrderStats, error) {
	where, args := buildWhere(f)

	rowsQuery := fmt.Sprintf(`SELECT %s FROM orders %s %s LIMIT %d OFFSET %d`,
		orderColumns, where, orderBy(f), f.PageSize, (f.Page-1)*f.PageSize)

	orders := []models.Order{}

	if err := r.db.DB.SelectContext(ctx, &orders, rowsQuery, args...); err != nil {
		r.logger.Error("Failed to list orders", "error", err)
		return nil, 0, models.OrderStats{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM orders %s`, where)

	var total int

	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		r.logger.Error("Failed to count orders", "error", err)
		return nil, 0, models.OrderStats{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	// Aggregates cover the filtered set before pagination.
	statsQuery := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(amount), 0)                                     AS total_amount,
			COUNT(*) FILTER (WHERE status = 'pending')                   AS pending_count,
			COUNT(*) FILTER (WHERE status = 'processing')                AS processing_count,
			COUNT(*) FILTER (WHERE delivery_status = 'shipping')         AS shipping_count
		FROM orders %s`, where)

	var stats models.OrderStats

	if err := r.db.DB.GetContext(ctx, &stats, statsQuery, args...); err != nil {
		r.logger.Error("Failed to aggregate order stats", "error", err)
		return nil, 0, models.OrderStats{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return orders, total, stats, nil
}

// BeginTx starts a transaction
func (r *OrderRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return tx, nil
}

// UpdateDeliveryStatusInTx updates one order's delivery status within tx
func (r *OrderRepository) UpdateDeliveryStatusInTx(tx *sqlx.Tx, id string, status models.DeliveryStatus) error {
	result, err := tx.Exec(`UPDATE orders SET delivery_status = $1 WHERE id = $2`, status, id)

	if err != nil {
		r.logger.Error("Failed to update delivery status", "error", err, "orderID", id)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// buildWhere compiles the search text and facet filters into a WHERE
// clause with positional args
func buildWhere(f OrderFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if f.Search != "" {
		args = append(args, SubsequencePattern(f.Search))
		placeholder := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf(`("user" ILIKE %s OR id ILIKE %s)`, placeholder, placeholder))
	}

	for key, values := range f.Filters {
		if len(values) == 0 {
			continue
		}

		column, ok := filterColumns[key]

		if !ok {
			continue
		}

		args = append(args, pq.Array(values))
		conditions = append(conditions, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func orderBy(f OrderFilter) string {
	column, ok := sortColumns[f.SortID]

	if !ok {
		// No sort keeps the dataset's natural order.
		return "ORDER BY date ASC, id ASC"
	}

	direction := "ASC"

	if strings.EqualFold(f.SortDirection, "desc") {
		direction = "DESC"
	}

	// The id tiebreak keeps equal keys in a fixed relative order.
	return fmt.Sprintf("ORDER BY %s %s, id ASC", column, direction)
}

// SubsequencePattern compiles a search string into an ILIKE pattern that
// matches the same rows as the in-memory fuzzy subsequence test: a
// wildcard between every character, with LIKE metacharacters escaped.
// "tst" becomes "%t%s%t%".
func SubsequencePattern(search string) string {
	var b strings.Builder
	b.WriteByte('%')

	for _, r := range search {
		switch r {
		case '%', '_', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
		b.WriteByte('%')
	}

	return b.String()
}
