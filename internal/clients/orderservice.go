// Package clients holds HTTP clients for the services the dashboard
// consumes.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/pkg/circuitbreaker"
	"github.com/furxx2000/orderdeck/pkg/errors"
	"github.com/furxx2000/orderdeck/pkg/logger"
	"github.com/furxx2000/orderdeck/pkg/retry"
)

// OrderServiceClient is a client for the order service API
type OrderServiceClient struct {
	baseURL     string
	httpClient  *http.Client
	logger      logger.Logger
	retryConfig *retry.RetryConfig
	breaker     *circuitbreaker.CircuitBreaker
}

type errorBody struct {
	Message string `json:"message"`
}

// NewOrderServiceClient creates a client for the order service at baseURL
func NewOrderServiceClient(baseURL string, logger logger.Logger) *OrderServiceClient {
	return &OrderServiceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
		retryConfig: &retry.RetryConfig{
			MaxAttempts: 3,
			BackoffStrategy: &retry.ExponentialBackoff{
				InitialInterval: 300 * time.Millisecond,
				MaxInterval:     3 * time.Second,
				Multiplier:      1.5,
				JitterFactor:    0.2,
			},
			Logger: logger,
			RetryableErrors: []error{
				errors.ErrTimeout,
				errors.ErrTemporaryFailure,
				errors.ErrServiceUnavailable,
			},
		},
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 5,
			ResetTimeout:     15 * time.Second,
			HalfOpenMaxCalls: 2,
		}),
	}
}

// FetchOrders retrieves the full order list for the client-side strategy
func (c *OrderServiceClient) FetchOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order

	err := c.do(ctx, func() error {
		body, err := c.get(ctx, c.baseURL+"/api/orders")

		if err != nil {
			return err
		}

		orders = nil

		if err := json.Unmarshal(body, &orders); err != nil {
			return errors.NewValidationError("order service returned malformed data")
		}

		for i := range orders {
			if !orders[i].Validate() {
				return errors.NewValidationError("order service returned an order with unknown status values")
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// FetchPaginatedOrders retrieves one page of orders matching the query.
// The filters map carries one comma-joined parameter per active column.
func (c *OrderServiceClient) FetchPaginatedOrders(ctx context.Context, page, pageSize int, sortID, sortDirection, search string, filters map[string][]string) (*models.PaginatedOrders, error) {
	u := c.baseURL + "/api/orders/paginated?" + EncodeQuery(page, pageSize, sortID, sortDirection, search, filters)

	var resp models.PaginatedOrders

	err := c.do(ctx, func() error {
		body, err := c.get(ctx, u)

		if err != nil {
			return err
		}

		resp = models.PaginatedOrders{}

		if err := json.Unmarshal(body, &resp); err != nil {
			return errors.NewValidationError("order service returned malformed data")
		}

		for i := range resp.Data {
			if !resp.Data[i].Validate() {
				return errors.NewValidationError("order service returned an order with unknown status values")
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// UpdateDeliveryStatus asks the order service to transition one order's
// delivery status. A business-rule rejection comes back with the server's
// message verbatim.
func (c *OrderServiceClient) UpdateDeliveryStatus(ctx context.Context, orderID string, status models.DeliveryStatus) (*models.Order, error) {
	u := fmt.Sprintf("%s/api/orders/%s", c.baseURL, url.PathEscape(orderID))

	var updated models.Order

	err := c.do(ctx, func() error {
		payload, err := json.Marshal(map[string]models.DeliveryStatus{"deliveryStatus": status})

		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to marshal request: %v", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewBuffer(payload))

		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to create request: %v", err))
		}

		req.Header.Set("Content-Type", "application/json")

		body, err := c.send(req)

		if err != nil {
			return err
		}

		updated = models.Order{}

		if err := json.Unmarshal(body, &updated); err != nil {
			return errors.NewValidationError("order service returned malformed data")
		}

		if !updated.Validate() {
			return errors.NewValidationError("order service returned an order with unknown status values")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// EncodeQuery builds the paginated endpoint's query string: page,
// pageSize, optional sortId+sortDirection, optional search, and one
// comma-joined parameter per filter column with accepted values.
func EncodeQuery(page, pageSize int, sortID, sortDirection, search string, filters map[string][]string) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	if sortID != "" && sortDirection != "" {
		params.Set("sortId", sortID)
		params.Set("sortDirection", sortDirection)
	}

	if search != "" {
		params.Set("search", search)
	}

	// Deterministic order keeps request logs and tests stable.
	keys := make([]string, 0, len(filters))

	for key, values := range filters {
		if len(values) > 0 {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	for _, key := range keys {
		params.Set(key, strings.Join(filters[key], ","))
	}

	return params.Encode()
}

// do wraps a call with the circuit breaker and retry policy
func (c *OrderServiceClient) do(ctx context.Context, fn retry.RetryableFunc) error {
	if !c.breaker.Allow() {
		return errors.NewTemporaryError("order service circuit open")
	}

	err := retry.Retry(ctx, fn, c.retryConfig)

	if err != nil {
		if ctx.Err() != nil {
			// A superseded request is not a service failure.
			return errors.NewCanceledError("request aborted")
		}

		// Only service-health failures count against the breaker;
		// business rejections and validation mismatches do not.
		if errors.IsRetryable(err) {
			c.breaker.Failure()
		}

		return err
	}

	c.breaker.Success()
	return nil
}

// get issues a GET and returns the response body, mapping failures into
// the shared error taxonomy
func (c *OrderServiceClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

	if err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

func (c *OrderServiceClient) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)

	if err != nil {
		if req.Context().Err() != nil {
			return nil, errors.NewCanceledError("request aborted")
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, errors.NewTimeoutError("order service request timed out")
		}
		return nil, errors.NewTemporaryError(fmt.Sprintf("failed to send request: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("failed to read response body: %v", err))
	}

	if resp.StatusCode >= 400 {
		message := serverMessage(body)

		switch {
		case resp.StatusCode == http.StatusBadRequest:
			return nil, errors.NewBusinessRuleError(message)
		case resp.StatusCode == http.StatusNotFound:
			return nil, errors.NewNotFoundError(message)
		case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
			return nil, errors.NewTimeoutError(message)
		case resp.StatusCode >= 500:
			return nil, errors.NewTemporaryError(message)
		default:
			return nil, errors.NewAppError(errors.ErrInternal, message, resp.StatusCode, false)
		}
	}

	return body, nil
}

// serverMessage extracts the server's error message, falling back to a
// generic one when the body is not the expected shape
func serverMessage(body []byte) string {
	var eb errorBody

	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}

	return "An unknown error occurred"
}
