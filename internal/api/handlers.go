package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/repository"
	apperrors "github.com/furxx2000/orderdeck/pkg/errors"
)

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Message string `json:"message"`
}

// Health represents the health check response
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// filterParams lists the query parameters that act as facet filters on
// the paginated endpoint. Values arrive comma-joined.
var filterParams = []string{"id", "user", "status", "paymentStatus", "deliveryStatus", "date"}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:    "ok",
		Version:   "0.1.0",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	s.respondWithJSON(w, http.StatusOK, health)
}

// getOrdersHandler returns the full order list
func (s *Server) getOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orderService.GetAllOrders(r.Context())

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, orders)
}

// getPaginatedOrdersHandler returns one page of orders with pagination
// metadata and stats over the filtered set
func (s *Server) getPaginatedOrdersHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)

	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.orderService.ListOrders(r.Context(), filter)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, page)
}

type updateDeliveryStatusRequest struct {
	DeliveryStatus models.DeliveryStatus `json:"deliveryStatus"`
}

// updateDeliveryStatusHandler applies a delivery status change to one order
func (s *Server) updateDeliveryStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var req updateDeliveryStatusRequest
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	defer r.Body.Close()

	order, err := s.orderService.UpdateDeliveryStatus(r.Context(), id, req.DeliveryStatus)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, order)
}

func parseOrderFilter(r *http.Request) (repository.OrderFilter, error) {
	q := r.URL.Query()

	filter := repository.OrderFilter{
		Search:        q.Get("search"),
		SortID:        q.Get("sortId"),
		SortDirection: q.Get("sortDirection"),
		Page:          1,
		PageSize:      5,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)

		if err != nil || page < 1 {
			return filter, errors.New("page must be a positive integer")
		}
		filter.Page = page
	}

	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)

		if err != nil || size < 1 {
			return filter, errors.New("pageSize must be a positive integer")
		}
		filter.PageSize = size
	}

	for _, key := range filterParams {
		raw := q.Get(key)

		if raw == "" {
			continue
		}

		if filter.Filters == nil {
			filter.Filters = make(map[string][]string)
		}
		filter.Filters[key] = strings.Split(raw, ",")
	}

	return filter, nil
}

// respondWithServiceError maps service and repository errors onto HTTP
// responses. The message of a business rule rejection passes through
// verbatim.
func (s *Server) respondWithServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	var appErr *apperrors.AppError

	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		s.respondWithError(w, appErr.StatusCode, appErr.Error())
		return
	}

	s.logger.Error("Request failed", "error", err)
	s.respondWithError(w, http.StatusInternalServerError, "An unknown error occurred")
}

// respondWithError sends a JSON response with an error message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, ErrorResponse{Message: message})
}

// respondWithJSON sends a JSON response
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)

	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// clientIP extracts the caller's address for rate limiting, preferring
// the first X-Forwarded-For hop when a proxy set one
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)

	if err != nil {
		return r.RemoteAddr
	}

	return host
}
