package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// An unparseable account ID cannot match any row, so it reports the same
// NOT_FOUND the lookup would.
func getAccountIDFromURL(r *http.Request) (string, error) {
	idStr := chi.URLParam(r, "accountID")
	if idStr == "" {
		return "", fmt.Errorf("%w: accountID not found in URL path", apperrors.ErrInvalidArgument)
	}
	if _, err := uuid.Parse(idStr); err != nil {
		return "", fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, idStr)
	}
	return idStr, nil
}

// ListCustomers handles GET /api/customers
// @Summary List customers
// @Description Retrieves all customer records, newest first.
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.CustomerListResponse "List of customers"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received list customers request")

	customers, err := h.service.GetAllCustomers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customers", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	data := make([]dto.CustomerResponse, len(customers))
	for i, cust := range customers {
		data[i] = dto.NewCustomerResponse(cust)
	}

	h.logger.InfoContext(r.Context(), "Customers listed successfully", slog.Int("count", len(data)))
	respondJSON(w, http.StatusOK, dto.CustomerListResponse{
		Success: true,
		Data:    data,
		Count:   len(data),
	})
}

// GetCustomer handles GET /api/customers/{accountID}
// @Summary Retrieve customer details
// @Description Retrieves a single customer by account ID.
// @Tags Customers
// @Produce json
// @Param accountID path string true "Customer account ID"
// @Success 200 {object} dto.CustomerEnvelope "Customer details retrieved"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{accountID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get account ID from URL", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received get customer request")

	cust, err := h.service.GetCustomerByID(r.Context(), accountID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer retrieved successfully")
	respondJSON(w, http.StatusOK, dto.CustomerEnvelope{
		Success: true,
		Data:    dto.NewCustomerResponse(cust),
	})
}

// CreateCustomer handles POST /api/customers
// @Summary Create a new customer
// @Description Creates a new customer record. Email must be unique.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CustomerEnvelope "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, r, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Request validation passed")

	created, err := h.service.CreateCustomer(r.Context(), req.ToInput())
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrConflict) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to create customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.String("accountID", created.AccountID))
	respondJSON(w, http.StatusCreated, dto.CustomerEnvelope{
		Success: true,
		Data:    dto.NewCustomerResponse(created),
		Message: "Customer created successfully",
	})
}

// UpdateCustomer handles PUT /api/customers/{accountID}
// @Summary Update a customer
// @Description Applies a partial update. Omitted fields keep their value; a blank optional field is cleared.
// @Tags Customers
// @Accept json
// @Produce json
// @Param accountID path string true "Customer account ID"
// @Param request body dto.UpdateCustomerRequest true "Partial update payload"
// @Success 200 {object} dto.CustomerEnvelope "Customer successfully updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{accountID} [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get account ID from URL", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received update customer request")

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, r, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Request validation passed")

	updated, err := h.service.UpdateCustomer(r.Context(), accountID, req.ToInput())
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to update customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer updated successfully")
	respondJSON(w, http.StatusOK, dto.CustomerEnvelope{
		Success: true,
		Data:    dto.NewCustomerResponse(updated),
		Message: "Customer updated successfully",
	})
}

// DeleteCustomer handles DELETE /api/customers/{accountID}
// @Summary Delete a customer
// @Description Removes a customer record permanently.
// @Tags Customers
// @Produce json
// @Param accountID path string true "Customer account ID"
// @Success 200 {object} dto.MessageResponse "Customer successfully deleted"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{accountID} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get account ID from URL", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received delete customer request")

	if err := h.service.DeleteCustomer(r.Context(), accountID); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to delete customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deleted successfully")
	respondJSON(w, http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Customer deleted successfully",
	})
}

// Health handles GET /health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is healthy"
// @Router /health [get]
func (h *CustomerHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
