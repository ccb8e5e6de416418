package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"customer-service/internal/api/handler"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) GetAllCustomers(ctx context.Context) ([]*customer.Customer, error) {
	ret := _m.Called(ctx)

	var r0 []*customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context) []*customer.Customer); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) GetCustomerByID(ctx context.Context, accountID string) (*customer.Customer, error) {
	ret := _m.Called(ctx, accountID)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, string) *customer.Customer); ok {
		r0 = rf(ctx, accountID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, accountID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, input customer.CreateInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, input)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, customer.CreateInput) *customer.Customer); ok {
		r0 = rf(ctx, input)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, customer.CreateInput) error); ok {
		r1 = rf(ctx, input)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) UpdateCustomer(ctx context.Context, accountID string, input customer.UpdateInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, accountID, input)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, string, customer.UpdateInput) *customer.Customer); ok {
		r0 = rf(ctx, accountID, input)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, customer.UpdateInput) error); ok {
		r1 = rf(ctx, accountID, input)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) DeleteCustomer(ctx context.Context, accountID string) error {
	ret := _m.Called(ctx, accountID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, accountID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

const testAccountID = "3f0f0a3c-9df3-4f24-9d77-9a0f0b1f7c21"

func strPtr(s string) *string { return &s }

func testCustomer() *customer.Customer {
	return &customer.Customer{
		AccountID:   testAccountID,
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane.doe@example.com",
		PhoneNumber: strPtr("555-0100"),
		DateCreated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newHandler() (*MockCustomerService, *handler.CustomerHandler) {
	mockService := new(MockCustomerService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return mockService, handler.NewCustomerHandler(mockService, logger)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, body *bytes.Buffer) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestListCustomers(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("GetAllCustomers", mock.Anything).Return([]*customer.Customer{testCustomer()}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerListResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 1, resp.Count)
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, testAccountID, resp.Data[0].AccountID)
		mockService.AssertExpectations(t)
	})

	t.Run("success with empty list", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("GetAllCustomers", mock.Anything).Return([]*customer.Customer{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerListResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Data)
		mockService.AssertExpectations(t)
	})

	t.Run("service failure hides internal detail", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("GetAllCustomers", mock.Anything).
			Return(nil, fmt.Errorf("%w: connection reset", apperrors.ErrDatabase))

		req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.False(t, resp.Success)
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
		assert.NotContains(t, resp.Error.Message, "connection reset")
		mockService.AssertExpectations(t)
	})
}

func TestGetCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("GetCustomerByID", mock.Anything, testAccountID).Return(testCustomer(), nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/customers/"+testAccountID, nil), "accountID", testAccountID)
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerEnvelope
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, testAccountID, resp.Data.AccountID)
		mockService.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("GetCustomerByID", mock.Anything, testAccountID).
			Return(nil, fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, testAccountID))

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/customers/"+testAccountID, nil), "accountID", testAccountID)
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, testAccountID)
		mockService.AssertExpectations(t)
	})

	t.Run("malformed account ID treated as not found", func(t *testing.T) {
		mockService, h := newHandler()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/customers/not-a-uuid", nil), "accountID", "not-a-uuid")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		mockService.AssertNotCalled(t, "GetCustomerByID", mock.Anything, mock.Anything)
	})
}

func TestCreateCustomerHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := newHandler()
		created := testCustomer()
		mockService.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(input customer.CreateInput) bool {
			return input.FirstName == "Jane" && input.Email == "jane.doe@example.com"
		})).Return(created, nil)

		body := []byte(`{"first_name":"Jane","last_name":"Doe","email":"Jane.Doe@Example.com","phone_number":"555-0100"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.CustomerEnvelope
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "Customer created successfully", resp.Message)
		assert.Equal(t, testAccountID, resp.Data.AccountID)
		mockService.AssertExpectations(t)
	})

	t.Run("missing required fields", func(t *testing.T) {
		mockService, h := newHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader([]byte(`{"email":"jane@example.com"}`)))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "first_name")
		assert.Contains(t, resp.Error.Message, "last_name")
		mockService.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("invalid email format", func(t *testing.T) {
		mockService, h := newHandler()

		body := []byte(`{"first_name":"Jane","last_name":"Doe","email":"not-an-email"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "email")
		mockService.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("malformed JSON body", func(t *testing.T) {
		mockService, h := newHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader([]byte(`{"first_name":`)))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		mockService.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: customer with email jane.doe@example.com already exists", apperrors.ErrConflict))

		body := []byte(`{"first_name":"Jane","last_name":"Doe","email":"jane.doe@example.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "CONFLICT", resp.Error.Code)
		mockService.AssertExpectations(t)
	})
}

func TestUpdateCustomerHandler(t *testing.T) {
	t.Run("success with partial patch", func(t *testing.T) {
		mockService, h := newHandler()
		updated := testCustomer()
		updated.FirstName = "Janet"
		mockService.On("UpdateCustomer", mock.Anything, testAccountID, mock.MatchedBy(func(input customer.UpdateInput) bool {
			return input.FirstName != nil && *input.FirstName == "Janet" && input.LastName == nil
		})).Return(updated, nil)

		body := []byte(`{"first_name":"Janet"}`)
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/"+testAccountID, bytes.NewReader(body)), "accountID", testAccountID)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerEnvelope
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "Customer updated successfully", resp.Message)
		assert.Equal(t, "Janet", resp.Data.FirstName)
		mockService.AssertExpectations(t)
	})

	t.Run("blank optional field is forwarded for clearing", func(t *testing.T) {
		mockService, h := newHandler()
		updated := testCustomer()
		updated.PhoneNumber = nil
		mockService.On("UpdateCustomer", mock.Anything, testAccountID, mock.MatchedBy(func(input customer.UpdateInput) bool {
			return input.PhoneNumber != nil && *input.PhoneNumber == ""
		})).Return(updated, nil)

		body := []byte(`{"phone_number":""}`)
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/"+testAccountID, bytes.NewReader(body)), "accountID", testAccountID)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("blank required field is rejected", func(t *testing.T) {
		mockService, h := newHandler()

		body := []byte(`{"first_name":"   "}`)
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/"+testAccountID, bytes.NewReader(body)), "accountID", testAccountID)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "first_name")
		mockService.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("UpdateCustomer", mock.Anything, testAccountID, mock.Anything).
			Return(nil, fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, testAccountID))

		body := []byte(`{"first_name":"Janet"}`)
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/"+testAccountID, bytes.NewReader(body)), "accountID", testAccountID)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("email conflict", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("UpdateCustomer", mock.Anything, testAccountID, mock.Anything).
			Return(nil, fmt.Errorf("%w: customer email already exists", apperrors.ErrConflict))

		body := []byte(`{"email":"taken@example.com"}`)
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/"+testAccountID, bytes.NewReader(body)), "accountID", testAccountID)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "CONFLICT", resp.Error.Code)
		mockService.AssertExpectations(t)
	})
}

func TestDeleteCustomerHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("DeleteCustomer", mock.Anything, testAccountID).Return(nil)

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/customers/"+testAccountID, nil), "accountID", testAccountID)
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.MessageResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "Customer deleted successfully", resp.Message)
		mockService.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockService, h := newHandler()
		mockService.On("DeleteCustomer", mock.Anything, testAccountID).
			Return(fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, testAccountID))

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/customers/"+testAccountID, nil), "accountID", testAccountID)
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		mockService.AssertExpectations(t)
	})
}

func TestHealth(t *testing.T) {
	_, h := newHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.HealthResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}
