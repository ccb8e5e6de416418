package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
)

const defaultTimeout = 10 * time.Second

// Client is a typed wrapper over the customer HTTP API. Every method
// threads the caller's context so navigation-style cancellation works
// without an explicit token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	var envelope dto.CustomerListResponse
	if err := c.do(ctx, http.MethodGet, "/api/customers", nil, &envelope); err != nil {
		return nil, err
	}
	customers := make([]*customer.Customer, len(envelope.Data))
	for i := range envelope.Data {
		customers[i] = responseToCustomer(envelope.Data[i])
	}
	return customers, nil
}

func (c *Client) GetCustomer(ctx context.Context, accountID string) (*customer.Customer, error) {
	var envelope dto.CustomerEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/customers/"+accountID, nil, &envelope); err != nil {
		return nil, err
	}
	return responseToCustomer(envelope.Data), nil
}

func (c *Client) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*customer.Customer, error) {
	var envelope dto.CustomerEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/customers", req, &envelope); err != nil {
		return nil, err
	}
	return responseToCustomer(envelope.Data), nil
}

func (c *Client) UpdateCustomer(ctx context.Context, accountID string, req dto.UpdateCustomerRequest) (*customer.Customer, error) {
	var envelope dto.CustomerEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/customers/"+accountID, req, &envelope); err != nil {
		return nil, err
	}
	return responseToCustomer(envelope.Data), nil
}

func (c *Client) DeleteCustomer(ctx context.Context, accountID string) error {
	var envelope dto.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/customers/"+accountID, nil, &envelope)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: network error: %v", apperrors.ErrInternalServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response body: %v", apperrors.ErrInternalServer, err)
	}
	return nil
}

// decodeAPIError maps the error envelope back onto the same sentinels the
// server raised, so callers can use errors.Is on either side of the wire.
func decodeAPIError(resp *http.Response) error {
	var envelope dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: unexpected response status %d", apperrors.ErrInternalServer, resp.StatusCode)
	}

	var sentinel error
	switch envelope.Error.Code {
	case "NOT_FOUND":
		sentinel = apperrors.ErrNotFound
	case "CONFLICT":
		sentinel = apperrors.ErrConflict
	case "VALIDATION_ERROR":
		sentinel = apperrors.ErrValidation
	case "UNAUTHORIZED":
		sentinel = apperrors.ErrUnauthorized
	default:
		sentinel = apperrors.ErrInternalServer
	}
	return fmt.Errorf("%w: %s", sentinel, envelope.Error.Message)
}

func responseToCustomer(resp dto.CustomerResponse) *customer.Customer {
	return &customer.Customer{
		AccountID:   resp.AccountID,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		Email:       resp.Email,
		PhoneNumber: resp.PhoneNumber,
		Address:     resp.Address,
		City:        resp.City,
		State:       resp.State,
		Country:     resp.Country,
		DateCreated: resp.DateCreated,
	}
}
