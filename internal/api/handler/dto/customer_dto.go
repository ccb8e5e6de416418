package dto

import (
	"reflect"
	"strings"
	"time"

	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

// One validator instance per process; field names in violations come from
// the json tags so they match the wire contract.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "cannot be empty"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be less than " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func collectViolations(err error) error {
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(apperrors.FieldViolation{Field: "body", Message: "is invalid"})
	}
	violations := make([]apperrors.FieldViolation, 0, len(validationErrs))
	for _, fe := range validationErrs {
		violations = append(violations, apperrors.FieldViolation{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return apperrors.NewValidationError(violations...)
}

type CreateCustomerRequest struct {
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitnil,max=20"`
	Address     *string `json:"address" validate:"omitnil,max=255"`
	City        *string `json:"city" validate:"omitnil,max=100"`
	State       *string `json:"state" validate:"omitnil,max=100"`
	Country     *string `json:"country" validate:"omitnil,max=100"`
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

// Normalize trims every field and lowercases the email before the rules
// run, so uniqueness is effectively case-insensitive.
func (r *CreateCustomerRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.PhoneNumber = trimPtr(r.PhoneNumber)
	r.Address = trimPtr(r.Address)
	r.City = trimPtr(r.City)
	r.State = trimPtr(r.State)
	r.Country = trimPtr(r.Country)
}

func (r *CreateCustomerRequest) Validate() error {
	r.Normalize()
	return collectViolations(validate.Struct(r))
}

func (r *CreateCustomerRequest) ToInput() customer.CreateInput {
	return customer.CreateInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
	}
}

// UpdateCustomerRequest is a partial patch: a nil pointer means the field
// was omitted and keeps its prior value, a present blank optional field
// clears it to NULL. Required fields may not be blanked.
type UpdateCustomerRequest struct {
	FirstName   *string `json:"first_name" validate:"omitnil,min=1,max=100"`
	LastName    *string `json:"last_name" validate:"omitnil,min=1,max=100"`
	Email       *string `json:"email" validate:"omitnil,min=1,email,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitnil,max=20"`
	Address     *string `json:"address" validate:"omitnil,max=255"`
	City        *string `json:"city" validate:"omitnil,max=100"`
	State       *string `json:"state" validate:"omitnil,max=100"`
	Country     *string `json:"country" validate:"omitnil,max=100"`
}

func (r *UpdateCustomerRequest) Normalize() {
	r.FirstName = trimPtr(r.FirstName)
	r.LastName = trimPtr(r.LastName)
	if r.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &lowered
	}
	r.PhoneNumber = trimPtr(r.PhoneNumber)
	r.Address = trimPtr(r.Address)
	r.City = trimPtr(r.City)
	r.State = trimPtr(r.State)
	r.Country = trimPtr(r.Country)
}

func (r *UpdateCustomerRequest) Validate() error {
	r.Normalize()
	return collectViolations(validate.Struct(r))
}

func (r *UpdateCustomerRequest) ToInput() customer.UpdateInput {
	return customer.UpdateInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
	}
}

type CustomerResponse struct {
	AccountID   string    `json:"account_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	Address     *string   `json:"address"`
	City        *string   `json:"city"`
	State       *string   `json:"state"`
	Country     *string   `json:"country"`
	DateCreated time.Time `json:"date_created"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		AccountID:   cust.AccountID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		Email:       cust.Email,
		PhoneNumber: cust.PhoneNumber,
		Address:     cust.Address,
		City:        cust.City,
		State:       cust.State,
		Country:     cust.Country,
		DateCreated: cust.DateCreated,
	}
}

type CustomerListResponse struct {
	Success bool               `json:"success"`
	Data    []CustomerResponse `json:"data"`
	Count   int                `json:"count"`
}

type CustomerEnvelope struct {
	Success bool             `json:"success"`
	Data    CustomerResponse `json:"data"`
	Message string           `json:"message,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}
