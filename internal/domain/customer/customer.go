package customer

import (
	"strings"
	"time"
)

type Customer struct {
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

// CreateInput carries the validated fields for a new customer record.
// Optional fields are pointers; nil or blank values are persisted as NULL.
type CreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber *string
	Address     *string
	City        *string
	State       *string
	Country     *string
}

// UpdateInput is a partial patch. A nil field means "leave unchanged";
// a non-nil blank value on an optional field clears it to NULL. This keeps
// the omitted/empty distinction all the way from the transport boundary.
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Address     *string
	City        *string
	State       *string
	Country     *string
}

func (u UpdateInput) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.PhoneNumber == nil && u.Address == nil && u.City == nil &&
		u.State == nil && u.Country == nil
}

func NewCustomer(accountID string, input CreateInput) *Customer {
	return &Customer{
		AccountID:   accountID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: NormalizeOptional(input.PhoneNumber),
		Address:     NormalizeOptional(input.Address),
		City:        NormalizeOptional(input.City),
		State:       NormalizeOptional(input.State),
		Country:     NormalizeOptional(input.Country),
	}
}

// NormalizeOptional collapses nil and blank optional values into nil so an
// empty string is never stored in place of NULL.
func NormalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
