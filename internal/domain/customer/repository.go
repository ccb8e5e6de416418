package customer

import (
	"context"
)

// CustomerRepository is the data-access contract for customer rows.
// Absence is always signalled with apperrors.ErrNotFound wrapped errors,
// never with a nil result and nil error.
type CustomerRepository interface {
	// FindAll returns every customer ordered by date_created descending.
	FindAll(ctx context.Context) ([]*Customer, error)

	FindByID(ctx context.Context, accountID string) (*Customer, error)

	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// Create persists cust and fills in the generated date_created.
	Create(ctx context.Context, cust *Customer) error

	// Update applies only the non-nil fields of input and returns the
	// updated record. It never creates a row.
	Update(ctx context.Context, accountID string, input UpdateInput) (*Customer, error)

	// Delete removes the row if present and reports whether one was removed.
	// Deleting a missing id is not an error.
	Delete(ctx context.Context, accountID string) (bool, error)

	Count(ctx context.Context) (int64, error)
}
