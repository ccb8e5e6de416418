package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-service/internal/event"
	"customer-service/internal/pkg/apperrors"

	"github.com/google/uuid"
)

const customerNotFoundMsg = "Customer not found by repository"

type CustomerService interface {
	GetAllCustomers(ctx context.Context) ([]*Customer, error)
	GetCustomerByID(ctx context.Context, accountID string) (*Customer, error)
	CreateCustomer(ctx context.Context, input CreateInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, accountID string, input UpdateInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, accountID string) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		eventPublisher = event.NewNoopPublisher(logger)
		logger.Warn("Warning: No event publisher provided to NewCustomerService, using noop publisher")
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		AccountID:   cust.AccountID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		Email:       cust.Email,
		DateCreated: cust.DateCreated,
	}
}

func (s *customerService) publishLifecycleEvent(ctx context.Context, action string, cust *Customer) {
	if cust == nil {
		s.logger.ErrorContext(ctx, "Attempted to publish lifecycle event for nil customer", slog.String("action", action))
		return
	}
	evt := event.CustomerLifecycleEvent{
		Action:    action,
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(cust),
	}

	if err := s.pub.PublishCustomerLifecycle(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer lifecycle event",
			slog.String("action", action), slog.Any("error", err))
	} else {
		s.logger.InfoContext(ctx, "Successfully published customer lifecycle event", slog.String("action", action))
	}
}

func (s *customerService) GetAllCustomers(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list all customers")

	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, accountID string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by account ID", slog.String("accountID", accountID))

	cust, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFoundMsg, slog.String("accountID", accountID))
			return nil, fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, accountID)
		}

		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", accountID, err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, input CreateInput) (*Customer, error) {
	logCtx := s.logger.With(slog.String("email", input.Email))
	logCtx.InfoContext(ctx, "Attempting to create new customer")

	existing, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logCtx.ErrorContext(ctx, "Repository error checking email uniqueness", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		logCtx.WarnContext(ctx, "Business rule failed: email already in use")
		return nil, fmt.Errorf("%w: customer with email %s already exists", apperrors.ErrConflict, input.Email)
	}

	cust := NewCustomer(uuid.NewString(), input)
	logCtx = logCtx.With(slog.String("accountID", cust.AccountID))
	logCtx.InfoContext(ctx, "Customer domain object created, calling repository Create")

	if err := s.repo.Create(ctx, cust); err != nil {
		// A concurrent create can slip past the pre-check; the unique index
		// is authoritative and the repository reports it as a conflict.
		if errors.Is(err, apperrors.ErrConflict) {
			logCtx.WarnContext(ctx, "Unique constraint conflict during insert", slog.Any("error", err))
			return nil, fmt.Errorf("%w: customer with email %s already exists", apperrors.ErrConflict, input.Email)
		}
		logCtx.ErrorContext(ctx, "Repository failed to create new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create new customer: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully created new customer, publishing creation event")
	s.publishLifecycleEvent(ctx, event.ActionCreated, cust)

	return cust, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, accountID string, input UpdateInput) (*Customer, error) {
	logCtx := s.logger.With(slog.String("accountID", accountID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	current, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFoundMsg)
			return nil, fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, accountID)
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %s to update: %w", accountID, err)
	}

	if input.Email != nil && *input.Email != current.Email {
		conflicting, err := s.repo.FindByEmail(ctx, *input.Email)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logCtx.ErrorContext(ctx, "Repository error checking email uniqueness for update", slog.Any("error", err))
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if conflicting != nil && conflicting.AccountID != accountID {
			logCtx.WarnContext(ctx, "Business rule failed: email already in use by another customer")
			return nil, fmt.Errorf("%w: customer with email %s already exists", apperrors.ErrConflict, *input.Email)
		}
	}

	updated, err := s.repo.Update(ctx, accountID, input)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Raced with a concurrent delete between the existence check
			// and the update statement.
			logCtx.WarnContext(ctx, "Customer disappeared before update completed")
			return nil, fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, accountID)
		}
		if errors.Is(err, apperrors.ErrConflict) {
			logCtx.WarnContext(ctx, "Unique constraint conflict during update", slog.Any("error", err))
			return nil, fmt.Errorf("%w: customer email already exists", apperrors.ErrConflict)
		}
		logCtx.ErrorContext(ctx, "Repository failed to update customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer %s: %w", accountID, err)
	}

	logCtx.InfoContext(ctx, "Successfully updated customer, publishing update event")
	s.publishLifecycleEvent(ctx, event.ActionUpdated, updated)

	return updated, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, accountID string) error {
	logCtx := s.logger.With(slog.String("accountID", accountID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	existing, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFoundMsg)
			return fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, accountID)
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer for delete", slog.Any("error", err))
		return fmt.Errorf("cannot find customer %s to delete: %w", accountID, err)
	}

	deleted, err := s.repo.Delete(ctx, accountID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %s: %w", accountID, err)
	}
	if !deleted {
		logCtx.WarnContext(ctx, "Customer disappeared before delete completed")
		return fmt.Errorf("%w: customer with account ID %s not found", apperrors.ErrNotFound, accountID)
	}

	logCtx.InfoContext(ctx, "Successfully deleted customer, publishing deletion event")
	s.publishLifecycleEvent(ctx, event.ActionDeleted, existing)

	return nil
}
