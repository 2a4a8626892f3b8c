// Package invoicing implements the invoice issuance pipeline: number
// allocation, PDF rendering, artifact storage and the orchestrating
// service.
package invoicing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/domain/shared"
)

// Error codes raised by the allocator.
const (
	ErrCodeAllocationConflict   = "ALLOCATION_CONFLICT"
	ErrCodeCompanyNotConfigured = "COMPANY_NOT_CONFIGURED"
)

// CompanyStore is the document-store port the pipeline depends on. The
// increment must be atomic with respect to concurrent allocators: the
// store either executes it as one indivisible transaction or fails with
// shared.ErrConcurrencyConflict when the record changed underneath.
type CompanyStore interface {
	// GetCompany returns the company record, or (nil, nil) when no
	// record exists.
	GetCompany(ctx context.Context, companyID string) (*billing.Company, error)

	// IncrementInvoiceNumber atomically consumes and returns the next
	// invoice number, advancing the stored counter by one.
	IncrementInvoiceNumber(ctx context.Context, companyID string) (int64, error)

	// SaveInvoiceRecord appends an issuance ledger entry.
	SaveInvoiceRecord(ctx context.Context, rec billing.InvoiceRecord) error
}

const (
	defaultAllocateAttempts = 5
	defaultAllocateBackoff  = 50 * time.Millisecond
)

// NumberAllocator issues invoice numbers with an exclusivity guarantee
// across concurrent callers and across processes. A consumed number is
// durably committed before any slow operation runs; later failures in
// the pipeline leave gaps in the sequence, never duplicates.
type NumberAllocator struct {
	store    CompanyStore
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

// AllocatorOption configures a NumberAllocator.
type AllocatorOption func(*NumberAllocator)

// WithAllocateAttempts overrides the bounded retry budget.
func WithAllocateAttempts(n int) AllocatorOption {
	return func(a *NumberAllocator) {
		if n > 0 {
			a.attempts = n
		}
	}
}

// WithAllocateBackoff overrides the delay between retry attempts.
func WithAllocateBackoff(d time.Duration) AllocatorOption {
	return func(a *NumberAllocator) {
		if d >= 0 {
			a.backoff = d
		}
	}
}

// NewNumberAllocator creates a NumberAllocator on top of a CompanyStore.
func NewNumberAllocator(store CompanyStore, logger *zap.Logger, opts ...AllocatorOption) *NumberAllocator {
	a := &NumberAllocator{
		store:    store,
		attempts: defaultAllocateAttempts,
		backoff:  defaultAllocateBackoff,
		logger:   logger,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate consumes the next invoice number for the given company.
// Contention on the counter is retried with linear backoff up to the
// configured attempt budget; exhaustion surfaces ALLOCATION_CONFLICT.
// A missing company record surfaces COMPANY_NOT_CONFIGURED rather than
// silently starting a new sequence at 1.
func (a *NumberAllocator) Allocate(ctx context.Context, companyID string) (int64, error) {
	if companyID == "" {
		return 0, shared.NewDomainError(ErrCodeCompanyNotConfigured, "no company configured for invoice numbering")
	}

	var lastErr error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		number, err := a.store.IncrementInvoiceNumber(ctx, companyID)
		if err == nil {
			a.logger.Debug("invoice number allocated",
				zap.String("company_id", companyID),
				zap.Int64("number", number),
				zap.Int("attempt", attempt),
			)
			return number, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return 0, err
		}

		lastErr = err
		a.logger.Warn("invoice counter contention, retrying",
			zap.String("company_id", companyID),
			zap.Int("attempt", attempt),
		)
		if attempt < a.attempts {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * a.backoff):
			}
		}
	}

	return 0, shared.WrapDomainError(ErrCodeAllocationConflict,
		"invoice counter contention exhausted retries", lastErr)
}
