// Package docstore implements the company and invoice persistence ports
// on Google Cloud Firestore.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/domain/shared"
	"github.com/printshop/backoffice/internal/infrastructure/config"
)

const (
	companiesCollection = "companies"
	invoicesCollection  = "invoices"
)

// Client wraps a Firestore client with the operations the invoicing
// pipeline needs. It implements invoicing.CompanyStore.
type Client struct {
	fs     *firestore.Client
	logger *zap.Logger
}

// New connects to Firestore using the configured service account.
func New(ctx context.Context, cfg config.DocStoreConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	creds, err := cfg.ServiceAccountJSON()
	if err != nil {
		return nil, fmt.Errorf("building document store credentials: %w", err)
	}
	fs, err := firestore.NewClient(ctx, cfg.ProjectID, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("connecting document store: %w", err)
	}
	return &Client{fs: fs, logger: logger}, nil
}

// GetCompany loads a company profile. A missing document is reported as
// (nil, nil) so callers can distinguish absence from infrastructure
// failure.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*billing.Company, error) {
	snap, err := c.fs.Collection(companiesCollection).Doc(companyID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading company %s: %w", companyID, err)
	}

	var company billing.Company
	if err := snap.DataTo(&company); err != nil {
		return nil, fmt.Errorf("decoding company %s: %w", companyID, err)
	}
	company.ID = snap.Ref.ID
	return &company, nil
}

// IncrementInvoiceNumber atomically reserves the next invoice number on
// the company document. The counter field holds the next number to
// hand out; an unset field starts the sequence at 1.
func (c *Client) IncrementInvoiceNumber(ctx context.Context, companyID string) (int64, error) {
	ref := c.fs.Collection(companiesCollection).Doc(companyID)

	var allocated int64
	err := c.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return shared.ErrNotFound
		}
		if err != nil {
			return err
		}

		current := int64(1)
		if raw, err := snap.DataAt("currentInvoice"); err == nil {
			if v, ok := raw.(int64); ok && v > 0 {
				current = v
			}
		}

		allocated = current
		return tx.Update(ref, []firestore.Update{
			{Path: "currentInvoice", Value: current + 1},
		})
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, shared.ErrNotFound
		}
		if status.Code(err) == codes.Aborted {
			return 0, fmt.Errorf("invoice counter contention: %w", shared.ErrConcurrencyConflict)
		}
		return 0, fmt.Errorf("reserving invoice number for %s: %w", companyID, err)
	}

	c.logger.Debug("invoice number reserved",
		zap.String("company_id", companyID),
		zap.Int64("number", allocated),
	)
	return allocated, nil
}

// SaveInvoiceRecord appends one issuance to the invoice ledger.
func (c *Client) SaveInvoiceRecord(ctx context.Context, rec billing.InvoiceRecord) error {
	docID := fmt.Sprintf("%d", rec.Number)
	if _, err := c.fs.Collection(invoicesCollection).Doc(docID).Create(ctx, rec); err != nil {
		return fmt.Errorf("recording invoice %d: %w", rec.Number, err)
	}
	return nil
}

// Close releases the underlying Firestore connection.
func (c *Client) Close() error {
	return c.fs.Close()
}
