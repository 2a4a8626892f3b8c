package invoicing

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/domain/shared"
)

// Error codes raised by the pipeline.
const (
	ErrCodeStorageFailure = "STORAGE_FAILURE"
	ErrCodeNotConfigured  = "NOT_CONFIGURED"
)

// SignedURLTTL is the lifetime of the download capability returned with
// each issued invoice. The URL must not be treated as the artifact's
// durable identity; the storage key is.
const SignedURLTTL = 7 * 24 * time.Hour

// ArtifactStore is the object-storage port. Upload persists the
// rendered bytes; PresignDownload issues a read-only, time-limited URL
// for an existing key.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// IssueRequest carries the inputs of one invoice issuance.
type IssueRequest struct {
	Job      billing.Job
	Customer billing.Customer
	// OwnerID namespaces the storage key, typically the acting user.
	OwnerID string
}

// IssueResult is the pipeline's response payload. PDFBase64 carries the
// artifact for client-triggered email dispatch.
type IssueResult struct {
	InvoiceNumber int64
	DownloadURL   string
	StorageKey    string
	PDFBase64     string
	FileName      string
	ExpiresAt     time.Time
}

// Service orchestrates the issuance pipeline: load company, allocate a
// number (atomic and durable before any slow operation), render, upload,
// presign, record. Storage failures after allocation surface distinctly
// from render failures; the consumed number is never rolled back.
type Service struct {
	store     CompanyStore
	allocator *NumberAllocator
	renderer  Renderer
	artifacts ArtifactStore
	companyID string
	now       func() time.Time
	logger    *zap.Logger
}

// NewService wires the pipeline. companyID identifies the company
// record that owns the invoice counter; it is an explicit parameter, not
// a hard-coded lookup fallback.
func NewService(store CompanyStore, allocator *NumberAllocator, renderer Renderer, artifacts ArtifactStore, companyID string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		allocator: allocator,
		renderer:  renderer,
		artifacts: artifacts,
		companyID: companyID,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the service clock, used by tests for stable keys
// and issue dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue runs the pipeline for one job/customer pair.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := req.Job.Validate(); err != nil {
		return nil, err
	}

	company, err := s.store.GetCompany(ctx, s.companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, shared.NewDomainError(ErrCodeCompanyNotConfigured, "company record not found")
	}

	number, err := s.allocator.Allocate(ctx, s.companyID)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	pdfBytes, err := s.renderer.Render(req.Job, req.Customer, *company, number, issuedAt)
	if err != nil {
		// The number is already consumed; the gap is accepted.
		s.logger.Error("invoice rendering failed after allocation",
			zap.Int64("number", number), zap.Error(err))
		return nil, err
	}

	fileName := billing.InvoiceFileName(number, req.Job.JobName)
	key := fmt.Sprintf("invoices/%s/%d_%s", req.OwnerID, issuedAt.UnixMilli(), fileName)

	metadata := map[string]string{
		"invoice-number": strconv.FormatInt(number, 10),
		"job-id":         req.Job.ID,
		"customer-id":    req.Customer.ID,
		"created-at":     issuedAt.UTC().Format(time.RFC3339),
	}
	if err := s.artifacts.Upload(ctx, key, pdfBytes, "application/pdf", metadata); err != nil {
		s.logger.Error("invoice upload failed after allocation",
			zap.Int64("number", number), zap.String("key", key), zap.Error(err))
		return nil, shared.WrapDomainError(ErrCodeStorageFailure, "invoice artifact upload failed", err)
	}

	url, expiresAt, err := s.artifacts.PresignDownload(ctx, key, SignedURLTTL)
	if err != nil {
		return nil, shared.WrapDomainError(ErrCodeStorageFailure, "signing invoice download URL failed", err)
	}

	record := billing.InvoiceRecord{
		Number:     number,
		StorageKey: key,
		FileName:   fileName,
		JobID:      req.Job.ID,
		CustomerID: req.Customer.ID,
		IssuedAt:   issuedAt.UTC(),
	}
	if err := s.store.SaveInvoiceRecord(ctx, record); err != nil {
		// The artifact is durable and the number consumed; a missing
		// ledger entry is recoverable from storage metadata.
		s.logger.Warn("invoice record write failed",
			zap.Int64("number", number), zap.Error(err))
	}

	s.logger.Info("invoice issued",
		zap.Int64("number", number),
		zap.String("key", key),
		zap.String("file", fileName),
	)

	return &IssueResult{
		InvoiceNumber: number,
		DownloadURL:   url,
		StorageKey:    key,
		PDFBase64:     base64.StdEncoding.EncodeToString(pdfBytes),
		FileName:      fileName,
		ExpiresAt:     expiresAt,
	}, nil
}
