package invoicing

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/domain/shared"
)

// memArtifacts is an in-memory ArtifactStore.
type memArtifacts struct {
	objects   map[string][]byte
	metadata  map[string]map[string]string
	uploadErr error
	signErr   error
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{
		objects:  make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func (m *memArtifacts) Upload(_ context.Context, key string, data []byte, _ string, metadata map[string]string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.objects[key] = data
	m.metadata[key] = metadata
	return nil
}

func (m *memArtifacts) PresignDownload(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if m.signErr != nil {
		return "", time.Time{}, m.signErr
	}
	return "https://storage.example/" + key + "?signed=1", time.Now().Add(expiresIn), nil
}

func newTestService(store *memStore, artifacts *memArtifacts) *Service {
	alloc := NewNumberAllocator(store, zap.NewNop(), WithAllocateBackoff(0))
	svc := NewService(store, alloc, NewPDFRenderer(), artifacts, "c1", zap.NewNop())
	return svc.WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	})
}

func TestServiceIssue(t *testing.T) {
	t.Run("issues an invoice end to end", func(t *testing.T) {
		store := newMemStore(&billing.Company{ID: "c1", Name: "Offset Print Works", CurrentInvoice: 7})
		artifacts := newMemArtifacts()
		svc := newTestService(store, artifacts)

		res, err := svc.Issue(context.Background(), IssueRequest{
			Job:      testJob(),
			Customer: testCustomer(),
			OwnerID:  "user-1",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(7), res.InvoiceNumber)
		assert.Equal(t, "Invoice_7_Flyer_A5.pdf", res.FileName)
		assert.True(t, strings.HasPrefix(res.StorageKey, "invoices/user-1/"), "key = %s", res.StorageKey)
		assert.True(t, strings.HasSuffix(res.StorageKey, "_Invoice_7_Flyer_A5.pdf"), "key = %s", res.StorageKey)
		assert.Contains(t, res.DownloadURL, res.StorageKey)

		// Counter advanced and durable
		assert.Equal(t, int64(8), store.counter("c1"))

		// Stored bytes round-trip through the base64 payload
		stored := artifacts.objects[res.StorageKey]
		decoded, err := base64.StdEncoding.DecodeString(res.PDFBase64)
		require.NoError(t, err)
		assert.Equal(t, stored, decoded)

		// Operational metadata attached to the object
		meta := artifacts.metadata[res.StorageKey]
		assert.Equal(t, "7", meta["invoice-number"])
		assert.Equal(t, "job-1", meta["job-id"])
		assert.Equal(t, "cust-1", meta["customer-id"])

		// Ledger entry written
		require.Len(t, store.records, 1)
		assert.Equal(t, int64(7), store.records[0].Number)
		assert.Equal(t, res.StorageKey, store.records[0].StorageKey)
	})

	t.Run("two sequential issuances consume distinct numbers", func(t *testing.T) {
		store := newMemStore(&billing.Company{ID: "c1", Name: "Offset Print Works", CurrentInvoice: 7})
		svc := newTestService(store, newMemArtifacts())

		first, err := svc.Issue(context.Background(), IssueRequest{Job: testJob(), Customer: testCustomer(), OwnerID: "u"})
		require.NoError(t, err)
		second, err := svc.Issue(context.Background(), IssueRequest{Job: testJob(), Customer: testCustomer(), OwnerID: "u"})
		require.NoError(t, err)

		assert.Equal(t, int64(7), first.InvoiceNumber)
		assert.Equal(t, int64(8), second.InvoiceNumber)
		assert.Equal(t, int64(9), store.counter("c1"))
	})

	t.Run("missing company record surfaces COMPANY_NOT_CONFIGURED", func(t *testing.T) {
		svc := newTestService(newMemStore(), newMemArtifacts())

		_, err := svc.Issue(context.Background(), IssueRequest{Job: testJob(), Customer: testCustomer(), OwnerID: "u"})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, ErrCodeCompanyNotConfigured, derr.Code)
	})

	t.Run("invalid job fails before a number is consumed", func(t *testing.T) {
		store := newMemStore(&billing.Company{ID: "c1", Name: "Offset Print Works", CurrentInvoice: 7})
		svc := newTestService(store, newMemArtifacts())

		job := testJob()
		job.Quantity = 0
		_, err := svc.Issue(context.Background(), IssueRequest{Job: job, Customer: testCustomer(), OwnerID: "u"})
		require.Error(t, err)
		assert.Equal(t, int64(7), store.counter("c1"), "counter must not advance on validation failure")
	})

	t.Run("storage failure keeps the number consumed", func(t *testing.T) {
		store := newMemStore(&billing.Company{ID: "c1", Name: "Offset Print Works", CurrentInvoice: 7})
		artifacts := newMemArtifacts()
		artifacts.uploadErr = errors.New("bucket unreachable")
		svc := newTestService(store, artifacts)

		_, err := svc.Issue(context.Background(), IssueRequest{Job: testJob(), Customer: testCustomer(), OwnerID: "u"})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, ErrCodeStorageFailure, derr.Code)
		assert.Contains(t, err.Error(), "bucket unreachable")

		// Gap, not rollback: the next issuance gets the next number.
		assert.Equal(t, int64(8), store.counter("c1"))
		artifacts.uploadErr = nil
		res, err := svc.Issue(context.Background(), IssueRequest{Job: testJob(), Customer: testCustomer(), OwnerID: "u"})
		require.NoError(t, err)
		assert.Equal(t, int64(8), res.InvoiceNumber)
	})

	t.Run("presign failure surfaces STORAGE_FAILURE", func(t *testing.T) {
		store := newMemStore(&billing.Company{ID: "c1", Name: "Offset Print Works", CurrentInvoice: 1})
		artifacts := newMemArtifacts()
		artifacts.signErr = fmt.Errorf("signing key rejected")
		svc := newTestService(store, artifacts)

		_, err := svc.Issue(context.Background(), IssueRequest{Job: testJob(), Customer: testCustomer(), OwnerID: "u"})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, ErrCodeStorageFailure, derr.Code)
	})

	t.Run("failed ledger write does not fail the issuance", func(t *testing.T) {
		store := newMemStore(&billing.Company{ID: "c1", Name: "Offset Print Works", CurrentInvoice: 1})
		store.recordErr = errors.New("ledger unavailable")
		svc := newTestService(store, newMemArtifacts())

		res, err := svc.Issue(context.Background(), IssueRequest{Job: testJob(), Customer: testCustomer(), OwnerID: "u"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.InvoiceNumber)
	})
}
