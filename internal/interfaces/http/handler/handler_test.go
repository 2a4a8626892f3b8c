package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/application/invoicing"
	"github.com/printshop/backoffice/internal/application/notification"
	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/interfaces/http/router"
)

type stubStore struct {
	mu      sync.Mutex
	company *billing.Company
	counter int64
	records []billing.InvoiceRecord
}

func (s *stubStore) GetCompany(context.Context, string) (*billing.Company, error) {
	return s.company, nil
}

func (s *stubStore) IncrementInvoiceNumber(context.Context, string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.counter
	s.counter++
	return n, nil
}

func (s *stubStore) SaveInvoiceRecord(_ context.Context, rec billing.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

type stubRenderer struct{}

func (stubRenderer) Render(job billing.Job, _ billing.Customer, _ billing.Company, _ int64, _ time.Time) ([]byte, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.3 stub"), nil
}

type stubArtifacts struct{}

func (stubArtifacts) Upload(context.Context, string, []byte, string, map[string]string) error {
	return nil
}

func (stubArtifacts) PresignDownload(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://storage.example/" + key + "?sig=abc", time.Now().Add(expiresIn), nil
}

type stubTransport struct {
	sent []notification.Message
	err  error
}

func (s *stubTransport) Send(_ context.Context, msg notification.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "msg-42@mail.example", nil
}

func newTestEngine(t *testing.T, service *invoicing.Service, transport notification.Transport) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	dispatcher := notification.NewDispatcher(transport, zap.NewNop())

	r := router.NewRouter(engine)
	r.Register(NewInvoiceHandler(service, time.Second))
	r.Register(NewNotificationHandler(dispatcher, time.Second))
	r.Setup()
	NewSystemHandler(map[string]bool{"docstore": service != nil}).RegisterHealthRoute(engine)
	return engine
}

func newTestService(t *testing.T) (*invoicing.Service, *stubStore) {
	t.Helper()
	store := &stubStore{
		company: &billing.Company{ID: "main", Name: "Offset Print Works", CurrentInvoice: 7},
		counter: 7,
	}
	allocator := invoicing.NewNumberAllocator(store, zap.NewNop())
	svc := invoicing.NewService(store, allocator, stubRenderer{}, stubArtifacts{}, "main", zap.NewNop())
	return svc, store
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func validInvoiceBody() map[string]any {
	return map[string]any{
		"job": map[string]any{
			"id":       "job-1",
			"jobname":  "Flyer A5",
			"quantity": 5,
			"amount":   "119.00",
			"vatRate":  "19",
			"producer": "press-2",
		},
		"customer": map[string]any{
			"id":        "cust-1",
			"firstName": "Ada",
			"lastName":  "Lovelace",
			"address":   "Analytical Lane 1",
			"zip":       "10117",
			"city":      "Berlin",
			"email":     "ada@example.org",
		},
		"userId": "user-1",
	}
}

func TestIssueInvoiceEndpoint(t *testing.T) {
	t.Run("issues an invoice", func(t *testing.T) {
		svc, store := newTestService(t)
		engine := newTestEngine(t, svc, &stubTransport{})

		w := postJSON(t, engine, "/api/v1/invoices", validInvoiceBody())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.EqualValues(t, 7, resp["invoiceNumber"])
		assert.Contains(t, resp["downloadUrl"], "Invoice_7_Flyer_A5.pdf")
		assert.Contains(t, resp["storagePath"], "invoices/user-1/")
		assert.Equal(t, "Invoice_7_Flyer_A5.pdf", resp["fileName"])
		assert.NotEmpty(t, resp["pdfBase64"])
		require.Len(t, store.records, 1)
	})

	t.Run("missing fields fail with 400", func(t *testing.T) {
		svc, _ := newTestService(t)
		engine := newTestEngine(t, svc, &stubTransport{})

		body := validInvoiceBody()
		delete(body, "userId")
		w := postJSON(t, engine, "/api/v1/invoices", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	})

	t.Run("invalid job data fails with 400", func(t *testing.T) {
		svc, store := newTestService(t)
		engine := newTestEngine(t, svc, &stubTransport{})

		body := validInvoiceBody()
		body["job"].(map[string]any)["quantity"] = -1
		w := postJSON(t, engine, "/api/v1/invoices", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_JOB_DATA")
		assert.EqualValues(t, 7, store.counter, "counter must not advance on invalid input")
	})

	t.Run("missing company record fails with 404", func(t *testing.T) {
		svc, store := newTestService(t)
		store.company = nil
		engine := newTestEngine(t, svc, &stubTransport{})

		w := postJSON(t, engine, "/api/v1/invoices", validInvoiceBody())
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "COMPANY_NOT_CONFIGURED")
	})

	t.Run("unconfigured pipeline fails with 500, not a crash", func(t *testing.T) {
		engine := newTestEngine(t, nil, &stubTransport{})

		w := postJSON(t, engine, "/api/v1/invoices", validInvoiceBody())
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_CONFIGURED")
	})
}

func TestPickupOrShipmentEndpoint(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"customerEmail":     "ada@example.org",
			"customerFirstName": "Ada",
			"customerLastName":  "Lovelace",
			"jobname":           "Flyer A5",
		}
	}

	t.Run("pickup notice", func(t *testing.T) {
		transport := &stubTransport{}
		svc, _ := newTestService(t)
		engine := newTestEngine(t, svc, transport)

		w := postJSON(t, engine, "/api/v1/notifications/pickup-or-shipment", base())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "msg-42@mail.example")
		require.Len(t, transport.sent, 1)
		assert.Equal(t, notification.KindPickupReady, transport.sent[0].Kind)
	})

	t.Run("shipment notice carries tracking", func(t *testing.T) {
		transport := &stubTransport{}
		svc, _ := newTestService(t)
		engine := newTestEngine(t, svc, transport)

		body := base()
		body["toShip"] = true
		body["trackingNumber"] = "https://carrier.example/track/XYZ"
		w := postJSON(t, engine, "/api/v1/notifications/pickup-or-shipment", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Len(t, transport.sent, 1)
		assert.Equal(t, notification.KindShipped, transport.sent[0].Kind)
		assert.Contains(t, transport.sent[0].TextBody, "XYZ")
	})

	t.Run("shipment without tracking fails with 400", func(t *testing.T) {
		svc, _ := newTestService(t)
		engine := newTestEngine(t, svc, &stubTransport{})

		body := base()
		body["toShip"] = true
		w := postJSON(t, engine, "/api/v1/notifications/pickup-or-shipment", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	})

	t.Run("nil transport fails with 500", func(t *testing.T) {
		svc, _ := newTestService(t)
		engine := newTestEngine(t, svc, nil)

		w := postJSON(t, engine, "/api/v1/notifications/pickup-or-shipment", base())
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "TRANSPORT_NOT_CONFIGURED")
	})
}

func TestInvoiceNotificationEndpoint(t *testing.T) {
	body := func() map[string]any {
		return map[string]any{
			"customerEmail": "ada@example.org",
			"customerName":  "Ada Lovelace",
			"jobname":       "Flyer A5",
			"invoiceNumber": 42,
			"amount":        "119.00",
			"vatRate":       "19",
			"pdfBase64":     "JVBERi0xLjMgc3R1Yg==",
			"fileName":      "Invoice_42_Flyer_A5.pdf",
		}
	}

	t.Run("sends the invoice mail with attachment", func(t *testing.T) {
		transport := &stubTransport{}
		svc, _ := newTestService(t)
		engine := newTestEngine(t, svc, transport)

		w := postJSON(t, engine, "/api/v1/notifications/invoice", body())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Len(t, transport.sent, 1)
		msg := transport.sent[0]
		assert.Equal(t, notification.KindInvoiceDelivery, msg.Kind)
		require.NotNil(t, msg.Attachment)
		assert.Equal(t, "Invoice_42_Flyer_A5.pdf", msg.Attachment.FileName)
	})

	t.Run("malformed base64 fails with 400", func(t *testing.T) {
		svc, _ := newTestService(t)
		engine := newTestEngine(t, svc, &stubTransport{})

		b := body()
		b["pdfBase64"] = "!!! not base64"
		w := postJSON(t, engine, "/api/v1/notifications/invoice", b)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	engine := newTestEngine(t, svc, &stubTransport{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"docstore":true`)
}
