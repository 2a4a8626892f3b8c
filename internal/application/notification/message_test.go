package notification

import (
	"encoding/base64"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printshop/backoffice/internal/domain/shared"
)

func validPickup() PickupReadyInput {
	return PickupReadyInput{
		RecipientEmail: "ada@example.org",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		JobName:        "Flyer A5",
	}
}

func validShipped() ShippedInput {
	return ShippedInput{
		RecipientEmail: "ada@example.org",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		JobName:        "Flyer A5",
		TrackingRef:    "https://carrier.example/track/XYZ123",
	}
}

func validInvoiceDelivery() InvoiceDeliveryInput {
	return InvoiceDeliveryInput{
		RecipientEmail: "ada@example.org",
		RecipientName:  "Ada Lovelace",
		JobName:        "Flyer A5",
		InvoiceNumber:  42,
		Amount:         decimal.RequireFromString("119.00"),
		VATRate:        decimal.RequireFromString("19"),
		PDFBase64:      base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake")),
		FileName:       "Invoice_42_Flyer_A5.pdf",
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrCodeValidation, derr.Code)
}

func TestNewPickupReady(t *testing.T) {
	t.Run("composes subject and both bodies", func(t *testing.T) {
		msg, err := NewPickupReady(validPickup())
		require.NoError(t, err)

		assert.Equal(t, KindPickupReady, msg.Kind)
		assert.Equal(t, "ada@example.org", msg.Recipient)
		assert.Equal(t, "Your order is ready for pickup - Flyer A5", msg.Subject)
		assert.Contains(t, msg.TextBody, "Ada Lovelace")
		assert.Contains(t, msg.TextBody, "Flyer A5")
		assert.Contains(t, msg.HTMLBody, "<strong>Ada Lovelace</strong>")
		assert.Nil(t, msg.Attachment)
	})

	t.Run("carries the archive blind copy", func(t *testing.T) {
		msg, err := NewPickupReady(validPickup())
		require.NoError(t, err)
		assert.NotEmpty(t, msg.ArchiveCopy)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		in := validPickup()
		in.JobName = ""
		_, err := NewPickupReady(in)
		assertValidationError(t, err)
	})

	t.Run("escapes HTML in user fields", func(t *testing.T) {
		in := validPickup()
		in.JobName = `<script>alert("x")</script>`
		msg, err := NewPickupReady(in)
		require.NoError(t, err)
		assert.NotContains(t, msg.HTMLBody, "<script>")
	})
}

func TestNewShipped(t *testing.T) {
	t.Run("composes a shipment notice with tracking reference", func(t *testing.T) {
		msg, err := NewShipped(validShipped())
		require.NoError(t, err)

		assert.Equal(t, KindShipped, msg.Kind)
		assert.Equal(t, "Your order has been shipped - Flyer A5", msg.Subject)
		assert.Contains(t, msg.TextBody, "https://carrier.example/track/XYZ123")
		assert.Contains(t, msg.HTMLBody, "https://carrier.example/track/XYZ123")
	})

	t.Run("missing tracking reference is a validation error, not a downgrade", func(t *testing.T) {
		in := validShipped()
		in.TrackingRef = ""
		msg, err := NewShipped(in)
		assertValidationError(t, err)
		assert.NotEqual(t, KindPickupReady, msg.Kind)
	})
}

func TestNewInvoiceDelivery(t *testing.T) {
	t.Run("composes an invoice message with attachment", func(t *testing.T) {
		msg, err := NewInvoiceDelivery(validInvoiceDelivery())
		require.NoError(t, err)

		assert.Equal(t, KindInvoiceDelivery, msg.Kind)
		assert.Equal(t, "Invoice No. 42 - Flyer A5", msg.Subject)
		assert.Contains(t, msg.TextBody, "119.00 EUR")
		assert.Contains(t, msg.TextBody, "19% VAT")
		require.NotNil(t, msg.Attachment)
		assert.Equal(t, "Invoice_42_Flyer_A5.pdf", msg.Attachment.FileName)
		assert.Equal(t, "application/pdf", msg.Attachment.ContentType)
		assert.Equal(t, []byte("%PDF-1.4 fake"), msg.Attachment.Content)
	})

	t.Run("rejects missing invoice number", func(t *testing.T) {
		in := validInvoiceDelivery()
		in.InvoiceNumber = 0
		_, err := NewInvoiceDelivery(in)
		assertValidationError(t, err)
	})

	t.Run("rejects missing PDF payload", func(t *testing.T) {
		in := validInvoiceDelivery()
		in.PDFBase64 = ""
		_, err := NewInvoiceDelivery(in)
		assertValidationError(t, err)
	})

	t.Run("rejects malformed base64", func(t *testing.T) {
		in := validInvoiceDelivery()
		in.PDFBase64 = "not base64 !!!"
		_, err := NewInvoiceDelivery(in)
		assertValidationError(t, err)
	})
}
