// Package notification composes and dispatches transactional customer
// emails: pickup-ready and shipped notices, and invoice delivery with
// the rendered PDF attached.
package notification

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/printshop/backoffice/internal/domain/shared"
)

// ErrCodeValidation marks missing or malformed notification fields.
const ErrCodeValidation = "ERR_VALIDATION"

// archiveAddress receives a blind copy of every outgoing message for
// audit purposes. Fixed operational policy, not configurable.
const archiveAddress = "versandlog@online.de"

// Kind is the tagged message variant. Each kind is validated
// exhaustively before any transport call.
type Kind string

const (
	KindPickupReady     Kind = "pickup_ready"
	KindShipped         Kind = "shipped"
	KindInvoiceDelivery Kind = "invoice_delivery"
)

// Attachment is a file carried with a message.
type Attachment struct {
	FileName    string
	Content     []byte
	ContentType string
}

// Message is a fully composed, validated outgoing email. It is
// ephemeral: constructed per dispatch call and never persisted.
type Message struct {
	Kind        Kind
	Recipient   string
	ArchiveCopy string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachment  *Attachment
}

// PickupReadyInput carries the fields of a pickup-ready notice.
type PickupReadyInput struct {
	RecipientEmail string
	FirstName      string
	LastName       string
	JobName        string
}

// ShippedInput carries the fields of a shipment notice. TrackingRef is
// mandatory; its absence is a validation error, never a silent
// downgrade to a pickup-ready notice.
type ShippedInput struct {
	RecipientEmail string
	FirstName      string
	LastName       string
	JobName        string
	TrackingRef    string
}

// InvoiceDeliveryInput carries the fields of an invoice email with the
// rendered PDF attached.
type InvoiceDeliveryInput struct {
	RecipientEmail string
	RecipientName  string
	JobName        string
	InvoiceNumber  int64
	Amount         decimal.Decimal
	VATRate        decimal.Decimal
	PDFBase64      string
	FileName       string
}

// NewPickupReady composes a validated pickup-ready message.
func NewPickupReady(in PickupReadyInput) (Message, error) {
	if in.RecipientEmail == "" || in.FirstName == "" || in.LastName == "" || in.JobName == "" {
		return Message{}, shared.NewDomainError(ErrCodeValidation, "recipient email, name and job name are required")
	}

	name := in.FirstName + " " + in.LastName
	text := fmt.Sprintf(`Hello %s,

your order "%s" is finished and can be picked up during our opening hours.

Opening hours:
Monday - Thursday: 9:00 - 15:00 or by arrangement.

We look forward to your visit!

Kind regards
Offset Print Works`, name, in.JobName)

	html, err := renderHTML(pickupHTMLTemplate, map[string]any{
		"Name":    name,
		"JobName": in.JobName,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Kind:        KindPickupReady,
		Recipient:   in.RecipientEmail,
		ArchiveCopy: archiveAddress,
		Subject:     "Your order is ready for pickup - " + in.JobName,
		TextBody:    text,
		HTMLBody:    html,
	}, nil
}

// NewShipped composes a validated shipment message.
func NewShipped(in ShippedInput) (Message, error) {
	if in.RecipientEmail == "" || in.FirstName == "" || in.LastName == "" || in.JobName == "" {
		return Message{}, shared.NewDomainError(ErrCodeValidation, "recipient email, name and job name are required")
	}
	if in.TrackingRef == "" {
		return Message{}, shared.NewDomainError(ErrCodeValidation, "tracking reference is required for shipment notices")
	}

	name := in.FirstName + " " + in.LastName
	text := fmt.Sprintf(`Hello %s,

your order "%s" has been shipped.

Tracking link: %s

Please note that it can take a few hours until the carrier provides a concrete delivery date.

Kind regards
Offset Print Works`, name, in.JobName, in.TrackingRef)

	html, err := renderHTML(shippedHTMLTemplate, map[string]any{
		"Name":        name,
		"JobName":     in.JobName,
		"TrackingRef": in.TrackingRef,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Kind:        KindShipped,
		Recipient:   in.RecipientEmail,
		ArchiveCopy: archiveAddress,
		Subject:     "Your order has been shipped - " + in.JobName,
		TextBody:    text,
		HTMLBody:    html,
	}, nil
}

// NewInvoiceDelivery composes a validated invoice message with the
// rendered PDF attached.
func NewInvoiceDelivery(in InvoiceDeliveryInput) (Message, error) {
	if in.RecipientEmail == "" || in.RecipientName == "" || in.JobName == "" || in.FileName == "" {
		return Message{}, shared.NewDomainError(ErrCodeValidation, "recipient, job name and file name are required")
	}
	if in.InvoiceNumber <= 0 {
		return Message{}, shared.NewDomainError(ErrCodeValidation, "invoice number is required")
	}
	if in.PDFBase64 == "" {
		return Message{}, shared.NewDomainError(ErrCodeValidation, "invoice PDF payload is required")
	}
	content, err := base64.StdEncoding.DecodeString(in.PDFBase64)
	if err != nil {
		return Message{}, shared.WrapDomainError(ErrCodeValidation, "invoice PDF payload is not valid base64", err)
	}

	amount := in.Amount.StringFixed(2)
	rate := in.VATRate.String()
	text := fmt.Sprintf(`Dear %s,

attached you will find invoice no. %d for your order "%s".

Invoice amount: %s EUR (incl. %s%% VAT)

Please transfer the invoice amount within 14 days to the account stated on the invoice.

If you have any questions, we are happy to help.

Kind regards
Offset Print Works`, in.RecipientName, in.InvoiceNumber, in.JobName, amount, rate)

	html, err := renderHTML(invoiceHTMLTemplate, map[string]any{
		"Name":          in.RecipientName,
		"JobName":       in.JobName,
		"InvoiceNumber": in.InvoiceNumber,
		"Amount":        amount,
		"VATRate":       rate,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Kind:        KindInvoiceDelivery,
		Recipient:   in.RecipientEmail,
		ArchiveCopy: archiveAddress,
		Subject:     fmt.Sprintf("Invoice No. %d - %s", in.InvoiceNumber, in.JobName),
		TextBody:    text,
		HTMLBody:    html,
		Attachment: &Attachment{
			FileName:    in.FileName,
			Content:     content,
			ContentType: "application/pdf",
		},
	}, nil
}

func renderHTML(tmpl *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering notification HTML: %w", err)
	}
	return buf.String(), nil
}

var pickupHTMLTemplate = template.Must(template.New("pickup").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #667eea; color: white; padding: 20px; border-radius: 8px;">
      <h2>Your order is ready for pickup</h2>
    </div>
    <div style="background: #f9f9f9; padding: 20px; border-radius: 8px;">
      <p>Hello <strong>{{.Name}}</strong>,</p>
      <p>your order "<strong>{{.JobName}}</strong>" is finished and can be picked up during our opening hours.</p>
      <div style="background: #fff; padding: 15px; border-left: 4px solid #667eea;">
        <strong>Opening hours:</strong><br>
        Monday - Thursday: 9:00 - 15:00 or by arrangement
      </div>
      <p>We look forward to your visit!</p>
    </div>
    <div style="margin-top: 20px; font-size: 0.9em; color: #666;">
      <p>Kind regards<br>Offset Print Works</p>
    </div>
  </div>
</body>
</html>`))

var shippedHTMLTemplate = template.Must(template.New("shipped").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #667eea; color: white; padding: 20px; border-radius: 8px;">
      <h2>Your order has been shipped</h2>
    </div>
    <div style="background: #f9f9f9; padding: 20px; border-radius: 8px;">
      <p>Hello <strong>{{.Name}}</strong>,</p>
      <p>your order "<strong>{{.JobName}}</strong>" has been shipped.</p>
      <div style="background: #fff; padding: 15px; border-left: 4px solid #667eea; font-family: monospace;">
        <strong>Tracking link:</strong><br>
        <a href="{{.TrackingRef}}">{{.TrackingRef}}</a>
      </div>
      <p>Please note that it can take a few hours until the carrier provides a concrete delivery date.</p>
    </div>
    <div style="margin-top: 20px; font-size: 0.9em; color: #666;">
      <p>Kind regards<br>Offset Print Works</p>
    </div>
  </div>
</body>
</html>`))

var invoiceHTMLTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #3B82F6; color: white; padding: 20px; border-radius: 8px;">
      <h2>Invoice No. {{.InvoiceNumber}}</h2>
    </div>
    <div style="background: #f9f9f9; padding: 20px; border-radius: 8px;">
      <p>Dear <strong>{{.Name}}</strong>,</p>
      <p>attached you will find invoice no. <strong>{{.InvoiceNumber}}</strong> for your order "<strong>{{.JobName}}</strong>".</p>
      <div style="background: #fff; padding: 15px; border-left: 4px solid #3B82F6;">
        <strong>Invoice amount:</strong><br>
        <span style="font-size: 1.2em; color: #059669; font-weight: bold;">{{.Amount}} EUR (incl. {{.VATRate}}% VAT)</span>
      </div>
      <p>Please transfer the invoice amount within <strong>14 days</strong> to the account stated on the invoice.</p>
      <div style="background: #FEF3C7; padding: 10px; border-radius: 5px;">
        The invoice is attached to this email as a PDF.
      </div>
    </div>
    <div style="margin-top: 20px; font-size: 0.9em; color: #666;">
      <p>Kind regards<br>Offset Print Works</p>
    </div>
  </div>
</body>
</html>`))
