package dto

import (
	"github.com/shopspring/decimal"

	"github.com/printshop/backoffice/internal/domain/billing"
)

// JobPayload is the wire shape of a print job inside an invoice
// request.
type JobPayload struct {
	ID       string          `json:"id"`
	JobName  string          `json:"jobname" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	VATRate  decimal.Decimal `json:"vatRate"`
	Details  string          `json:"details"`
	Producer string          `json:"producer"`
}

// ToDomain converts the payload to the billing job type.
func (p JobPayload) ToDomain() billing.Job {
	return billing.Job{
		ID:       p.ID,
		JobName:  p.JobName,
		Quantity: p.Quantity,
		Amount:   p.Amount,
		VATRate:  p.VATRate,
		Details:  p.Details,
		Producer: p.Producer,
	}
}

// CustomerPayload is the wire shape of the invoice recipient.
type CustomerPayload struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Company     string `json:"company"`
	Address     string `json:"address"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Email       string `json:"email"`
}

// ToDomain converts the payload to the billing customer type.
func (p CustomerPayload) ToDomain() billing.Customer {
	return billing.Customer{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Company:     p.Company,
		Street:      p.Address,
		Zip:         p.Zip,
		City:        p.City,
		Country:     p.Country,
		CountryCode: p.CountryCode,
		Email:       p.Email,
	}
}

// IssueInvoiceRequest is the body of POST /invoices.
type IssueInvoiceRequest struct {
	Job      JobPayload      `json:"job" binding:"required"`
	Customer CustomerPayload `json:"customer" binding:"required"`
	UserID   string          `json:"userId" binding:"required"`
}

// PickupOrShipmentRequest is the body of
// POST /notifications/pickup-or-shipment. ToShip selects the shipment
// variant, which additionally requires TrackingNumber.
type PickupOrShipmentRequest struct {
	CustomerEmail     string `json:"customerEmail" binding:"required,email"`
	CustomerFirstName string `json:"customerFirstName" binding:"required"`
	CustomerLastName  string `json:"customerLastName" binding:"required"`
	JobName           string `json:"jobname" binding:"required"`
	ToShip            bool   `json:"toShip"`
	TrackingNumber    string `json:"trackingNumber"`
}

// InvoiceNotificationRequest is the body of POST /notifications/invoice.
type InvoiceNotificationRequest struct {
	CustomerEmail string          `json:"customerEmail" binding:"required,email"`
	CustomerName  string          `json:"customerName" binding:"required"`
	JobName       string          `json:"jobname" binding:"required"`
	InvoiceNumber int64           `json:"invoiceNumber" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	VATRate       decimal.Decimal `json:"vatRate"`
	PDFBase64     string          `json:"pdfBase64" binding:"required"`
	FileName      string          `json:"fileName" binding:"required"`
}
