// Package dto defines the wire-level request and response shapes of the
// HTTP API.
package dto

// InvoiceIssuedResponse is the success payload of an invoice issuance.
type InvoiceIssuedResponse struct {
	Success       bool   `json:"success"`
	InvoiceNumber int64  `json:"invoiceNumber"`
	DownloadURL   string `json:"downloadUrl"`
	StoragePath   string `json:"storagePath"`
	PDFBase64     string `json:"pdfBase64"`
	FileName      string `json:"fileName"`
}

// NotificationSentResponse is the success payload of a notification
// dispatch.
type NotificationSentResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

// ErrorResponse is the failure payload of every endpoint. Error carries
// the stable machine-checkable category, Details the human-readable
// summary.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse reports process liveness and which optional backends
// are wired.
type HealthResponse struct {
	Status   string          `json:"status"`
	Backends map[string]bool `json:"backends"`
}
