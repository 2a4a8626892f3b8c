package billing

import (
	"fmt"
	"strings"
	"time"
)

// Artifact is a rendered invoice document together with its storage
// metadata. It is created once per successful pipeline run and is
// immutable thereafter. The signed URL is a time-boxed read capability;
// the storage key is the artifact's durable identity.
type Artifact struct {
	InvoiceNumber int64
	Bytes         []byte
	StorageKey    string
	SignedURL     string
	ExpiresAt     time.Time
	FileName      string
}

// InvoiceRecord is the issuance ledger entry written to the document
// store after a successful pipeline run.
type InvoiceRecord struct {
	Number     int64     `firestore:"number"`
	StorageKey string    `firestore:"storageKey"`
	FileName   string    `firestore:"fileName"`
	JobID      string    `firestore:"jobId"`
	CustomerID string    `firestore:"customerId"`
	IssuedAt   time.Time `firestore:"issuedAt"`
}

// SanitizeName replaces every non-alphanumeric rune with an underscore
// to produce a storage-safe name fragment. The mapping is idempotent.
func SanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

// InvoiceFileName builds the human-readable PDF file name for an
// invoice number and job name.
func InvoiceFileName(number int64, jobName string) string {
	return fmt.Sprintf("Invoice_%d_%s.pdf", number, SanitizeName(jobName))
}
