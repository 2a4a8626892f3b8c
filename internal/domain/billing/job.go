package billing

import (
	"github.com/shopspring/decimal"

	"github.com/printshop/backoffice/internal/domain/shared"
)

// Error code for structurally invalid job data (quantity, amount).
const ErrCodeInvalidJobData = "INVALID_JOB_DATA"

// DefaultVATRate is applied when a job does not carry an explicit rate.
var DefaultVATRate = decimal.NewFromInt(19)

// Job is a single print order. Amount is the gross (tax-inclusive)
// total; net and tax are always derived from it, never stored.
type Job struct {
	ID       string          `json:"id"`
	JobName  string          `json:"jobname"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	VATRate  decimal.Decimal `json:"vatRate"`
	Details  string          `json:"details,omitempty"`
	Producer string          `json:"producer"`
}

// EffectiveVATRate returns the job's VAT rate, falling back to the
// default when none was supplied.
func (j Job) EffectiveVATRate() decimal.Decimal {
	if j.VATRate.IsZero() {
		return DefaultVATRate
	}
	return j.VATRate
}

// Validate checks the fields the tax split and renderer depend on.
func (j Job) Validate() error {
	if j.Quantity <= 0 {
		return shared.NewDomainError(ErrCodeInvalidJobData, "job quantity must be positive")
	}
	if j.Amount.IsZero() || j.Amount.IsNegative() {
		return shared.NewDomainError(ErrCodeInvalidJobData, "job amount is missing or not positive")
	}
	if j.VATRate.IsNegative() {
		return shared.NewDomainError(ErrCodeInvalidJobData, "job VAT rate must not be negative")
	}
	return nil
}
