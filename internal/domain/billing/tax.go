package billing

import (
	"github.com/shopspring/decimal"

	"github.com/printshop/backoffice/internal/domain/shared"
)

var oneHundred = decimal.NewFromInt(100)

// TaxBreakdown is the gross-to-net split of a single gross amount at a
// given VAT rate. Net and Tax are rounded to two decimal places such
// that Net + Tax always equals Gross to the cent.
type TaxBreakdown struct {
	Gross decimal.Decimal
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Rate  decimal.Decimal
}

// SplitGross derives net and tax from a gross (tax-inclusive) amount:
//
//	tax = gross * rate / (100 + rate), rounded half-up to cents
//	net = gross - tax
//
// Rounding happens once, on the tax figure, so the two parts reconcile
// exactly against the gross amount.
func SplitGross(gross, rate decimal.Decimal) (TaxBreakdown, error) {
	if gross.IsZero() || gross.IsNegative() {
		return TaxBreakdown{}, shared.NewDomainError(ErrCodeInvalidJobData, "gross amount must be positive")
	}
	if rate.IsNegative() {
		return TaxBreakdown{}, shared.NewDomainError(ErrCodeInvalidJobData, "VAT rate must not be negative")
	}

	tax := gross.Mul(rate).Div(oneHundred.Add(rate)).Round(2)
	return TaxBreakdown{
		Gross: gross,
		Net:   gross.Sub(tax),
		Tax:   tax,
		Rate:  rate,
	}, nil
}

// UnitNet returns the per-unit net price rounded to cents for display.
// The rounded unit price multiplied back by the quantity need not equal
// the displayed net total; that is a presentation artifact, not a
// reconciliation error.
func (b TaxBreakdown) UnitNet(quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return b.Net.Div(decimal.NewFromInt(int64(quantity))).Round(2)
}
