// Package billing holds the core entities of the invoice issuance
// pipeline: the company record that owns the invoice counter, the
// customer and job a single invoice is rendered from, and the tax
// arithmetic that splits a gross amount into net and tax.
package billing

// Company is the singleton business record. CurrentInvoice is the next
// invoice number to issue; it is strictly positive, strictly increasing
// and never reused. It is mutated only through the document store's
// atomic increment, never by application code directly.
type Company struct {
	ID             string `firestore:"-" json:"id"`
	Name           string `firestore:"name" json:"name"`
	Address        string `firestore:"address" json:"address"`
	Zip            string `firestore:"zip" json:"zip"`
	City           string `firestore:"city" json:"city"`
	Phone          string `firestore:"phone" json:"phone"`
	Email          string `firestore:"email" json:"email"`
	IBAN           string `firestore:"iban" json:"iban"`
	BIC            string `firestore:"bic" json:"bic"`
	Bank           string `firestore:"bank" json:"bank"`
	TaxID          string `firestore:"taxId" json:"taxId"`
	CurrentInvoice int64  `firestore:"currentInvoice" json:"currentInvoice"`
}

// ContactLines returns the company header lines in display order with
// blank fields omitted.
func (c Company) ContactLines() []string {
	lines := make([]string, 0, 4)
	if c.Address != "" {
		lines = append(lines, c.Address)
	}
	if c.Zip != "" || c.City != "" {
		lines = append(lines, joinNonEmpty(c.Zip, c.City))
	}
	if c.Phone != "" {
		lines = append(lines, c.Phone)
	}
	if c.Email != "" {
		lines = append(lines, c.Email)
	}
	return lines
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
