package billing

import "strings"

// Customer is the invoice recipient. It is treated as immutable for the
// duration of one invoice operation.
type Customer struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Company     string `json:"company,omitempty"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Email       string `json:"email"`
}

// BillingName returns the name the invoice is addressed to: the company
// name when present, otherwise "FirstName LastName".
func (c Customer) BillingName() string {
	if c.Company != "" {
		return c.Company
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// AddressLines returns the recipient address block in display order.
// Blank fields are omitted entirely so the block never contains empty
// lines.
func (c Customer) AddressLines() []string {
	lines := make([]string, 0, 4)
	if name := c.BillingName(); name != "" {
		lines = append(lines, name)
	}
	if c.Street != "" {
		lines = append(lines, c.Street)
	}
	if c.Zip != "" || c.City != "" {
		lines = append(lines, joinNonEmpty(c.Zip, c.City))
	}
	if c.Country != "" {
		lines = append(lines, c.Country)
	}
	return lines
}
