package invoicing

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/domain/shared"
)

// ErrCodeRenderFailed marks renderer faults not caused by input data.
const ErrCodeRenderFailed = "RENDER_FAILED"

// Renderer produces the invoice document bytes. Implementations must be
// deterministic: identical inputs, including issuedAt, yield identical
// bytes.
type Renderer interface {
	Render(job billing.Job, customer billing.Customer, company billing.Company, number int64, issuedAt time.Time) ([]byte, error)
}

// PDFRenderer renders invoices as A4 portrait PDFs with an explicit
// vertical cursor. It holds no state and is safe for concurrent use.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

const (
	leftMargin  = 20.0
	rightColumn = 120.0
	lineHeight  = 5.0
)

// Render builds the invoice document. issuedAt is injected by the
// caller and doubles as the embedded PDF creation date, which keeps the
// output byte-identical for identical inputs.
func (r *PDFRenderer) Render(job billing.Job, customer billing.Customer, company billing.Company, number int64, issuedAt time.Time) ([]byte, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	split, err := billing.SplitGross(job.Amount, job.EffectiveVATRate())
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Resource catalogs are emitted in map order unless sorted, which
	// breaks the byte-identical guarantee documented on Renderer.
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(issuedAt.UTC())
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Company header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(leftMargin, 20, tr(company.Name))
	pdf.SetFont("Helvetica", "", 10)
	y := 30.0
	for _, line := range company.ContactLines() {
		pdf.Text(leftMargin, y, tr(line))
		y += lineHeight
	}

	// Title and issue date
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(leftMargin, y+15, fmt.Sprintf("Invoice No. %d", number))
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(leftMargin, y+25, "Date: "+issuedAt.Format("02.01.2006"))

	// Recipient block, right column
	y += 40
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(rightColumn, y, "Bill to:")
	pdf.SetFont("Helvetica", "", 10)
	y += 7
	for _, line := range customer.AddressLines() {
		pdf.Text(rightColumn, y, tr(line))
		y += lineHeight
	}

	// Line-item table
	y = max(y+10, 120)
	y = r.renderItemTable(pdf, tr, job, split, y)

	// Optional detail line and producer
	y += 10
	pdf.SetFontSize(9)
	pdf.SetTextColor(100, 100, 100)
	if job.Details != "" {
		pdf.Text(leftMargin, y, tr("Details: "+job.Details))
		y += 7
	}
	pdf.Text(leftMargin, y, tr("Producer: "+job.Producer))
	pdf.SetTextColor(0, 0, 0)
	y += 10

	// Totals block
	y = r.renderTotals(pdf, split, y)

	// Payment block
	y += 15
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(leftMargin, y, "Payment details:")
	pdf.SetFont("Helvetica", "", 9)
	y += 7
	for _, line := range []string{
		"IBAN: " + company.IBAN,
		"BIC: " + company.BIC,
		"Bank: " + company.Bank,
		"",
		"Payable within 14 days without deduction.",
	} {
		if line != "" {
			pdf.Text(leftMargin, y, tr(line))
		}
		y += lineHeight
	}

	// Footer anchored to the bottom of the page
	_, pageHeight := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(150, 150, 150)
	footer := company.Name
	if company.TaxID != "" {
		footer += " | Tax ID: " + company.TaxID
	}
	pdf.Text(leftMargin, pageHeight-10, tr(footer))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, shared.WrapDomainError(ErrCodeRenderFailed, "invoice PDF generation failed", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) renderItemTable(pdf *gofpdf.Fpdf, tr func(string) string, job billing.Job, split billing.TaxBreakdown, y float64) float64 {
	headers := []string{"Pos", "Description", "Quantity", "Unit price", "Total"}
	widths := []float64{12, 78, 25, 28, 28}
	rowHeight := 8.0

	pdf.SetXY(leftMargin, y)
	pdf.SetFillColor(59, 130, 246)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(rowHeight)

	pdf.SetX(leftMargin)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	cells := []string{
		"1",
		tr(job.JobName),
		fmt.Sprintf("%d pcs", job.Quantity),
		formatAmount(split.UnitNet(job.Quantity)),
		formatAmount(split.Net),
	}
	for i, cell := range cells {
		pdf.CellFormat(widths[i], rowHeight, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(rowHeight)

	return pdf.GetY()
}

func (r *PDFRenderer) renderTotals(pdf *gofpdf.Fpdf, split billing.TaxBreakdown, y float64) float64 {
	rows := [][2]string{
		{"Net amount", formatAmount(split.Net)},
		{fmt.Sprintf("VAT %s%%", split.Rate.String()), formatAmount(split.Tax)},
		{"Total", formatAmount(split.Gross)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		if i == len(rows)-1 {
			pdf.SetFont("Helvetica", "B", 10)
		}
		pdf.Text(rightColumn, y, row[0])
		pdf.Text(rightColumn+45, y, row[1])
		y += 6
	}
	return y
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2) + " EUR"
}
