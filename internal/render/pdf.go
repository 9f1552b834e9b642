package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"handraft-backend/internal/docschema"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const (
	bodyFont     = "Helvetica"
	bodyFontSize = 11.0

	defaultCompanyName = "MPH Construction & Painting"
	defaultCompanyInfo = "proposals@mphconstruction.example | (555) 010-4400"

	// Reserved width for the amount column is sized for the widest
	// representable line amount, so description wrap boundaries do not
	// shift with the values being rendered.
	maxLineAmountText = "$99,999.99"

	// Totals can sum many line items and get one digit wider than any
	// single line amount, so the totals label column reserves more room.
	maxTotalAmountText = "$999,999.99"
)

// Options control per-render variation. Date is mm/dd/yyyy; when empty the
// current date is used (the only nondeterministic input).
type Options struct {
	Date string
}

// Renderer overlays a validated document onto the fixed proposal/invoice
// layout. Identical documents and options produce byte-identical PDFs.
type Renderer struct {
	companyName string
	companyInfo string
	logger      *zap.Logger
}

func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{
		companyName: defaultCompanyName,
		companyInfo: defaultCompanyInfo,
		logger:      logger,
	}
}

func (r *Renderer) Render(doc *docschema.Document, opts Options) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	// Fixed creation date keeps output byte-stable across runs.
	pdf.SetCreationDate(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	pdf.SetTitle(fmt.Sprintf("%s %s", titleCase(string(doc.DocType)), doc.DocID), false)

	p := &painter{
		pdf:    pdf,
		layout: computeLayout(),
	}

	date := opts.Date
	if date == "" {
		date = time.Now().Format("01/02/2006")
	}

	p.firstPage(r.companyName, r.companyInfo, doc, date)
	p.lineItems(doc)
	p.totals(doc)
	p.textSections(doc)

	if pdf.Err() {
		return nil, fmt.Errorf("pdf generation failed: %s", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output failed: %w", err)
	}

	r.logger.Info("document rendered",
		zap.String("doc_id", doc.DocID),
		zap.String("doc_type", string(doc.DocType)),
		zap.Int("line_items", len(doc.LineItems)),
		zap.Int("pages", pdf.PageCount()),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// painter tracks the cursor while drawing; all coordinates are points from
// the top-left corner.
type painter struct {
	pdf    *gofpdf.Fpdf
	layout layout
	y      float64
}

func (p *painter) width(s string) float64 {
	return p.pdf.GetStringWidth(s)
}

// ensureSpace starts a continuation page when the next block would cross the
// pagination floor. Continuation pages reuse the column geometry but carry no
// letterhead.
func (p *painter) ensureSpace(needed float64) {
	if p.y+needed <= bodyBottomY {
		return
	}
	p.pdf.AddPage()
	p.pdf.SetLineWidth(1)
	p.pdf.Line(marginLeft, page2BodyTopY, marginRight, page2BodyTopY)
	p.pdf.SetFont(bodyFont, "", bodyFontSize)
	p.y = page2BodyTopY + bodyFirstRowDrop
}

func (p *painter) firstPage(companyName, companyInfo string, doc *docschema.Document, date string) {
	pdf := p.pdf
	l := p.layout
	pdf.AddPage()

	// Letterhead, page 1 only.
	pdf.SetFont(bodyFont, "B", 20)
	pdf.Text(marginLeft, 72, companyName)
	pdf.SetFont(bodyFont, "", 9)
	pdf.SetTextColor(85, 85, 85)
	pdf.Text(marginLeft, 88, companyInfo)
	pdf.SetTextColor(34, 34, 34)

	// Date and Bill To block.
	pdf.SetFont(bodyFont, "B", bodyFontSize)
	pdf.Text(marginLeft, l.dateValueY, "Date:")
	pdf.Text(marginLeft, l.billToValueY, "Bill To:")
	pdf.SetFont(bodyFont, "", bodyFontSize)
	pdf.Text(l.dateValueX, l.dateValueY, date)

	billToLines := []string{doc.Client.Name}
	if addr := doc.Client.Address; addr != nil {
		if line := formatStreet(addr); line != "" {
			billToLines = append(billToLines, line)
		}
		if line := formatLocality(addr); line != "" {
			billToLines = append(billToLines, line)
		}
	}
	for i, line := range billToLines {
		pdf.Text(l.billToValueX, l.billToValueY+float64(i)*billToLineHeight, line)
	}

	// Document number on the right side of the header area.
	label := "Proposal #:"
	if doc.DocType == docschema.DocTypeInvoice {
		label = "Invoice #:"
	}
	pdf.Text(5.5*72, l.dateValueY, fmt.Sprintf("%s %s", label, doc.DocID))

	// Table header: rule across the body top, Amount column label beside
	// its divider.
	pdf.SetLineWidth(1)
	pdf.Line(marginLeft, l.bodyTopY, marginRight, l.bodyTopY)
	pdf.SetFont(bodyFont, "B", bodyFontSize)
	pdf.Text(marginLeft, l.bodyTopY-headerBaselineRise, "Description")
	pdf.Text(l.amountDividerX+8, l.bodyTopY-headerBaselineRise, "Amount")
	pdf.SetFont(bodyFont, "", bodyFontSize)

	p.y = l.bodyTopY + bodyFirstRowDrop
}

func (p *painter) lineItems(doc *docschema.Document) {
	l := p.layout
	amountLeftX := l.amountRightX - p.width(maxLineAmountText)
	descMaxWidth := amountLeftX - descAmountGap - marginLeft

	for _, item := range doc.LineItems {
		titleLines := wrapToWidth(item.Title, descMaxWidth, p.width)
		var descLines []string
		if item.Description != nil {
			descLines = wrapToWidth(*item.Description, descMaxWidth, p.width)
		}

		needed := float64(len(titleLines)+len(descLines)) * lineLeading
		p.ensureSpace(needed)

		amount := FormatCents(item.AmountCents)
		p.pdf.SetFont(bodyFont, "B", bodyFontSize)
		for i, line := range titleLines {
			p.pdf.Text(marginLeft, p.y, line)
			if i == 0 {
				p.pdf.SetFont(bodyFont, "", bodyFontSize)
				p.pdf.Text(l.amountRightX-p.width(amount), p.y, amount)
				p.pdf.SetFont(bodyFont, "B", bodyFontSize)
			}
			p.y += lineLeading
		}
		p.pdf.SetFont(bodyFont, "", bodyFontSize)
		for _, line := range descLines {
			p.pdf.Text(marginLeft, p.y, line)
			p.y += lineLeading
		}
		p.y += lineLeading * 0.5
	}
}

func (p *painter) totals(doc *docschema.Document) {
	l := p.layout

	type row struct {
		label string
		cents int64
		bold  bool
	}
	rows := []row{{label: "Subtotal", cents: doc.Totals.SubtotalCents}}
	if doc.Totals.DiscountCents != 0 {
		rows = append(rows, row{label: "Discount", cents: doc.Totals.DiscountCents})
	}
	if doc.Totals.TaxCents != 0 {
		rows = append(rows, row{label: "Tax", cents: doc.Totals.TaxCents})
	}
	rows = append(rows,
		row{label: "Total", cents: doc.Totals.TotalCents, bold: true},
		row{label: "Balance Due", cents: doc.Totals.BalanceCents, bold: true},
	)

	p.ensureSpace(float64(len(rows)+1) * lineLeading)

	p.pdf.SetLineWidth(0.5)
	p.pdf.Line(l.amountDividerX-amountPadRight, p.y-lineLeading*0.5, marginRight, p.y-lineLeading*0.5)
	p.y += lineLeading * 0.25

	labelRightX := l.amountRightX - p.width(maxTotalAmountText) - descAmountGap
	for _, r := range rows {
		style := ""
		if r.bold {
			style = "B"
		}
		p.pdf.SetFont(bodyFont, style, bodyFontSize)
		amount := FormatCents(r.cents)
		p.pdf.Text(labelRightX-p.width(r.label), p.y, r.label)
		p.pdf.Text(l.amountRightX-p.width(amount), p.y, amount)
		p.y += lineLeading
	}
	p.pdf.SetFont(bodyFont, "", bodyFontSize)
}

func (p *painter) textSections(doc *docschema.Document) {
	l := p.layout
	sectionWidth := l.amountDividerX - descPadRight - marginLeft

	if doc.Terms.PaymentTerms != nil && *doc.Terms.PaymentTerms != "" {
		p.section("Payment Terms", []string{*doc.Terms.PaymentTerms}, sectionWidth)
	}
	if len(doc.Notes) > 0 {
		p.section("Notes", doc.Notes, sectionWidth)
	}
	if len(doc.Assumptions) > 0 {
		p.section("Assumptions", doc.Assumptions, sectionWidth)
	}
}

func (p *painter) section(title string, entries []string, maxWidth float64) {
	var lines []string
	for _, entry := range entries {
		lines = append(lines, wrapToWidth(entry, maxWidth, p.width)...)
	}

	p.y += lineLeading * 0.5
	p.ensureSpace(float64(len(lines)+1) * lineLeading)

	p.pdf.SetFont(bodyFont, "B", bodyFontSize)
	p.pdf.Text(marginLeft, p.y, title)
	p.y += lineLeading
	p.pdf.SetFont(bodyFont, "", bodyFontSize)
	for _, line := range lines {
		p.ensureSpace(lineLeading)
		p.pdf.Text(marginLeft, p.y, line)
		p.y += lineLeading
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatStreet(addr *docschema.Address) string {
	if addr.Street != nil {
		return *addr.Street
	}
	return ""
}

func formatLocality(addr *docschema.Address) string {
	var parts []string
	if addr.City != nil {
		parts = append(parts, *addr.City)
	}
	if addr.State != nil {
		parts = append(parts, *addr.State)
	}
	locality := strings.Join(parts, ", ")
	if addr.Zip != nil {
		if locality != "" {
			locality += " "
		}
		locality += *addr.Zip
	}
	return locality
}
