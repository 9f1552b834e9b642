package render

// Page geometry in points, top-left origin (gofpdf convention). The anchor
// values reproduce the fixed invoice template: a letterhead block, a Date /
// Bill To header area, and a ruled line-item table whose amount column hangs
// off a divider near the right margin.
const (
	pageWidth  = 612.0 // Letter
	pageHeight = 792.0

	marginLeft  = 72.0
	marginRight = pageWidth - 72.0

	// Table body top: 8.75in from the page bottom on page 1, 9.65in on
	// continuation pages (no letterhead).
	page1BodyTopY = pageHeight - 8.75*72
	page2BodyTopY = pageHeight - 9.65*72

	// Pagination floor: 1.5in bottom margin.
	bodyBottomY = pageHeight - 1.5*72

	amountDividerOffset = 70.0
	headerBaselineRise  = 7.0
	dateLabelRise       = 66.0
	billToLabelDrop     = 24.0
	valueXOffset        = 0.61 * 72

	billToLineHeight = 13.0
	lineLeading      = 0.20 * 72
	bodyFirstRowDrop = 18.0

	descPadRight   = 36.0
	amountPadRight = 12.0
	descAmountGap  = 16.0
)

// layout holds the precomputed anchors shared by every page of a render.
type layout struct {
	dateValueX   float64
	dateValueY   float64
	billToValueX float64
	billToValueY float64

	amountDividerX float64
	amountRightX   float64
	bodyTopY       float64
}

// computeLayout derives page-1 anchors once per render; the divider and
// amount-column X anchors are reused verbatim on continuation pages.
func computeLayout() layout {
	headerBaselineY := page1BodyTopY - headerBaselineRise
	dateLabelY := headerBaselineY - dateLabelRise
	billToLabelY := dateLabelY + billToLabelDrop

	return layout{
		dateValueX:     marginLeft + valueXOffset,
		dateValueY:     dateLabelY,
		billToValueX:   marginLeft + valueXOffset,
		billToValueY:   billToLabelY,
		amountDividerX: marginRight - amountDividerOffset,
		amountRightX:   marginRight,
		bodyTopY:       page1BodyTopY,
	}
}
