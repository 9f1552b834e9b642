package docschema

// Version is the only accepted schema_version value.
const Version = "v1"

type DocType string

const (
	DocTypeProposal DocType = "proposal"
	DocTypeInvoice  DocType = "invoice"
)

type ItemKind string

const (
	KindService  ItemKind = "service"
	KindMaterial ItemKind = "material"
	KindLabor    ItemKind = "labor"
	KindFee      ItemKind = "fee"
	KindDiscount ItemKind = "discount"
)

type ItemUnit string

const (
	UnitEach     ItemUnit = "each"
	UnitHour     ItemUnit = "hour"
	UnitSqft     ItemUnit = "sqft"
	UnitLinearFt ItemUnit = "linear_ft"
	UnitLumpSum  ItemUnit = "lump_sum"
)

// Document is the validated v1 structured proposal/invoice. The schema is
// closed: unknown keys at any nesting level fail validation.
type Document struct {
	SchemaVersion string     `json:"schema_version"`
	DocType       DocType    `json:"doc_type"`
	DocID         string     `json:"doc_id"`
	Currency      string     `json:"currency"`
	Locale        string     `json:"locale"`
	Client        Client     `json:"client"`
	Project       Project    `json:"project"`
	LineItems     []LineItem `json:"line_items"`
	Totals        Totals     `json:"totals"`
	Terms         Terms      `json:"terms"`
	Notes         []string   `json:"notes"`
	Assumptions   []string   `json:"assumptions"`
	Source        Source     `json:"source"`
}

type Address struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Zip     *string `json:"zip,omitempty"`
	Country *string `json:"country,omitempty"`
}

type Client struct {
	Name    string   `json:"name"`
	Address *Address `json:"address,omitempty"`
	Email   *string  `json:"email,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
}

type Project struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type LineItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	Kind           ItemKind `json:"kind"`
	Unit           ItemUnit `json:"unit"`
	Quantity       int64    `json:"quantity"`
	UnitPriceCents int64    `json:"unit_price_cents"`
	AmountCents    int64    `json:"amount_cents"`
}

type Totals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
	BalanceCents  int64 `json:"balance_cents"`
}

type Terms struct {
	PaymentTerms *string `json:"payment_terms,omitempty"`
}

type Source struct {
	System *string `json:"system,omitempty"`
}
