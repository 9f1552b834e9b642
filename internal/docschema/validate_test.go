package docschema

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "schema_version": "v1",
  "doc_type": "proposal",
  "doc_id": "P-2024-001",
  "currency": "USD",
  "locale": "en-US",
  "client": {
    "name": "Jane Smith",
    "address": {"street": "123 Oak St", "city": "Springfield", "state": "IL", "zip": "62704"},
    "phone": "555-0100"
  },
  "project": {"title": "Kitchen remodel", "description": "Full interior repaint"},
  "line_items": [
    {"id": "LI-001", "title": "Interior Painting", "kind": "labor", "unit": "hour",
     "quantity": 10, "unit_price_cents": 5000, "amount_cents": 50000},
    {"id": "LI-002", "title": "Paint And Supplies", "kind": "material", "unit": "lump_sum",
     "quantity": 1, "unit_price_cents": 12000, "amount_cents": 12000},
    {"id": "LI-003", "title": "Repeat Customer Discount", "kind": "discount", "unit": "lump_sum",
     "quantity": 1, "unit_price_cents": 5000, "amount_cents": -5000}
  ],
  "totals": {"subtotal_cents": 62000, "discount_cents": -5000, "tax_cents": 0,
             "total_cents": 57000, "balance_cents": 57000},
  "terms": {"payment_terms": "50% deposit, balance due on completion"},
  "notes": ["Client to clear work areas"],
  "assumptions": ["Walls are in paint-ready condition"],
  "source": {"system": "handraft"}
}`

// mutate decodes the valid document, applies fn and re-encodes, so each test
// changes exactly one thing.
func mutate(t *testing.T, fn func(root map[string]any)) string {
	t.Helper()
	var root map[string]any
	require.NoError(t, json.Unmarshal([]byte(validDoc), &root))
	fn(root)
	out, err := json.Marshal(root)
	require.NoError(t, err)
	return string(out)
}

func lineItem(root map[string]any, i int) map[string]any {
	return root["line_items"].([]any)[i].(map[string]any)
}

func validationIssues(t *testing.T, raw string) *ValidationError {
	t.Helper()
	_, err := Validate(raw)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	doc, err := Validate(validDoc)
	require.NoError(t, err)

	assert.Equal(t, Version, doc.SchemaVersion)
	assert.Equal(t, DocTypeProposal, doc.DocType)
	assert.Equal(t, "Jane Smith", doc.Client.Name)
	assert.Equal(t, "Kitchen remodel", doc.Project.Title)
	require.Len(t, doc.LineItems, 3)
	assert.Equal(t, KindDiscount, doc.LineItems[2].Kind)
	assert.Equal(t, int64(-5000), doc.LineItems[2].AmountCents)
	assert.Equal(t, int64(62000), doc.Totals.SubtotalCents)
	require.NotNil(t, doc.Terms.PaymentTerms)
}

func TestValidateExtractsObjectFromSurroundingProse(t *testing.T) {
	raw := "Here is the document:\n```json\n" + validDoc + "\n```\nLet me know if you need changes."
	doc, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "P-2024-001", doc.DocID)
}

func TestValidateNoJSONObject(t *testing.T) {
	_, err := Validate("I could not produce a document, sorry.")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.IsJSONError())
	assert.Contains(t, verr.Error(), "No JSON object found")
}

func TestValidateMalformedJSON(t *testing.T) {
	_, err := Validate(`{"schema_version": "v1",`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.IsJSONError())
}

func TestValidateRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name   string
		mutant func(root map[string]any)
		path   string
	}{
		{
			name:   "root level",
			mutant: func(root map[string]any) { root["grand_total"] = 1 },
			path:   "grand_total",
		},
		{
			name:   "client level",
			mutant: func(root map[string]any) { root["client"].(map[string]any)["company"] = "ACME" },
			path:   "client.company",
		},
		{
			name:   "address level",
			mutant: func(root map[string]any) {
				root["client"].(map[string]any)["address"].(map[string]any)["unit"] = "4B"
			},
			path: "client.address.unit",
		},
		{
			name:   "line item level",
			mutant: func(root map[string]any) { lineItem(root, 0)["tax_rate"] = 7 },
			path:   "line_items[0].tax_rate",
		},
		{
			name:   "totals level",
			mutant: func(root map[string]any) { root["totals"].(map[string]any)["deposit_cents"] = 0 },
			path:   "totals.deposit_cents",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := validationIssues(t, mutate(t, tt.mutant))
			require.Len(t, verr.Issues, 1)
			assert.Equal(t, tt.path, verr.Issues[0].Path)
			assert.Equal(t, "unexpected field", verr.Issues[0].Message)
		})
	}
}

func TestValidateRejectsEmptyEnumValues(t *testing.T) {
	tests := []struct {
		name   string
		mutant func(root map[string]any)
		path   string
	}{
		{"schema_version", func(root map[string]any) { root["schema_version"] = "" }, "schema_version"},
		{"doc_type", func(root map[string]any) { root["doc_type"] = "" }, "doc_type"},
		{"currency", func(root map[string]any) { root["currency"] = "" }, "currency"},
		{"locale", func(root map[string]any) { root["locale"] = "" }, "locale"},
		{"line item kind", func(root map[string]any) { lineItem(root, 0)["kind"] = "" }, "line_items[0].kind"},
		{"line item unit", func(root map[string]any) { lineItem(root, 0)["unit"] = "" }, "line_items[0].unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := validationIssues(t, mutate(t, tt.mutant))
			require.Len(t, verr.Issues, 1)
			assert.Equal(t, tt.path, verr.Issues[0].Path)
			assert.Contains(t, verr.Issues[0].Message, "must be one of")
		})
	}
}

func TestValidateEmptyEnumsDoNotMaskArithmetic(t *testing.T) {
	// Blanking the enums must not let a wrong amount slip through.
	raw := mutate(t, func(root map[string]any) {
		root["doc_type"] = ""
		item := lineItem(root, 0)
		item["id"] = ""
		item["kind"] = ""
		item["amount_cents"] = 123
	})
	verr := validationIssues(t, raw)

	messages := make(map[string]string, len(verr.Issues))
	for _, issue := range verr.Issues {
		messages[issue.Path] = issue.Message
	}
	assert.Contains(t, messages["doc_type"], "must be one of")
	assert.Equal(t, "Line item id must match LI-001, LI-002, etc.", messages["line_items[0].id"])
	assert.Contains(t, messages["line_items[0].kind"], "must be one of")
}

func TestValidateEmptyLineItemID(t *testing.T) {
	raw := mutate(t, func(root map[string]any) { lineItem(root, 0)["id"] = "" })
	verr := validationIssues(t, raw)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "line_items[0].id", verr.Issues[0].Path)
	assert.Equal(t, "Line item id must match LI-001, LI-002, etc.", verr.Issues[0].Message)
}

func TestValidateStrictIntegers(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"float", 10.5},
		{"float with zero fraction", json.Number("10.0")},
		{"exponent notation", json.Number("1e1")},
		{"string number", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mutate(t, func(root map[string]any) {
				lineItem(root, 0)["quantity"] = tt.value
			})
			verr := validationIssues(t, raw)
			assert.Equal(t, "line_items[0].quantity", verr.Issues[0].Path)
			assert.Contains(t, verr.Issues[0].Message, "integer")
		})
	}
}

func TestValidateLineItemRules(t *testing.T) {
	tests := []struct {
		name    string
		mutant  func(root map[string]any)
		path    string
		message string
	}{
		{
			name:    "bad id format",
			mutant:  func(root map[string]any) { lineItem(root, 0)["id"] = "ITEM-1" },
			path:    "line_items[0].id",
			message: "Line item id must match LI-001, LI-002, etc.",
		},
		{
			name:    "zero quantity",
			mutant:  func(root map[string]any) { lineItem(root, 0)["quantity"] = 0 },
			path:    "line_items[0].quantity",
			message: "must be at least 1",
		},
		{
			name:    "negative unit price",
			mutant:  func(root map[string]any) { lineItem(root, 0)["unit_price_cents"] = -100 },
			path:    "line_items[0].unit_price_cents",
			message: "must be non-negative",
		},
		{
			name: "amount does not equal quantity times price",
			mutant: func(root map[string]any) {
				lineItem(root, 0)["amount_cents"] = 49000
				root["totals"].(map[string]any)["subtotal_cents"] = 61000
			},
			path:    "line_items[0].amount_cents",
			message: "amount_cents must equal quantity*unit_price_cents.",
		},
		{
			name: "positive discount amount",
			mutant: func(root map[string]any) {
				lineItem(root, 2)["amount_cents"] = 5000
				root["totals"].(map[string]any)["subtotal_cents"] = 67000
				root["totals"].(map[string]any)["discount_cents"] = 0
			},
			path:    "line_items[2].amount_cents",
			message: "Discount amount_cents must be negative.",
		},
		{
			name: "discount amount off by one",
			mutant: func(root map[string]any) {
				lineItem(root, 2)["amount_cents"] = -4999
				root["totals"].(map[string]any)["discount_cents"] = -4999
				root["totals"].(map[string]any)["total_cents"] = 57001
				root["totals"].(map[string]any)["balance_cents"] = 57001
			},
			path:    "line_items[2].amount_cents",
			message: "Discount amount_cents must equal -quantity*unit_price_cents.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := validationIssues(t, mutate(t, tt.mutant))
			require.NotEmpty(t, verr.Issues)
			assert.Equal(t, tt.path, verr.Issues[0].Path)
			assert.Equal(t, tt.message, verr.Issues[0].Message)
		})
	}
}

func TestValidateTotalsCrossCheck(t *testing.T) {
	t.Run("subtotal mismatch", func(t *testing.T) {
		raw := mutate(t, func(root map[string]any) {
			root["totals"].(map[string]any)["subtotal_cents"] = 60000
		})
		verr := validationIssues(t, raw)
		require.Len(t, verr.Issues, 1)
		assert.Equal(t, "totals.subtotal_cents", verr.Issues[0].Path)
		assert.Equal(t, "Subtotal mismatch", verr.Issues[0].Message)
	})

	t.Run("discount mismatch", func(t *testing.T) {
		raw := mutate(t, func(root map[string]any) {
			root["totals"].(map[string]any)["discount_cents"] = 0
		})
		verr := validationIssues(t, raw)
		require.Len(t, verr.Issues, 1)
		assert.Equal(t, "totals.discount_cents", verr.Issues[0].Path)
		assert.Equal(t, "Discount mismatch", verr.Issues[0].Message)
	})
}

func TestValidateLineItemBounds(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		raw := mutate(t, func(root map[string]any) {
			root["line_items"] = []any{}
			totals := root["totals"].(map[string]any)
			totals["subtotal_cents"] = 0
			totals["discount_cents"] = 0
			totals["total_cents"] = 0
			totals["balance_cents"] = 0
		})
		verr := validationIssues(t, raw)
		assert.Equal(t, "line_items", verr.Issues[0].Path)
		assert.Contains(t, verr.Issues[0].Message, "at least 1")
	})

	t.Run("too many items", func(t *testing.T) {
		raw := mutate(t, func(root map[string]any) {
			items := make([]any, 13)
			for i := range items {
				items[i] = map[string]any{
					"id": fmt.Sprintf("LI-%03d", i+1), "title": "Work", "kind": "labor",
					"unit": "hour", "quantity": 1, "unit_price_cents": 100, "amount_cents": 100,
				}
			}
			root["line_items"] = items
			totals := root["totals"].(map[string]any)
			totals["subtotal_cents"] = 1300
			totals["discount_cents"] = 0
			totals["total_cents"] = 1300
			totals["balance_cents"] = 1300
		})
		verr := validationIssues(t, raw)
		assert.Equal(t, "line_items", verr.Issues[0].Path)
		assert.Contains(t, verr.Issues[0].Message, "at most 12")
	})
}

func TestValidateStringBounds(t *testing.T) {
	t.Run("client name too long", func(t *testing.T) {
		raw := mutate(t, func(root map[string]any) {
			root["client"].(map[string]any)["name"] = strings.Repeat("a", 81)
		})
		verr := validationIssues(t, raw)
		assert.Equal(t, "client.name", verr.Issues[0].Path)
		assert.Contains(t, verr.Issues[0].Message, "80 characters")
	})

	t.Run("note too long", func(t *testing.T) {
		raw := mutate(t, func(root map[string]any) {
			root["notes"] = []any{strings.Repeat("n", 241)}
		})
		verr := validationIssues(t, raw)
		assert.Equal(t, "notes[0]", verr.Issues[0].Path)
		assert.Equal(t, "Note too long", verr.Issues[0].Message)
	})
}

func TestValidateAggregatesAllIssues(t *testing.T) {
	raw := mutate(t, func(root map[string]any) {
		delete(root, "doc_id")
		root["client"].(map[string]any)["name"] = nil
		lineItem(root, 0)["id"] = "BAD"
	})
	verr := validationIssues(t, raw)
	assert.GreaterOrEqual(t, len(verr.Issues), 3)
	assert.Contains(t, verr.Error(), "validation error(s)")
	assert.False(t, verr.IsJSONError())
}

func TestValidateRoundTrip(t *testing.T) {
	doc, err := Validate(validDoc)
	require.NoError(t, err)

	encoded, err := json.Marshal(doc)
	require.NoError(t, err)

	again, err := Validate(string(encoded))
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}
