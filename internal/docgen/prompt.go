package docgen

// schemaPreamble pins the model to the closed v1 document schema. Every
// permitted top-level key is listed and the worked example satisfies all
// arithmetic invariants.
const schemaPreamble = `Return exactly one JSON object describing a construction proposal or invoice.
The object must contain exactly these top-level keys and no others:
schema_version, doc_type, doc_id, currency, locale, client, project,
line_items, totals, terms, notes, assumptions, source.

Rules:
- schema_version is always "v1"; currency is always "USD"; locale is always "en-US".
- doc_type is "proposal" or "invoice".
- client requires name; address (street/city/state/zip/country), email and phone are optional.
- project requires title; description is optional.
- line_items is a list of 1 to 12 items. Each item has id (LI-001, LI-002, ...),
  title, optional description, kind (service|material|labor|fee|discount),
  unit (each|hour|sqft|linear_ft|lump_sum), quantity (integer >= 1),
  unit_price_cents (integer >= 0) and amount_cents (integer).
- For every non-discount item, amount_cents = quantity * unit_price_cents.
- For discount items, amount_cents is negative and equals -(quantity * unit_price_cents).
- totals has subtotal_cents (sum of non-discount amount_cents), discount_cents
  (sum of discount amount_cents, zero or negative), tax_cents, total_cents and
  balance_cents, all integers.
- notes and assumptions are lists of at most 12 strings, each at most 240 characters.
- All money values are integer cents. Do not invent charges that are not in the text.
- Do not add any key that is not listed above, at any nesting level.

Worked example:
{
  "schema_version": "v1",
  "doc_type": "proposal",
  "doc_id": "PROP-001",
  "currency": "USD",
  "locale": "en-US",
  "client": {
    "name": "Jane Homeowner",
    "address": {"street": "12 Oak Ln", "city": "Springfield", "state": "IL", "zip": "62704", "country": "US"},
    "phone": "555-0134"
  },
  "project": {"title": "Kitchen repaint", "description": "Walls and trim, two coats"},
  "line_items": [
    {"id": "LI-001", "title": "Interior painting", "description": "Walls and ceilings, two coats", "kind": "labor", "unit": "hour", "quantity": 16, "unit_price_cents": 6500, "amount_cents": 104000},
    {"id": "LI-002", "title": "Paint and supplies", "kind": "material", "unit": "lump_sum", "quantity": 1, "unit_price_cents": 42000, "amount_cents": 42000},
    {"id": "LI-003", "title": "Repeat customer discount", "kind": "discount", "unit": "lump_sum", "quantity": 1, "unit_price_cents": 10000, "amount_cents": -10000}
  ],
  "totals": {"subtotal_cents": 146000, "discount_cents": -10000, "tax_cents": 0, "total_cents": 136000, "balance_cents": 136000},
  "terms": {"payment_terms": "50% deposit, balance due on completion"},
  "notes": ["Color selection to be confirmed before start"],
  "assumptions": ["Furniture moved by homeowner"],
  "source": {"system": "handraft"}
}

Document text:
`

const correctiveInstruction = `

The previous attempt failed schema validation with these errors:
%s

Produce the JSON object again, fixing only what the errors above require.
Do not change anything else.`
