package docschema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// JSONErrorType marks a ValidationError caused by the response not containing
// parseable JSON, as opposed to a well-formed object failing schema checks.
const JSONErrorType = "value_error.json"

type Issue struct {
	Path    string
	Message string
	Type    string
}

// ValidationError aggregates every schema violation found in a single pass,
// so a corrective re-prompt can fix all of them at once.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return fmt.Sprintf("%d validation error(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// IsJSONError reports whether the failure was a parse failure rather than a
// schema violation.
func (e *ValidationError) IsJSONError() bool {
	return len(e.Issues) == 1 && e.Issues[0].Type == JSONErrorType
}

func parseError(msg string) *ValidationError {
	return &ValidationError{Issues: []Issue{{Path: "json", Message: msg, Type: JSONErrorType}}}
}

var lineItemIDPattern = regexp.MustCompile(`^LI-\d{3}$`)

const (
	maxLineItems   = 12
	maxListEntries = 12
	maxListEntry   = 240
)

// Validate extracts the first JSON object from raw model output and checks it
// against the closed v1 document schema, including the line-item and totals
// arithmetic invariants. It is a pure function over the input text.
func Validate(raw string) (*Document, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, parseError("No JSON object found in AI response")
	}

	dec := json.NewDecoder(strings.NewReader(raw[start : end+1]))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, parseError(err.Error())
	}

	v := &validator{}
	doc := v.document(root)
	if len(v.issues) > 0 {
		return nil, &ValidationError{Issues: v.issues}
	}
	return doc, nil
}

type validator struct {
	issues []Issue
}

func (v *validator) fail(path, message string) {
	v.issues = append(v.issues, Issue{Path: path, Message: message, Type: "value_error"})
}

// checkNoExtra rejects keys outside the allowed set; the schema is closed at
// every nesting level.
func (v *validator) checkNoExtra(obj map[string]any, path string, allowed ...string) {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, key := range allowed {
		allowedSet[key] = struct{}{}
	}
	var extra []string
	for key := range obj {
		if _, ok := allowedSet[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		v.fail(joinPath(path, key), "unexpected field")
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// reqString reports ok only when the field is present and a string, so enum
// and pattern checks still run on an empty value.
func (v *validator) reqString(obj map[string]any, path, key string, maxLen int) (string, bool) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		v.fail(joinPath(path, key), "field required")
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(joinPath(path, key), "must be a string")
		return "", false
	}
	if maxLen > 0 && len(s) > maxLen {
		v.fail(joinPath(path, key), fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return s, true
}

func (v *validator) optString(obj map[string]any, path, key string, maxLen int) *string {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(joinPath(path, key), "must be a string")
		return nil
	}
	if maxLen > 0 && len(s) > maxLen {
		v.fail(joinPath(path, key), fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return &s
}

// reqInt enforces strict integers: floats, strings and exponent notation are
// rejected rather than coerced.
func (v *validator) reqInt(obj map[string]any, path, key string) (int64, bool) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		v.fail(joinPath(path, key), "field required")
		return 0, false
	}
	num, ok := raw.(json.Number)
	if !ok {
		v.fail(joinPath(path, key), "must be an integer")
		return 0, false
	}
	if strings.ContainsAny(num.String(), ".eE") {
		v.fail(joinPath(path, key), "must be an integer")
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		v.fail(joinPath(path, key), "must be an integer")
		return 0, false
	}
	return n, true
}

func (v *validator) enum(path, value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	v.fail(path, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return false
}

func (v *validator) object(obj map[string]any, path, key string, required bool) (map[string]any, bool) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		if required {
			v.fail(joinPath(path, key), "field required")
		}
		return nil, false
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.fail(joinPath(path, key), "must be an object")
		return nil, false
	}
	return m, true
}

func (v *validator) stringList(obj map[string]any, path, key, entryNoun string) []string {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return []string{}
	}
	list, ok := raw.([]any)
	if !ok {
		v.fail(joinPath(path, key), "must be a list of strings")
		return []string{}
	}
	if len(list) > maxListEntries {
		v.fail(joinPath(path, key), fmt.Sprintf("must contain at most %d entries", maxListEntries))
	}
	out := make([]string, 0, len(list))
	for i, entry := range list {
		s, ok := entry.(string)
		if !ok {
			v.fail(fmt.Sprintf("%s[%d]", joinPath(path, key), i), "must be a string")
			continue
		}
		if len(s) > maxListEntry {
			v.fail(fmt.Sprintf("%s[%d]", joinPath(path, key), i), entryNoun+" too long")
		}
		out = append(out, s)
	}
	return out
}

func (v *validator) document(root map[string]any) *Document {
	v.checkNoExtra(root, "",
		"schema_version", "doc_type", "doc_id", "currency", "locale",
		"client", "project", "line_items", "totals", "terms",
		"notes", "assumptions", "source")

	doc := &Document{}

	if s, ok := v.reqString(root, "", "schema_version", 0); ok && v.enum("schema_version", s, Version) {
		doc.SchemaVersion = s
	}
	if s, ok := v.reqString(root, "", "doc_type", 0); ok && v.enum("doc_type", s, string(DocTypeProposal), string(DocTypeInvoice)) {
		doc.DocType = DocType(s)
	}
	doc.DocID, _ = v.reqString(root, "", "doc_id", 0)
	if s, ok := v.reqString(root, "", "currency", 0); ok && v.enum("currency", s, "USD") {
		doc.Currency = s
	}
	if s, ok := v.reqString(root, "", "locale", 0); ok && v.enum("locale", s, "en-US") {
		doc.Locale = s
	}

	if clientObj, ok := v.object(root, "", "client", true); ok {
		doc.Client = v.client(clientObj)
	}
	if projectObj, ok := v.object(root, "", "project", true); ok {
		doc.Project = v.project(projectObj)
	}
	doc.LineItems = v.lineItems(root)
	totalsObj, totalsOK := v.object(root, "", "totals", true)
	if totalsOK {
		doc.Totals = v.totals(totalsObj)
	}
	if termsObj, ok := v.object(root, "", "terms", true); ok {
		v.checkNoExtra(termsObj, "terms", "payment_terms")
		doc.Terms.PaymentTerms = v.optString(termsObj, "terms", "payment_terms", 240)
	}
	doc.Notes = v.stringList(root, "", "notes", "Note")
	doc.Assumptions = v.stringList(root, "", "assumptions", "Assumption")
	if sourceObj, ok := v.object(root, "", "source", true); ok {
		v.checkNoExtra(sourceObj, "source", "system")
		doc.Source.System = v.optString(sourceObj, "source", "system", 80)
	}

	if totalsOK {
		v.checkTotals(doc)
	}

	return doc
}

func (v *validator) client(obj map[string]any) Client {
	v.checkNoExtra(obj, "client", "name", "address", "email", "phone")
	name, _ := v.reqString(obj, "client", "name", 80)
	client := Client{
		Name:  name,
		Email: v.optString(obj, "client", "email", 80),
		Phone: v.optString(obj, "client", "phone", 40),
	}
	if addrObj, ok := v.object(obj, "client", "address", false); ok {
		v.checkNoExtra(addrObj, "client.address", "street", "city", "state", "zip", "country")
		client.Address = &Address{
			Street:  v.optString(addrObj, "client.address", "street", 80),
			City:    v.optString(addrObj, "client.address", "city", 80),
			State:   v.optString(addrObj, "client.address", "state", 80),
			Zip:     v.optString(addrObj, "client.address", "zip", 20),
			Country: v.optString(addrObj, "client.address", "country", 40),
		}
	}
	return client
}

func (v *validator) project(obj map[string]any) Project {
	v.checkNoExtra(obj, "project", "title", "description")
	title, _ := v.reqString(obj, "project", "title", 80)
	return Project{
		Title:       title,
		Description: v.optString(obj, "project", "description", 240),
	}
}

func (v *validator) lineItems(root map[string]any) []LineItem {
	raw, ok := root["line_items"]
	if !ok || raw == nil {
		v.fail("line_items", "field required")
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		v.fail("line_items", "must be a list")
		return nil
	}
	if len(list) < 1 {
		v.fail("line_items", "must contain at least 1 item")
	}
	if len(list) > maxLineItems {
		v.fail("line_items", fmt.Sprintf("must contain at most %d items", maxLineItems))
	}

	items := make([]LineItem, 0, len(list))
	for i, entry := range list {
		path := fmt.Sprintf("line_items[%d]", i)
		obj, ok := entry.(map[string]any)
		if !ok {
			v.fail(path, "must be an object")
			continue
		}
		items = append(items, v.lineItem(obj, path))
	}
	return items
}

func (v *validator) lineItem(obj map[string]any, path string) LineItem {
	v.checkNoExtra(obj, path,
		"id", "title", "description", "kind", "unit",
		"quantity", "unit_price_cents", "amount_cents")

	id, idOK := v.reqString(obj, path, "id", 0)
	title, _ := v.reqString(obj, path, "title", 80)
	item := LineItem{
		ID:          id,
		Title:       title,
		Description: v.optString(obj, path, "description", 240),
	}
	if idOK && !lineItemIDPattern.MatchString(item.ID) {
		v.fail(joinPath(path, "id"), "Line item id must match LI-001, LI-002, etc.")
	}
	kindOK := false
	if s, ok := v.reqString(obj, path, "kind", 0); ok && v.enum(joinPath(path, "kind"), s,
		string(KindService), string(KindMaterial), string(KindLabor),
		string(KindFee), string(KindDiscount)) {
		item.Kind = ItemKind(s)
		kindOK = true
	}
	if s, ok := v.reqString(obj, path, "unit", 0); ok && v.enum(joinPath(path, "unit"), s,
		string(UnitEach), string(UnitHour), string(UnitSqft),
		string(UnitLinearFt), string(UnitLumpSum)) {
		item.Unit = ItemUnit(s)
	}

	quantity, qtyOK := v.reqInt(obj, path, "quantity")
	if qtyOK && quantity < 1 {
		v.fail(joinPath(path, "quantity"), "must be at least 1")
		qtyOK = false
	}
	item.Quantity = quantity

	unitPrice, priceOK := v.reqInt(obj, path, "unit_price_cents")
	if priceOK && unitPrice < 0 {
		v.fail(joinPath(path, "unit_price_cents"), "must be non-negative")
		priceOK = false
	}
	item.UnitPriceCents = unitPrice

	amount, amountOK := v.reqInt(obj, path, "amount_cents")
	item.AmountCents = amount

	if qtyOK && priceOK && amountOK && kindOK {
		expected := quantity * unitPrice
		if item.Kind == KindDiscount {
			if amount >= 0 {
				v.fail(joinPath(path, "amount_cents"), "Discount amount_cents must be negative.")
			} else if amount != -expected {
				v.fail(joinPath(path, "amount_cents"), "Discount amount_cents must equal -quantity*unit_price_cents.")
			}
		} else if amount != expected {
			v.fail(joinPath(path, "amount_cents"), "amount_cents must equal quantity*unit_price_cents.")
		}
	}

	return item
}

func (v *validator) totals(obj map[string]any) Totals {
	v.checkNoExtra(obj, "totals",
		"subtotal_cents", "discount_cents", "tax_cents", "total_cents", "balance_cents")
	totals := Totals{}
	totals.SubtotalCents, _ = v.reqInt(obj, "totals", "subtotal_cents")
	totals.DiscountCents, _ = v.reqInt(obj, "totals", "discount_cents")
	totals.TaxCents, _ = v.reqInt(obj, "totals", "tax_cents")
	totals.TotalCents, _ = v.reqInt(obj, "totals", "total_cents")
	totals.BalanceCents, _ = v.reqInt(obj, "totals", "balance_cents")
	return totals
}

// checkTotals cross-checks subtotal and discount against the line items.
// Tax, total and balance are carried through; callers recompute as needed.
func (v *validator) checkTotals(doc *Document) {
	var subtotal, discount int64
	for _, item := range doc.LineItems {
		if item.Kind == KindDiscount {
			discount += item.AmountCents
		} else {
			subtotal += item.AmountCents
		}
	}
	if doc.Totals.SubtotalCents != subtotal {
		v.fail("totals.subtotal_cents", "Subtotal mismatch")
	}
	if doc.Totals.DiscountCents != discount {
		v.fail("totals.discount_cents", "Discount mismatch")
	}
}
