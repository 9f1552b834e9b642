package docgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"handraft-backend/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validResponse = `{
  "schema_version": "v1",
  "doc_type": "proposal",
  "doc_id": "P-2024-007",
  "currency": "USD",
  "locale": "en-US",
  "client": {"name": "Bob Jones"},
  "project": {"title": "Deck repair"},
  "line_items": [
    {"id": "LI-001", "title": "Deck Repair", "kind": "labor", "unit": "hour",
     "quantity": 8, "unit_price_cents": 7500, "amount_cents": 60000}
  ],
  "totals": {"subtotal_cents": 60000, "discount_cents": 0, "tax_cents": 0,
             "total_cents": 60000, "balance_cents": 60000},
  "terms": {},
  "notes": [],
  "assumptions": [],
  "source": {}
}`

// scriptedCompleter returns canned responses one per call and records every
// request it sees.
type scriptedCompleter struct {
	responses []string
	err       error
	requests  []llm.CompletionRequest
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		failed bool
		want   State
	}{
		{"first attempt succeeds", StateFirstAttempt, false, StateSucceeded},
		{"first attempt fails", StateFirstAttempt, true, StateCorrectiveRetry},
		{"retry succeeds", StateCorrectiveRetry, false, StateSucceeded},
		{"retry fails", StateCorrectiveRetry, true, StateFailed},
		{"succeeded is terminal", StateSucceeded, true, StateSucceeded},
		{"failed is terminal", StateFailed, false, StateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.state, tt.failed))
		})
	}
}

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{validResponse}}
	gen := NewGenerator(completer, "gpt-4o", zap.NewNop())

	doc, err := gen.Generate(context.Background(), "Deck repair for Bob Jones, 8 hours at $75/hr")
	require.NoError(t, err)
	require.Len(t, completer.requests, 1)

	assert.Equal(t, "Bob Jones", doc.Client.Name)
	assert.Equal(t, int64(60000), doc.Totals.TotalCents)

	req := completer.requests[0]
	assert.Equal(t, "gpt-4o", req.Model)
	assert.True(t, req.JSONMode)
	assert.Zero(t, req.Temperature)
	assert.Contains(t, req.User, "Deck repair for Bob Jones")
}

func TestGenerateCorrectiveRetry(t *testing.T) {
	invalid := strings.Replace(validResponse, `"amount_cents": 60000`, `"amount_cents": 59000`, 1)
	completer := &scriptedCompleter{responses: []string{invalid, validResponse}}
	gen := NewGenerator(completer, "gpt-4o", zap.NewNop())

	doc, err := gen.Generate(context.Background(), "Deck repair")
	require.NoError(t, err)
	require.Len(t, completer.requests, 2)
	assert.Equal(t, int64(60000), doc.LineItems[0].AmountCents)

	// The second prompt carries the first attempt's validation errors.
	retry := completer.requests[1].User
	assert.Contains(t, retry, "amount_cents must equal quantity*unit_price_cents.")
	assert.NotContains(t, completer.requests[0].User, "amount_cents must equal")
}

func TestGenerateBothAttemptsFail(t *testing.T) {
	invalid := strings.Replace(validResponse, `"id": "LI-001"`, `"id": "ITEM-1"`, 1)
	completer := &scriptedCompleter{responses: []string{invalid, "not json at all"}}
	gen := NewGenerator(completer, "gpt-4o", zap.NewNop())

	doc, err := gen.Generate(context.Background(), "Deck repair")
	require.Nil(t, doc)

	var schemaErr *SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.FirstError, "Line item id must match")
	assert.Contains(t, schemaErr.SecondError, "No JSON object found")
	require.Len(t, completer.requests, 2)
}

func TestGenerateTransportErrorPropagates(t *testing.T) {
	upstream := &llm.UpstreamError{Code: llm.FailureUpstream, Message: "bad gateway", Attempts: 3}
	completer := &scriptedCompleter{err: upstream}
	gen := NewGenerator(completer, "gpt-4o", zap.NewNop())

	_, err := gen.Generate(context.Background(), "Deck repair")
	var upErr *llm.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 3, upErr.Attempts)
	// No corrective retry on transport failure.
	require.Len(t, completer.requests, 1)
}

func TestGenerateErrorTextTruncated(t *testing.T) {
	// A flood of unknown keys makes the aggregated error text exceed the cap.
	var b strings.Builder
	b.WriteString(`{"schema_version": "v1"`)
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, `, "unknown_field_with_a_rather_long_name_%03d": 1`, i)
	}
	b.WriteString("}")

	completer := &scriptedCompleter{responses: []string{b.String(), b.String()}}
	gen := NewGenerator(completer, "gpt-4o", zap.NewNop())

	_, err := gen.Generate(context.Background(), "Deck repair")
	var schemaErr *SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Len(t, schemaErr.FirstError, maxErrorText)
	assert.Len(t, schemaErr.SecondError, maxErrorText)

	retry := completer.requests[1].User
	assert.True(t, strings.Contains(retry, schemaErr.FirstError))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcde", 2))
	assert.Equal(t, "", truncate("", 3))

	// Cuts that land inside a multi-byte rune back up to the rune boundary.
	assert.Equal(t, "a", truncate("aé", 2))
	assert.Equal(t, "aé", truncate("aébc", 3))
	assert.Equal(t, "", truncate("é", 1))
	for n := 0; n <= len("unexpected fïeld 日本"); n++ {
		assert.True(t, utf8.ValidString(truncate("unexpected fïeld 日本", n)), "cut at %d", n)
	}
}

func TestSchemaValidationErrorMessage(t *testing.T) {
	err := &SchemaValidationError{FirstError: "first", SecondError: "second"}
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.False(t, errors.Is(err, context.Canceled))
}
