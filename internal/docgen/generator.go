package docgen

import (
	"context"
	"fmt"
	"unicode/utf8"

	"handraft-backend/internal/docschema"
	"handraft-backend/internal/llm"

	"go.uber.org/zap"
)

// State models the two-attempt generation flow. Transitions are pure so the
// attempt limit and error forwarding are testable without a network.
type State int

const (
	StateFirstAttempt State = iota
	StateCorrectiveRetry
	StateSucceeded
	StateFailed
)

// Next is the transition function: a failed first attempt earns exactly one
// corrective retry; a failed retry is terminal.
func Next(s State, validationFailed bool) State {
	switch s {
	case StateFirstAttempt:
		if validationFailed {
			return StateCorrectiveRetry
		}
		return StateSucceeded
	case StateCorrectiveRetry:
		if validationFailed {
			return StateFailed
		}
		return StateSucceeded
	default:
		return s
	}
}

// maxErrorText bounds how much validation error text is fed back to the model
// and surfaced to callers.
const maxErrorText = 2000

// SchemaValidationError is the terminal failure after the corrective retry
// also produced an invalid document. Both error texts are truncated.
type SchemaValidationError struct {
	FirstError  string
	SecondError string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("document failed schema validation after corrective retry; first: %s; second: %s",
		e.FirstError, e.SecondError)
}

// Generator drives prompt -> completion -> validation with a single
// corrective re-prompt on schema failure.
type Generator struct {
	completer llm.Completer
	model     string
	logger    *zap.Logger
}

func NewGenerator(completer llm.Completer, model string, logger *zap.Logger) *Generator {
	return &Generator{
		completer: completer,
		model:     model,
		logger:    logger,
	}
}

// Generate produces a validated document from the user prompt. Transport
// failures surface as *llm.UpstreamError; content failures after the
// corrective retry surface as *SchemaValidationError.
func (g *Generator) Generate(ctx context.Context, userPrompt string) (*docschema.Document, error) {
	basePrompt := schemaPreamble + userPrompt

	state := StateFirstAttempt
	var doc *docschema.Document
	var firstErrText, secondErrText string

	for state == StateFirstAttempt || state == StateCorrectiveRetry {
		prompt := basePrompt
		if state == StateCorrectiveRetry {
			prompt = basePrompt + fmt.Sprintf(correctiveInstruction, firstErrText)
		}

		result, errText, err := g.attempt(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if errText != "" {
			if state == StateFirstAttempt {
				firstErrText = errText
				g.logger.Warn("generated document failed validation, issuing corrective retry",
					zap.String("validation_error", firstErrText))
			} else {
				secondErrText = errText
			}
		}
		doc = result
		state = Next(state, errText != "")
	}

	if state == StateFailed {
		g.logger.Error("corrective retry also failed validation",
			zap.String("first_error", firstErrText),
			zap.String("second_error", secondErrText))
		return nil, &SchemaValidationError{
			FirstError:  firstErrText,
			SecondError: secondErrText,
		}
	}
	return doc, nil
}

// attempt runs one completion and validation pass. A non-empty errText means
// the content failed validation; err is reserved for transport failures.
func (g *Generator) attempt(ctx context.Context, prompt string) (*docschema.Document, string, error) {
	raw, err := g.completer.Complete(ctx, llm.CompletionRequest{
		Model:       g.model,
		User:        prompt,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, "", err
	}

	doc, err := docschema.Validate(raw)
	if err != nil {
		return nil, truncate(err.Error(), maxErrorText), nil
	}
	return doc, "", nil
}

// truncate cuts to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
