package authoring

import (
	"fmt"
	"strings"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/grading"
)

// BlankPlaceholder marks the gap in a cloze question.
const BlankPlaceholder = "{blank}"

// Validator checks a drafted card. Implementations are stateless.
type Validator interface {
	Name() string
	Validate(c *card.Card) *ValidationError
}

// ValidationError describes why a draft was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators returns the standard validator chain.
func DefaultValidators() []Validator {
	return []Validator{
		&StructuralValidator{},
		&ClozeValidator{},
		&OptionsValidator{},
	}
}

// StructuralValidator requires a known type and non-empty question and
// answer.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *card.Card) *ValidationError {
	if !c.Type.IsOpen() && !c.Type.IsChoice() {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("unknown card_type %q", c.Type)}
	}
	if strings.TrimSpace(c.Question) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if strings.TrimSpace(c.Answer) == "" {
		return &ValidationError{Validator: v.Name(), Message: "answer is empty"}
	}
	return nil
}

// ClozeValidator requires exactly one placeholder in cloze questions.
type ClozeValidator struct{}

func (v *ClozeValidator) Name() string { return "cloze" }

func (v *ClozeValidator) Validate(c *card.Card) *ValidationError {
	if c.Type != card.TypeCloze {
		return nil
	}
	if n := strings.Count(c.Question, BlankPlaceholder); n != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("cloze question must contain exactly one %s, found %d", BlankPlaceholder, n),
		}
	}
	return nil
}

// OptionsValidator requires choice cards to offer at least two options whose
// tokens cover every answer token. Open cards must not carry options.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(c *card.Card) *ValidationError {
	if !c.Type.IsChoice() {
		if len(c.Options) > 0 {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("%s card must not have options", c.Type)}
		}
		return nil
	}
	if len(c.Options) < 2 {
		return &ValidationError{Validator: v.Name(), Message: "choice card needs at least 2 options"}
	}

	offered := make(map[string]struct{})
	for _, o := range c.Options {
		for _, tok := range grading.SplitMulti(grading.Normalize(o)) {
			offered[tok] = struct{}{}
		}
	}
	for _, tok := range grading.SplitMulti(grading.Normalize(c.Answer)) {
		if _, ok := offered[tok]; !ok {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("answer token %q is not among the options", tok)}
		}
	}
	return nil
}
