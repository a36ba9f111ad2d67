package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/justishika/clausecheck/internal/extract"
	"github.com/justishika/clausecheck/internal/llm"
	"github.com/justishika/clausecheck/internal/model"
)

// FollowupGenerator produces counterparty questions and suggested
// clause rewrites from the validation outcome.
type FollowupGenerator struct {
	caller      *llm.Caller
	temperature float32
	maxTokens   int
}

// NewFollowupGenerator creates a followup generator over the given caller.
func NewFollowupGenerator(caller *llm.Caller, cfg model.LLMConfig) *FollowupGenerator {
	return &FollowupGenerator{
		caller:      caller,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate returns the followup bundle. Parsable model output fills the
// question/rewrite lists; unparsable output is preserved verbatim under
// Raw; a failed call derives questions from the validation results. The
// second return reports whether the call failed outright.
func (g *FollowupGenerator) Generate(ctx context.Context, clauses model.ClauseSet, validation map[string]model.ValidationResult, order []string) (model.FollowupBundle, bool) {
	comp, err := g.caller.Generate(ctx, llm.CompletionRequest{
		Prompt:       followupPrompt(clauses, validation),
		SystemPrompt: SystemPrompt,
		MaxTokens:    g.maxTokens,
		Temperature:  g.temperature,
	})
	if err != nil {
		return offlineFollowups(validation, order), true
	}

	parsed, ok := extract.ExtractObject(comp.Text)
	if !ok {
		// Keep the reply rather than discard it
		return model.FollowupBundle{Raw: strings.TrimSpace(comp.Text)}, false
	}

	return model.FollowupBundle{
		FollowUpQuestions: listField(parsed, "follow_up_questions", model.MaxFollowUpQuestions),
		SuggestedRewrites: listField(parsed, "suggested_rewrites", model.MaxSuggestedRewrites),
	}, false
}

// listField reads a list by folded field name, capped at max entries.
func listField(parsed map[string]any, name string, max int) []string {
	fold := foldLabel(name)
	for k, v := range parsed {
		if foldLabel(k) == fold {
			return extract.StringList(v, max)
		}
	}
	return nil
}

// offlineFollowups derives questions from the degraded validation
// verdicts: one per missing or risky checklist key, in checklist order.
func offlineFollowups(validation map[string]model.ValidationResult, order []string) model.FollowupBundle {
	var questions []string
	for _, key := range order {
		if len(questions) >= model.MaxFollowUpQuestions {
			break
		}
		switch validation[key].Status {
		case model.StatusMissing:
			questions = append(questions, fmt.Sprintf("The contract appears to lack a %s provision. Can one be added?", key))
		case model.StatusRisky:
			questions = append(questions, fmt.Sprintf("Can you clarify the %s provision with specific terms?", key))
		}
	}
	return model.FollowupBundle{FollowUpQuestions: questions}
}
