package review

import (
	"context"

	"github.com/justishika/clausecheck/internal/doc"
	"github.com/justishika/clausecheck/internal/extract"
	"github.com/justishika/clausecheck/internal/llm"
	"github.com/justishika/clausecheck/internal/model"
)

// clauseShape is the expected record for clause extraction responses.
var clauseShape = extract.Shape{
	Name:    "clauses",
	Keys:    model.ClauseKeys,
	Aliases: clauseAliasesV1,
}

// ClauseExtractor pulls the four fixed clauses out of a contract.
type ClauseExtractor struct {
	caller      *llm.Caller
	promptCap   int
	temperature float32
	maxTokens   int
}

// NewClauseExtractor creates a clause extractor over the given caller.
func NewClauseExtractor(caller *llm.Caller, cfg model.LLMConfig, promptCap int) *ClauseExtractor {
	if promptCap <= 0 {
		promptCap = ExtractionPromptCap
	}
	return &ClauseExtractor{
		caller:      caller,
		promptCap:   promptCap,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Extract returns the clause set for a document. The model response is
// run through the structured extractor, which guarantees a complete
// record whatever the reply looked like. When every model variant
// fails, the same label-window heuristic runs over the document itself;
// the second return reports that degraded path was used.
func (e *ClauseExtractor) Extract(ctx context.Context, docText string) (model.ClauseSet, bool) {
	prompt := extractionPrompt(doc.Truncate(docText, e.promptCap))

	comp, err := e.caller.Generate(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: SystemPrompt,
		MaxTokens:    e.maxTokens,
		Temperature:  e.temperature,
	})
	if err != nil {
		// Offline: scan the contract text directly for clause labels
		fields := extract.Extract(docText, clauseShape)
		return model.ClauseSetFromMap(fields), true
	}

	fields := extract.Extract(comp.Text, clauseShape)
	return model.ClauseSetFromMap(fields), false
}
