package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/justishika/clausecheck/internal/doc"
	"github.com/justishika/clausecheck/internal/llm"
	"github.com/justishika/clausecheck/internal/model"
)

// Summarizer produces the contract summary.
type Summarizer struct {
	caller      *llm.Caller
	promptCap   int
	temperature float32
	maxTokens   int
}

// NewSummarizer creates a summarizer over the given caller.
func NewSummarizer(caller *llm.Caller, cfg model.LLMConfig, promptCap int) *Summarizer {
	if promptCap <= 0 {
		promptCap = SummaryPromptCap
	}
	return &Summarizer{
		caller:      caller,
		promptCap:   promptCap,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Summarize returns the model summary, or the offline keyword digest
// when every model variant fails. The second return reports whether the
// digest was used.
func (s *Summarizer) Summarize(ctx context.Context, docText string) (string, bool) {
	comp, err := s.caller.Generate(ctx, llm.CompletionRequest{
		Prompt:       summaryPrompt(doc.Truncate(docText, s.promptCap)),
		SystemPrompt: SystemPrompt,
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	})
	if err != nil {
		return OfflineDigest(docText), true
	}
	return comp.Text, false
}

// digestMaxParagraphs bounds the offline digest length.
const digestMaxParagraphs = 6

// OfflineDigest builds a deterministic, keyword-labeled paragraph
// digest of the document. Used when no model is reachable; makes no
// judgment, only surfaces what the text mentions.
func OfflineDigest(docText string) string {
	var lines []string
	for _, para := range paragraphs(docText) {
		if len(lines) >= digestMaxParagraphs {
			break
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", topicLabel(para), firstSentence(para)))
	}

	if len(lines) == 0 {
		return "- [General] (document contains no readable text)"
	}
	return strings.Join(lines, "\n")
}

// paragraphs splits on blank lines, dropping empty blocks.
func paragraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

// topicLabel names a paragraph by the first matching digest topic.
func topicLabel(para string) string {
	lower := strings.ToLower(para)
	for _, topic := range digestTopicsV1 {
		for _, kw := range topic.Keywords {
			if strings.Contains(lower, kw) {
				return topic.Label
			}
		}
	}
	return "General"
}

// firstSentence trims a paragraph to its opening sentence, capped at
// 200 characters.
func firstSentence(para string) string {
	para = strings.Join(strings.Fields(para), " ")
	for i, r := range para {
		if r == '.' || r == '!' || r == '?' {
			return para[:i+1]
		}
	}
	if len(para) > 200 {
		return para[:200] + "..."
	}
	return para
}
