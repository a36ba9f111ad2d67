package review

import (
	"context"
	"fmt"
	"time"

	"github.com/justishika/clausecheck/internal/cache"
	"github.com/justishika/clausecheck/internal/doc"
	"github.com/justishika/clausecheck/internal/llm"
	"github.com/justishika/clausecheck/internal/model"
	"github.com/justishika/clausecheck/internal/worker"
)

// Pipeline orchestrates one contract review: summarize, extract
// clauses, validate against the checklist, generate follow-ups. Steps
// run in that fixed order because each consumes the previous step's
// output.
type Pipeline struct {
	caller     *llm.Caller
	summarizer *Summarizer
	clauses    *ClauseExtractor
	validator  *Validator
	followups  *FollowupGenerator
	config     *model.Config
}

// NewPipeline creates a pipeline from the process configuration.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize provider: %w", err)
	}

	variants := append([]string{cfg.LLM.Model}, cfg.LLM.FallbackModels...)

	var store llm.Store
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			store = cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
	}

	var gate llm.Gate
	if cfg.LLM.RatePerSecond > 0 {
		gate = worker.NewLimiter(cfg.LLM.RatePerSecond, 2)
	}

	caller, err := llm.NewCaller(provider, llm.CallerOptions{
		Variants:    variants,
		FastVariant: cfg.LLM.FastModel,
		MaxAttempts: cfg.LLM.MaxAttempts,
		BaseDelay:   cfg.LLM.BaseDelay,
		Store:       store,
		StoreTTL:    cfg.Cache.DiskTTL,
		Gate:        gate,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize caller: %w", err)
	}

	return &Pipeline{
		caller:     caller,
		summarizer: NewSummarizer(caller, cfg.LLM, cfg.Limits.SummaryChars),
		clauses:    NewClauseExtractor(caller, cfg.LLM, cfg.Limits.ExtractionChars),
		validator:  NewValidator(caller, cfg.LLM),
		followups:  NewFollowupGenerator(caller, cfg.LLM),
		config:     cfg,
	}, nil
}

// Caller exposes the resilient caller for interactive use (ask mode).
func (p *Pipeline) Caller() *llm.Caller { return p.caller }

// Review runs the full review for a document and checklist on disk.
func (p *Pipeline) Review(ctx context.Context, docPath, checklistPath string) (*model.Report, error) {
	document, err := doc.Read(docPath)
	if err != nil {
		return nil, err
	}

	checklist, err := model.LoadChecklist(checklistPath)
	if err != nil {
		return nil, err
	}

	return p.ReviewDocument(ctx, document, checklist)
}

// ReviewDocument runs the four review steps over already-loaded inputs
// and assembles the write-once report. Individual step failures degrade
// to documented offline behavior and are recorded as fallback notes;
// only input errors surface to the caller.
func (p *Pipeline) ReviewDocument(ctx context.Context, document *doc.Document, checklist *model.Checklist) (*model.Report, error) {
	report := model.NewReport()
	report.Checklist = checklist.Keys()
	report.Source = model.SourceMeta{
		Path:     document.Path,
		IsPDF:    document.IsPDF,
		Chars:    len(document.Text),
		Provider: p.caller.Provider().Name(),
		Model:    p.config.LLM.Model,
	}

	var usedDigest, usedScan, usedRules, usedDerived bool

	report.Summary, usedDigest = p.summarizer.Summarize(ctx, document.Text)
	if usedDigest {
		report.AddFallbackNote("summary generated via offline keyword digest")
	}

	report.Clauses, usedScan = p.clauses.Extract(ctx, document.Text)
	if usedScan {
		report.AddFallbackNote("clauses extracted via offline document scan")
	}

	report.Validation, usedRules = p.validator.Validate(ctx, report.Clauses, checklist)
	if usedRules {
		report.AddFallbackNote("validation generated via offline keyword rules")
	}

	report.Followups, usedDerived = p.followups.Generate(ctx, report.Clauses, report.Validation, checklist.Keys())
	if usedDerived {
		report.AddFallbackNote("follow-ups derived from validation results offline")
	}

	return report, nil
}

// Ask answers one interactive question over the contract and checklist,
// streaming the reply. Uses the exhaustive fallback chain; once any
// variant starts streaming there is no further fallback.
func (p *Pipeline) Ask(ctx context.Context, docText, checklistText, question string) (llm.Stream, error) {
	return p.caller.GenerateStream(ctx, llm.CompletionRequest{
		Prompt:       AskPrompt(doc.Truncate(docText, p.config.Limits.ExtractionChars), checklistText, question),
		SystemPrompt: "You are a legal AI assistant.",
		MaxTokens:    p.config.LLM.MaxTokens,
		Temperature:  p.config.LLM.Temperature,
	})
}

// AskFast answers one interactive question in single-shot low-latency
// mode: one attempt against the fast variant, no retry, no fallback.
// Failures propagate so the call site can apply its own fallback.
func (p *Pipeline) AskFast(ctx context.Context, docText, checklistText, question string) (string, error) {
	comp, err := p.caller.GenerateFast(ctx, llm.CompletionRequest{
		Prompt:       AskPrompt(doc.Truncate(docText, p.config.Limits.ExtractionChars), checklistText, question),
		SystemPrompt: "You are a legal AI assistant.",
		MaxTokens:    p.config.LLM.MaxTokens,
		Temperature:  p.config.LLM.Temperature,
	})
	if err != nil {
		return "", err
	}
	return comp.Text, nil
}
