package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/justishika/clausecheck/internal/review"
	"github.com/justishika/clausecheck/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Review multiple contracts from a manifest file in parallel",
	Long: `Batch reviews multiple contracts concurrently:
- Read contract paths from a manifest file (one per line, #-comments allowed)
- Review contracts in parallel with a configurable worker count
- All contracts are validated against the same checklist
- Write an individual JSON and Markdown report per contract

Example:
  clausecheck batch contracts.txt
  clausecheck batch contracts.txt --concurrency 8 --output-dir ./reports
  clausecheck batch contracts.txt --checklist checklist.yaml --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./clausecheck-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from the review command
	batchCmd.Flags().StringVarP(&checklistPath, "checklist", "c", "checklist.json", "checklist path (JSON or YAML)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable completion cache (force fresh calls)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, groq, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "preferred model variant")
	batchCmd.Flags().StringSliceVar(&fallbackModels, "fallback-models", nil, "model variants tried in order after the preferred one")
	batchCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "custom API endpoint (Groq, Ollama, proxies)")
	batchCmd.Flags().Float64Var(&ratePerSecond, "rate", 0, "max outbound calls per second per model variant (0 = unlimited)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = concurrency

	fmt.Fprintf(os.Stderr, "Batch review\n")
	fmt.Fprintf(os.Stderr, "  Manifest:   %s\n", manifest)
	fmt.Fprintf(os.Stderr, "  Checklist:  %s\n", checklistPath)
	fmt.Fprintf(os.Stderr, "  Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir: %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Provider:   %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintln(os.Stderr)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := review.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, concurrency)
	results, err := processor.ProcessFile(ctx, manifest, checklistPath)
	if err != nil {
		return err
	}

	renderer := review.NewRenderer(!noFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		slug := reportSlug(result.Path)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write Markdown: %v\n", result.Path, err)
			continue
		}

		successCount++
		if len(result.Report.Fallbacks) > 0 {
			fmt.Fprintf(os.Stderr, "! %s (%d step(s) used offline fallback)\n", result.Path, len(result.Report.Fallbacks))
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s\n", result.Path)
		}
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Batch complete: %d total, %d succeeded, %d failed\n", len(results), successCount, failureCount)
	fmt.Fprintf(os.Stderr, "Reports in %s\n", outputDir)

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d reviews failed", failureCount)
	}
	return nil
}

// reportSlug derives a filesystem-safe report name from a contract path.
func reportSlug(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	base = replacer.Replace(base)

	if base == "" {
		base = "report"
	}
	if len(base) > 100 {
		base = base[:100]
	}
	return base
}
