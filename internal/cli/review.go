package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/justishika/clausecheck/internal/model"
	"github.com/justishika/clausecheck/internal/review"
	"github.com/spf13/cobra"
)

var (
	checklistPath  string
	outJSON        string
	outMD          string
	reviewTimeout  time.Duration
	noCache        bool
	noFooter       bool
	llmProvider    string
	llmModel       string
	fallbackModels []string
	llmBaseURL     string
	ratePerSecond  float64
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <contract>",
	Short: "Review a contract against a compliance checklist",
	Long: `Review runs the full analysis over one contract:
- Summarize the purpose and business terms
- Extract the Liability, Termination, Payment Terms and Confidentiality clauses
- Validate each checklist requirement (COMPLIANT, MISSING, RISKY)
- Generate follow-up questions and suggested rewrites

When the model is unreachable, each step degrades to a deterministic
offline fallback and the report is annotated accordingly.

Example:
  clausecheck review contract.txt --checklist checklist.json
  clausecheck review contract.pdf --checklist checklist.yaml --json report.json --md report.md
  clausecheck review contract.txt --checklist checklist.json --provider groq --model llama3-8b-8192`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVarP(&checklistPath, "checklist", "c", "checklist.json", "checklist path (JSON or YAML)")

	// Output flags
	reviewCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	reviewCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	reviewCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Run flags
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 5*time.Minute, "overall review timeout")
	reviewCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable completion cache (force fresh calls)")

	// LLM flags
	reviewCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, groq, anthropic, ollama)")
	reviewCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "preferred model variant")
	reviewCmd.Flags().StringSliceVar(&fallbackModels, "fallback-models", nil, "model variants tried in order after the preferred one")
	reviewCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "custom API endpoint (Groq, Ollama, proxies)")
	reviewCmd.Flags().Float64Var(&ratePerSecond, "rate", 0, "max outbound calls per second per model variant (0 = unlimited)")
}

func runReview(cmd *cobra.Command, args []string) error {
	contractPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Reviewing: %s\n", contractPath)
		fmt.Fprintf(os.Stderr, "Checklist: %s\n", checklistPath)
		fmt.Fprintf(os.Stderr, "Provider:  %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := review.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Review(ctx, contractPath, checklistPath)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Validated %d checklist items\n", len(report.Validation))
		if len(report.Fallbacks) > 0 {
			fmt.Fprintf(os.Stderr, "! %d step(s) used offline fallback\n", len(report.Fallbacks))
		}
		fmt.Fprintln(os.Stderr)
	}

	renderer := review.NewRenderer(!noFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderDigest(os.Stdout, report)
	return nil
}

// buildConfig assembles the process configuration from flags and env.
// Missing credentials are a configuration error raised here, before any
// model call is attempted.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.FallbackModels = fallbackModels
	if len(fallbackModels) == 0 && llmProvider == "openai" && llmModel == "gpt-4o-mini" {
		// Default chain only makes sense for the default provider/model
		cfg.LLM.FallbackModels = []string{"gpt-4o"}
	}
	cfg.LLM.FastModel = llmModel
	cfg.LLM.BaseURL = llmBaseURL
	cfg.LLM.RatePerSecond = ratePerSecond
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "groq":
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	if cfg.Cache.Enabled {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".clausecheck", "cache")
		}
	}

	return cfg, nil
}
