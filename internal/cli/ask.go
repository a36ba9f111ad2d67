package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/justishika/clausecheck/internal/doc"
	"github.com/justishika/clausecheck/internal/review"
	"github.com/spf13/cobra"
)

var (
	askTimeout time.Duration
	fastMode   bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <contract> <question>",
	Short: "Ask a question about a contract",
	Long: `Ask answers a single free-form question about a contract, with the
compliance checklist provided as context. The reply streams to stdout
as the model produces it.

By default the full fallback chain applies: if the preferred model
variant fails before producing output, the next variant is tried. Once
streaming starts there is no further fallback.

With --fast the question is answered in single-shot mode: one attempt
against the fast variant, no retry, no fallback. If that attempt fails,
a deterministic offline digest of the contract is printed instead.

Example:
  clausecheck ask contract.txt "What is the liability cap?"
  clausecheck ask contract.pdf "Can either party terminate early?" --fast`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVarP(&checklistPath, "checklist", "c", "checklist.json", "checklist path (JSON or YAML)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "answer timeout")
	askCmd.Flags().BoolVar(&fastMode, "fast", false, "single-shot low-latency mode (no retry, no fallback)")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable completion cache (force fresh calls)")

	// LLM flags
	askCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, groq, anthropic, ollama)")
	askCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "preferred model variant")
	askCmd.Flags().StringSliceVar(&fallbackModels, "fallback-models", nil, "model variants tried in order after the preferred one")
	askCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "custom API endpoint (Groq, Ollama, proxies)")
	askCmd.Flags().Float64Var(&ratePerSecond, "rate", 0, "max outbound calls per second per model variant (0 = unlimited)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	contractPath := args[0]
	question := args[1]

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	document, err := doc.Read(contractPath)
	if err != nil {
		return err
	}

	// The checklist is passed to the model verbatim, so the raw file
	// text is enough here. A missing checklist is not fatal for ask.
	var checklistText string
	if data, err := os.ReadFile(checklistPath); err == nil {
		checklistText = string(data)
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Checklist unavailable (%v), answering without it\n", err)
	}

	p, err := review.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if fastMode {
		answer, err := p.AskFast(ctx, document.Text, checklistText, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Model unavailable (%v); printing offline contract digest instead.\n\n", err)
			fmt.Println(review.OfflineDigest(document.Text))
			return nil
		}
		fmt.Println(answer)
		return nil
	}

	stream, err := p.Ask(ctx, document.Text, checklistText, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	defer func() { _ = stream.Close() }()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Println()
			return fmt.Errorf("stream interrupted: %w", err)
		}
		fmt.Print(chunk)
	}
	fmt.Println()

	return nil
}
