package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfields/critic/internal/config"
	"github.com/mfields/critic/internal/docs"
	"github.com/mfields/critic/internal/filter"
	"github.com/mfields/critic/internal/forge"
	"github.com/mfields/critic/internal/llm"
	"github.com/mfields/critic/internal/output"
	"github.com/mfields/critic/internal/review"
)

var (
	flagPR        int
	flagRepo      string
	flagForge     string
	flagToken     string
	flagProvider  string
	flagModel     string
	flagFormat    string
	flagOut       string
	flagMaxIssues int
	flagDryRun    bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a pull request and post the findings",
	Long: "Fetches the pull request's changed files, triages them, runs a " +
		"model-backed review of the selected files, and posts the result back " +
		"as a summary comment plus inline comments. --dry-run skips posting.",
	Run: func(cmd *cobra.Command, args []string) {
		runReview()
	},
}

func init() {
	reviewCmd.Flags().IntVar(&flagPR, "pr", 0, "Pull request number (required)")
	reviewCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository slug (owner/repo)")
	reviewCmd.Flags().StringVar(&flagForge, "forge", "", "Forge backend (github)")
	reviewCmd.Flags().StringVar(&flagToken, "token", "", "Forge API token (default: GITHUB_TOKEN)")
	reviewCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini)")
	reviewCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	reviewCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	reviewCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	reviewCmd.Flags().IntVar(&flagMaxIssues, "max-issues", 0, "Maximum number of reported issues")
	reviewCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Analyze without posting comments")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagForge != "" {
		m["forge"] = flagForge
	}
	if flagRepo != "" {
		m["repo"] = flagRepo
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagMaxIssues > 0 {
		m["maxIssues"] = fmt.Sprintf("%d", flagMaxIssues)
	}
	return m
}

func runReview() {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if flagPR <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --pr is required")
		exitCode = ExitUsageError
		return
	}
	if cfg.Repo == "" {
		fmt.Fprintln(os.Stderr, "Error: repository is not set (--repo, config, or CRITIC_REPO)")
		exitCode = ExitUsageError
		return
	}

	backend, err := forge.New(cfg.Forge, cfg.Repo, flagToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if strings.Contains(err.Error(), "token") {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitUsageError
		}
		return
	}

	provider, err := llm.New(cfg.Provider, cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if llm.IsAuth(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitUsageError
		}
		return
	}

	ctx := context.Background()

	pr, err := backend.FetchPR(ctx, flagPR)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	filtered := filter.New(cfg.IgnorePatterns).Apply(pr.Files)
	store := docs.NewStore(cfg.DocsRoot, os.Stderr)
	analyzer := review.NewAnalyzer(llm.NewClient(provider), cfg.Privacy.RedactPaths, os.Stderr)
	engine := review.NewEngine(analyzer, cfg.Policy, store, os.Stderr)

	result := engine.Run(ctx, filtered, pr.Info)

	if err := output.WriteResult(&result, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if !flagDryRun {
		if err := postResult(ctx, backend, pr, &result, cfg.Policy.MaxInline); err != nil {
			fmt.Fprintf(os.Stderr, "Error posting review: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
	}

	if len(result.Issues) > 0 {
		exitCode = ExitFindings
	}
}

// postResult upserts the summary comment and posts inline comments for
// the top issues, bounded by the inline cap. A partial inline post is
// a warning, not a failure.
func postResult(ctx context.Context, backend forge.Provider, pr *forge.PullRequest, result *review.Result, maxInline int) error {
	var body bytes.Buffer
	if err := (&output.MarkdownWriter{}).Write(&body, result); err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}
	if err := backend.PostSummary(ctx, pr.Info.Number, body.String()); err != nil {
		return err
	}

	inline := result.Issues
	if maxInline > 0 && len(inline) > maxInline {
		inline = inline[:maxInline]
	}
	comments := make([]forge.InlineComment, 0, len(inline))
	for _, is := range inline {
		comments = append(comments, forge.InlineComment{
			Path: is.Path,
			Line: is.LineEnd,
			Body: formatInlineComment(is),
		})
	}

	posted, err := backend.PostInline(ctx, pr.Info.Number, pr.HeadSHA, comments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if posted < len(comments) {
		fmt.Fprintf(os.Stderr, "Posted %d inline comment(s); the summary comment lists all %d issue(s)\n",
			posted, len(result.Issues))
		notice := fmt.Sprintf("**Note:** only %d of %d inline comments could be posted. "+
			"The summary above lists every issue.", posted, len(comments))
		if err := backend.AppendSummaryNotice(ctx, pr.Info.Number, notice); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return nil
}

func formatInlineComment(is review.Issue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** (%s, %s, confidence: %.0f%%)\n\n", is.Title, is.Severity, is.Category, is.Confidence*100)
	sb.WriteString(is.Message)
	if is.Suggestion != "" {
		fmt.Fprintf(&sb, "\n\n**Suggestion:**\n```\n%s\n```", is.Suggestion)
	}
	if is.Evidence != nil {
		fmt.Fprintf(&sb, "\n\n*Evidence (%s): %s*", is.Evidence.Kind, is.Evidence.Source)
	}
	return sb.String()
}
