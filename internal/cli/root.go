package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "critic",
	Short: "Diff-aware AI code review for pull requests",
	Long: "Critic fetches a pull request, triages its changed files, reviews the " +
		"selected files with an LLM, and reports evidence-backed findings with " +
		"deterministic exit codes.",
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Run executes the root command and returns an exit code.
func Run() int {
	// A local .env is a convenience for API keys; absence is fine.
	_ = godotenv.Load()

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print critic version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "critic version %s\n", version)
	},
}
