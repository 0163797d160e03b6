// Critic is a CLI for reviewing pull requests with LLM providers.
//
// It fetches a pull request from the forge, filters and triages the
// changed files, runs a model-backed review of the selected files, and
// posts evidence-backed findings as a summary comment plus inline
// comments, with deterministic exit codes suitable for CI gating.
//
// Usage:
//
//	critic review --repo owner/repo --pr 42       # review and post
//	critic review --repo owner/repo --pr 42 --dry-run
//	critic config init                            # create a config file
//	critic config set provider anthropic
//
// See https://github.com/mfields/critic for full documentation.
package main
