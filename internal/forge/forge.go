package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfields/critic/internal/diff"
	"github.com/mfields/critic/internal/review"
)

// PullRequest is everything the pipeline needs from the backend: the
// metadata, the head commit, and the changed files with parsed hunks.
type PullRequest struct {
	Info    review.PRInfo
	HeadSHA string
	Files   []diff.ChangedFile
}

// InlineComment is one review comment anchored to a diff line.
type InlineComment struct {
	Path string
	Line int
	Body string
}

// Provider is the pull-request backend boundary. The pipeline depends
// only on this interface, never on a concrete backend.
type Provider interface {
	// FetchPR loads the pull request and its changed files.
	FetchPR(ctx context.Context, number int) (*PullRequest, error)
	// PostSummary creates or updates the run's summary comment.
	PostSummary(ctx context.Context, number int, body string) error
	// AppendSummaryNotice appends a notice to the summary comment.
	AppendSummaryNotice(ctx context.Context, number int, notice string) error
	// PostInline posts inline comments against the head commit,
	// returning how many were actually posted.
	PostInline(ctx context.Context, number int, headSHA string, comments []InlineComment) (int, error)
	// Name identifies the backend.
	Name() string
}

// New creates a provider by name. An empty name means GitHub.
func New(name, repo, token string) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "github":
		return NewGitHub(repo, token)
	case "gitlab":
		return nil, fmt.Errorf("gitlab forge is not supported yet")
	default:
		return nil, fmt.Errorf("unknown forge %q (supported: github)", name)
	}
}
