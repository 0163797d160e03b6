package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mfields/critic/internal/diff"
	"github.com/mfields/critic/internal/review"
)

const defaultGitHubAPIURL = "https://api.github.com"

// perPage is the list page size; listings walk pages until a short
// page so large PRs are never silently truncated.
const perPage = 100

// summaryMarker identifies the bot's summary comment so reruns update
// it instead of stacking new comments.
const summaryMarker = "<!-- critic:summary -->"

// GitHub is a Provider backed by the GitHub REST API.
type GitHub struct {
	owner   string
	repo    string
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewGitHub creates a GitHub provider for an "owner/repo" slug. An
// empty token falls back to GITHUB_TOKEN.
func NewGitHub(repo, token string) (*GitHub, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repository must be owner/repo, got %q", repo)
	}

	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token is not set (flag, config, or GITHUB_TOKEN)")
	}

	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultGitHubAPIURL
	}

	return &GitHub{
		owner:   owner,
		repo:    name,
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Name identifies the backend.
func (g *GitHub) Name() string { return "github" }

type prResponse struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	Head struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

type prFile struct {
	Filename         string `json:"filename"`
	PreviousFilename string `json:"previous_filename"`
	Status           string `json:"status"`
	Additions        int    `json:"additions"`
	Deletions        int    `json:"deletions"`
	Patch            string `json:"patch"`
}

// FetchPR loads the pull request metadata and its changed files, with
// each file's patch parsed into hunks.
func (g *GitHub) FetchPR(ctx context.Context, number int) (*PullRequest, error) {
	var pr prResponse
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", g.owner, g.repo, number)
	if err := g.get(ctx, path, &pr); err != nil {
		return nil, fmt.Errorf("fetching PR #%d: %w", number, err)
	}

	var files []prFile
	for page := 1; ; page++ {
		var batch []prFile
		listPath := fmt.Sprintf("%s/files?per_page=%d&page=%d", path, perPage, page)
		if err := g.get(ctx, listPath, &batch); err != nil {
			return nil, fmt.Errorf("fetching PR #%d files: %w", number, err)
		}
		files = append(files, batch...)
		if len(batch) < perPage {
			break
		}
	}

	changed := make([]diff.ChangedFile, 0, len(files))
	for _, f := range files {
		changed = append(changed, diff.ChangedFile{
			Path:         f.Filename,
			OriginalPath: f.PreviousFilename,
			Status:       f.Status,
			Hunks:        diff.ParsePatch(f.Patch),
			Additions:    f.Additions,
			Deletions:    f.Deletions,
		})
	}

	return &PullRequest{
		Info: review.PRInfo{
			Number: pr.Number,
			Title:  pr.Title,
			Body:   pr.Body,
			Author: pr.User.Login,
		},
		HeadSHA: pr.Head.SHA,
		Files:   changed,
	}, nil
}

type issueComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// findSummaryComment locates the marked summary comment, walking all
// comment pages. Returns nil when no marked comment exists.
func (g *GitHub) findSummaryComment(ctx context.Context, number int) (*issueComment, error) {
	for page := 1; ; page++ {
		var batch []issueComment
		listPath := fmt.Sprintf("/repos/%s/%s/issues/%d/comments?per_page=%d&page=%d",
			g.owner, g.repo, number, perPage, page)
		if err := g.get(ctx, listPath, &batch); err != nil {
			return nil, err
		}
		for _, c := range batch {
			if strings.Contains(c.Body, summaryMarker) {
				return &c, nil
			}
		}
		if len(batch) < perPage {
			return nil, nil
		}
	}
}

func (g *GitHub) editComment(ctx context.Context, commentID int64, body string) error {
	editPath := fmt.Sprintf("/repos/%s/%s/issues/comments/%d", g.owner, g.repo, commentID)
	return g.send(ctx, "PATCH", editPath, map[string]string{"body": body}, nil)
}

func (g *GitHub) createComment(ctx context.Context, number int, body string) error {
	createPath := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", g.owner, g.repo, number)
	return g.send(ctx, "POST", createPath, map[string]string{"body": body}, nil)
}

// PostSummary upserts the marked summary comment on the PR: if a
// previous run left one, it is edited in place, otherwise a new
// comment is created.
func (g *GitHub) PostSummary(ctx context.Context, number int, body string) error {
	marked := summaryMarker + "\n" + body

	existing, err := g.findSummaryComment(ctx, number)
	if err != nil {
		return fmt.Errorf("listing PR #%d comments: %w", number, err)
	}

	if existing != nil {
		if err := g.editComment(ctx, existing.ID, marked); err != nil {
			return fmt.Errorf("updating summary comment: %w", err)
		}
		return nil
	}
	if err := g.createComment(ctx, number, marked); err != nil {
		return fmt.Errorf("creating summary comment: %w", err)
	}
	return nil
}

// AppendSummaryNotice appends a publication notice to the existing
// summary comment, so partial inline posting is visible on the PR
// itself and not only in the run log.
func (g *GitHub) AppendSummaryNotice(ctx context.Context, number int, notice string) error {
	existing, err := g.findSummaryComment(ctx, number)
	if err != nil {
		return fmt.Errorf("listing PR #%d comments: %w", number, err)
	}

	if existing == nil {
		if err := g.createComment(ctx, number, summaryMarker+"\n"+notice); err != nil {
			return fmt.Errorf("creating summary comment: %w", err)
		}
		return nil
	}
	if err := g.editComment(ctx, existing.ID, existing.Body+"\n\n"+notice); err != nil {
		return fmt.Errorf("updating summary comment: %w", err)
	}
	return nil
}

type reviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Side string `json:"side"`
	Body string `json:"body"`
}

type reviewRequest struct {
	CommitID string          `json:"commit_id,omitempty"`
	Body     string          `json:"body"`
	Event    string          `json:"event"`
	Comments []reviewComment `json:"comments"`
}

// PostInline posts inline comments as one batched review. When GitHub
// rejects the batch (a stale line anchor fails the whole request), it
// falls back to posting comments one by one so a single bad anchor
// cannot lose the rest.
func (g *GitHub) PostInline(ctx context.Context, number int, headSHA string, comments []InlineComment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	batch := reviewRequest{
		CommitID: headSHA,
		Event:    "COMMENT",
		Comments: make([]reviewComment, 0, len(comments)),
	}
	for _, c := range comments {
		batch.Comments = append(batch.Comments, reviewComment{
			Path: c.Path,
			Line: c.Line,
			Side: "RIGHT",
			Body: c.Body,
		})
	}

	reviewPath := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", g.owner, g.repo, number)
	if err := g.send(ctx, "POST", reviewPath, batch, nil); err == nil {
		return len(comments), nil
	}

	posted := 0
	commentPath := fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", g.owner, g.repo, number)
	for _, c := range comments {
		single := map[string]any{
			"commit_id": headSHA,
			"path":      c.Path,
			"line":      c.Line,
			"side":      "RIGHT",
			"body":      c.Body,
		}
		if err := g.send(ctx, "POST", commentPath, single, nil); err == nil {
			posted++
		}
	}

	if posted < len(comments) {
		return posted, fmt.Errorf("posted %d of %d inline comments", posted, len(comments))
	}
	return posted, nil
}

func (g *GitHub) get(ctx context.Context, path string, out any) error {
	return g.send(ctx, "GET", path, nil, out)
}

func (g *GitHub) send(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.apiURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("calling GitHub: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == 404:
		return fmt.Errorf("not found: %s", path)
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("authentication failed (status %d): %s", resp.StatusCode, string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
