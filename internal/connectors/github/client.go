package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"augur/internal/connectors"
)

type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client backs the github connector with live data: it matches a repository
// name mentioned in the query against the caller's accessible repositories
// and summarizes its open pull requests. Errors propagate to the fetch stage,
// which degrades them to the sentinel summary.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

type pullRequest struct {
	Title string `json:"title"`
}

func (c *Client) Summarize(ctx context.Context, req connectors.SummaryRequest) (string, error) {
	repos, err := c.listRepositories(ctx)
	if err != nil {
		return "", err
	}
	if len(repos) == 0 {
		return "", fmt.Errorf("no accessible repositories")
	}

	matched := matchRepository(req.Query, repos)
	if matched == nil {
		matched = &repos[0]
	}

	pulls, err := c.listOpenPullRequests(ctx, matched.FullName)
	if err != nil {
		return "", err
	}
	if len(pulls) == 0 {
		return fmt.Sprintf("Repositories: %s has no open pull requests.", matched.FullName), nil
	}

	titles := make([]string, 0, len(pulls))
	for index, pull := range pulls {
		if index == 3 {
			break
		}
		titles = append(titles, pull.Title)
	}
	return fmt.Sprintf("Repositories: %s has %d open pull requests, including: %s.",
		matched.FullName, len(pulls), strings.Join(titles, "; ")), nil
}

// matchRepository scores each repository name by word overlap with the query
// and returns the best hit, or nil when nothing overlaps.
func matchRepository(query string, repos []repository) *repository {
	lowered := strings.ToLower(query)

	var best *repository
	bestScore := 0
	for index := range repos {
		score := 0
		name := strings.ToLower(repos[index].Name)
		if strings.Contains(lowered, name) {
			score = len(name)
		} else {
			for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' }) {
				if len(part) >= 3 && strings.Contains(lowered, part) {
					score += len(part)
				}
			}
		}
		if score > bestScore {
			bestScore = score
			best = &repos[index]
		}
	}
	return best
}

func (c *Client) listRepositories(ctx context.Context) ([]repository, error) {
	var repos []repository
	if err := c.get(ctx, "/user/repos?per_page=50&sort=pushed", &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func (c *Client) listOpenPullRequests(ctx context.Context, fullName string) ([]pullRequest, error) {
	var pulls []pullRequest
	if err := c.get(ctx, "/repos/"+fullName+"/pulls?state=open&per_page=20", &pulls); err != nil {
		return nil, err
	}
	return pulls, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if strings.TrimSpace(c.cfg.Token) == "" {
		return fmt.Errorf("github token is not configured")
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Warn("github request failed", "path", path, "status", res.StatusCode)
		return fmt.Errorf("github request failed with status %d", res.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode github response: %w", err)
	}
	return nil
}
