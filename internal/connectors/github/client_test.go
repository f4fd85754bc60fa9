package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"augur/internal/connectors"
)

func newFakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/user/repos"):
			_ = json.NewEncoder(w).Encode([]map[string]string{
				{"name": "billing-service", "full_name": "acme/billing-service"},
				{"name": "web-frontend", "full_name": "acme/web-frontend"},
			})
		case strings.HasPrefix(r.URL.Path, "/repos/acme/billing-service/pulls"):
			_ = json.NewEncoder(w).Encode([]map[string]string{
				{"title": "Fix rounding in invoices"},
				{"title": "Bump pg driver"},
			})
		case strings.HasPrefix(r.URL.Path, "/repos/acme/web-frontend/pulls"):
			_ = json.NewEncoder(w).Encode([]map[string]string{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestSummarizeMatchesRepositoryFromQuery(t *testing.T) {
	server := newFakeGitHub(t)
	defer server.Close()

	client := New(Config{Token: "test", BaseURL: server.URL}, nil)
	summary, err := client.Summarize(context.Background(), connectors.SummaryRequest{
		Query: "what is open on the billing service",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(summary, "acme/billing-service") {
		t.Fatalf("expected billing repo match, got %q", summary)
	}
	if !strings.Contains(summary, "2 open pull requests") {
		t.Fatalf("expected pull request count, got %q", summary)
	}
}

func TestSummarizeReportsEmptyPullRequestList(t *testing.T) {
	server := newFakeGitHub(t)
	defer server.Close()

	client := New(Config{Token: "test", BaseURL: server.URL}, nil)
	summary, err := client.Summarize(context.Background(), connectors.SummaryRequest{
		Query: "frontend status",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(summary, "no open pull requests") {
		t.Fatalf("expected empty pull request summary, got %q", summary)
	}
}

func TestSummarizeFailsWithoutToken(t *testing.T) {
	client := New(Config{}, nil)
	if _, err := client.Summarize(context.Background(), connectors.SummaryRequest{Query: "repo status"}); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestMatchRepositoryScoresWordOverlap(t *testing.T) {
	repos := []repository{
		{Name: "data-pipeline", FullName: "acme/data-pipeline"},
		{Name: "mobile-app", FullName: "acme/mobile-app"},
	}
	matched := matchRepository("is the data pipeline green", repos)
	if matched == nil || matched.FullName != "acme/data-pipeline" {
		t.Fatalf("expected data-pipeline match, got %+v", matched)
	}
	if matchRepository("unrelated question", repos) != nil {
		t.Fatal("expected no match for unrelated query")
	}
}
