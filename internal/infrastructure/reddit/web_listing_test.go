package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"StoryForge/internal/listing"
)

const listingHTML = `
<div id="siteTable">
  <div class="thing self" data-fullname="t3_abc123">
    <a class="title">I did a thing</a>
    <div class="expando">
      <div class="md"><p>Long confession body here.</p></div>
    </div>
  </div>
  <div class="thing" data-fullname="t3_def456">
    <a class="title">Link post without body</a>
  </div>
  <div class="thing">
    <a class="title">Broken entry without fullname</a>
  </div>
</div>`

func TestBuildTopURL(t *testing.T) {
	t.Parallel()

	u, err := buildTopURL("https://old.reddit.com", listing.Query{
		Subreddit:  "TIFU",
		TimeFilter: "week",
		Limit:      15,
	})
	if err != nil {
		t.Fatalf("buildTopURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}

	if parsed.Path != "/r/TIFU/top/" {
		t.Fatalf("unexpected path: %s", parsed.Path)
	}
	q := parsed.Query()
	if q.Get("t") != "week" {
		t.Fatalf("expected t=week, got %s", q.Get("t"))
	}
	if q.Get("limit") != "15" {
		t.Fatalf("expected limit=15, got %s", q.Get("limit"))
	}
}

func TestExtractPosts(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	posts := extractPosts(doc, listing.Query{Subreddit: "confessions", TimeFilter: "day", Limit: 10})

	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != "abc123" {
		t.Fatalf("unexpected id: %s", posts[0].ID)
	}
	if posts[0].Title != "I did a thing" {
		t.Fatalf("unexpected title: %s", posts[0].Title)
	}
	if posts[0].Body != "Long confession body here." {
		t.Fatalf("unexpected body: %q", posts[0].Body)
	}
	if posts[0].Subreddit != "confessions" {
		t.Fatalf("unexpected subreddit: %s", posts[0].Subreddit)
	}
	if posts[1].Body != "" {
		t.Fatalf("link post should have empty body, got %q", posts[1].Body)
	}
}

func TestExtractPostsHonorsLimit(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	posts := extractPosts(doc, listing.Query{Subreddit: "confessions", TimeFilter: "day", Limit: 1})
	if len(posts) != 1 {
		t.Fatalf("expected limit to cap results, got %d", len(posts))
	}
}

func TestWebListingTopPosts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/r/TIFU/top") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	l := NewWebListing(server.Client(), "test-agent")
	l.baseURL = server.URL

	posts, err := l.TopPosts(context.Background(), listing.Query{
		Subreddit:  "TIFU",
		TimeFilter: "month",
		Limit:      15,
	})
	if err != nil {
		t.Fatalf("TopPosts error: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Subreddit != "TIFU" {
		t.Fatalf("unexpected subreddit: %s", posts[0].Subreddit)
	}
}

func TestWebListingBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	l := NewWebListing(server.Client(), "")
	l.baseURL = server.URL

	if _, err := l.TopPosts(context.Background(), listing.Query{Subreddit: "TIFU", TimeFilter: "day", Limit: 5}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
