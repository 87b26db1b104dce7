package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/lawofone"
	"github.com/fwojciec/lawofone/bloom"
	"github.com/fwojciec/lawofone/crawl"
	"github.com/fwojciec/lawofone/goquery"
	"github.com/fwojciec/lawofone/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const primaryURL = "https://lo.test"

type response struct {
	status int
	body   string
	err    error
}

// siteFetcher serves canned responses by URL and records every request.
type siteFetcher struct {
	mu        sync.Mutex
	responses map[string]response
	requests  []string
}

func newSiteFetcher() *siteFetcher {
	return &siteFetcher{responses: map[string]response{
		primaryURL + "/c/": {status: 200, body: `<div class="categories">
			<a href="/c/Densities/">Densities</a>
			<a href="/c/Harvest/">Harvest</a>
		</div>`},
		primaryURL + "/c/Densities/": {status: 200, body: `<div class="results">
			<div class="result"><a href="/s/1#1">What is the Law of One?</a></div>
			<div class="result"><a href="/s/3#2">Is there more?</a></div>
		</div>`},
		primaryURL + "/c/Harvest/": {status: 200, body: `<div class="results">
			<div class="result"><a href="/s/2#1">When is the harvest?</a></div>
		</div>`},
		primaryURL + "/results/": {status: 200, body: `<ul class="results-index">
			<li><a href="/s/1">Session 1</a></li>
			<li><a href="/s/2">Session 2</a></li>
			<li><a href="/s/3">Session 3</a></li>
		</ul>`},
		primaryURL + "/s/1": {status: 200, body: `<title>Session 1</title>
			<div class="q">Questioner: What is the Law of One?</div>
			<div class="a">Ra: I am Ra. You are every thing.</div>`},
		primaryURL + "/s/2": {status: 200, body: `<html><body><p>Page under maintenance`},
		primaryURL + "/s/3": {status: 200, body: `<title>Session 3</title>
			<div class="q">Questioner: Hello?</div><div class="a">Ra: I am Ra. Greetings.</div>
			<div class="q">Questioner: Is there more?</div><div class="a">Ra: I am Ra. There is more.</div>`},
		"https://sec.test/library": {status: 200, body: `<main><h1>Library</h1>
			<p>Books of the Ra contact.</p>
			<a href="/library/book-one">Book One</a>
			<a href="/library/book-one.pdf">Book One (PDF)</a>
			<a href="/library/book-two">Book Two</a>
		</main>`},
		"https://sec.test/about": {status: 200, body: `<main><h1>About</h1>
			<p>A small research group.</p>
			<a href="/library/book-one">Our first book</a>
		</main>`},
		"https://sec.test/library/book-one": {status: 200, body: "<p>The first book.</p>"},
		"https://sec.test/library/book-two": {status: 200, body: "<p>The second book.</p>"},
	}}
}

func (f *siteFetcher) set(url string, r response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = r
}

func (f *siteFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == url {
			n++
		}
	}
	return n
}

func (f *siteFetcher) mock() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (int, string, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.requests = append(f.requests, url)
			if err := ctx.Err(); err != nil {
				return 0, "", err
			}
			r, ok := f.responses[url]
			if !ok {
				return 404, "not found", nil
			}
			return r.status, r.body, r.err
		},
		CloseFn: func() error { return nil },
	}
}

var builtAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newBuilder(f *siteFetcher) *crawl.Builder {
	return &crawl.Builder{
		Fetcher: f.mock(),
		Parser:  goquery.NewParser(primaryURL),
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*lawofone.ExtractResult, error) {
				return &lawofone.ExtractResult{ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				text := strings.TrimSuffix(strings.TrimPrefix(html, "<p>"), "</p>")
				return "# Heading\n\n" + text, nil
			},
		},
		PrimaryURL: primaryURL,
		Sections: []crawl.Section{
			{Key: "library", Title: "Library", URL: "https://sec.test/library"},
			{Key: "about", Title: "About", URL: "https://sec.test/about"},
		},
		Now: func() time.Time { return builtAt },
	}
}

func links(page *lawofone.Page) map[string]*lawofone.Link {
	out := make(map[string]*lawofone.Link)
	for _, item := range page.Items {
		if item.Kind == lawofone.ContentLink {
			out[item.Link.URL] = item.Link
		}
	}
	return out
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("builds categories sessions and sections", func(t *testing.T) {
		t.Parallel()

		corpus, err := newBuilder(newSiteFetcher()).Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		assert.NotEmpty(t, corpus.BuildID)
		assert.Equal(t, builtAt, corpus.BuiltAt)
		assert.Equal(t, []string{"Densities", "Harvest"}, corpus.CategoryIDs())
		assert.Equal(t, []string{"1", "2", "3"}, corpus.SessionIDs())
		assert.Equal(t, []string{"about", "library"}, corpus.SectionKeys())
		assert.True(t, corpus.Valid())

		require.Len(t, corpus.Sessions["1"].Pairs, 1)
		assert.Equal(t, "I am Ra. You are every thing.", corpus.Sessions["1"].Pairs[0].Answer)
		require.Len(t, corpus.Sections["library"].Pages, 1)
		assert.Equal(t, "Library", corpus.Sections["library"].Pages[0].Title)
	})

	t.Run("resolves category answers from sessions", func(t *testing.T) {
		t.Parallel()

		corpus, err := newBuilder(newSiteFetcher()).Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		questions := corpus.Categories["Densities"].Questions
		require.Len(t, questions, 2)
		assert.Equal(t, "I am Ra. You are every thing.", questions[0].Answer)
		assert.Equal(t, "I am Ra. There is more.", questions[1].Answer)
		assert.Empty(t, corpus.Categories["Harvest"].Questions[0].Answer, "session 2 has no pairs")
	})

	t.Run("malformed session does not affect the others", func(t *testing.T) {
		t.Parallel()

		corpus, err := newBuilder(newSiteFetcher()).Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		require.Contains(t, corpus.Sessions, "2")
		assert.Empty(t, corpus.Sessions["2"].Pairs)
		require.Len(t, corpus.Sessions["3"].Pairs, 2)
		assert.Equal(t, "3.2", corpus.Sessions["3"].Pairs[1].ID)
	})

	t.Run("skips pages with transport errors and bad statuses", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		f.set(primaryURL+"/s/2", response{err: lawofone.Errorf(lawofone.ETRANSPORT, "connection refused")})
		f.set(primaryURL+"/s/3", response{status: 500, body: "oops"})
		f.set("https://sec.test/about", response{status: 404})

		corpus, err := newBuilder(f).Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, corpus.SessionIDs())
		assert.Equal(t, []string{"library"}, corpus.SectionKeys())
	})

	t.Run("unreachable category index still builds sessions", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		f.set(primaryURL+"/c/", response{status: 503})

		corpus, err := newBuilder(f).Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		assert.Empty(t, corpus.Categories)
		assert.Len(t, corpus.Sessions, 3)
		assert.False(t, corpus.Valid())
	})

	t.Run("recovers from a panic while parsing one session", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		b := newBuilder(f)
		inner := goquery.NewParser(primaryURL)
		b.Parser = &mock.Parser{
			ParseCategoryIndexFn: inner.ParseCategoryIndex,
			ParseCategoryPageFn:  inner.ParseCategoryPage,
			ParseSessionIndexFn:  inner.ParseSessionIndex,
			ParseSessionFn: func(html, id, url string) *lawofone.Session {
				if id == "1" {
					panic("unexpected markup")
				}
				return inner.ParseSession(html, id, url)
			},
			ParseArticlePageFn: inner.ParseArticlePage,
		}

		corpus, err := b.Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"2", "3"}, corpus.SessionIDs())
	})

	t.Run("honors the session limit", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		corpus, err := newBuilder(f).Build(context.Background(), lawofone.BuildOptions{SessionLimit: 2})

		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, corpus.SessionIDs())
		assert.Zero(t, f.count(primaryURL+"/s/3"))
	})

	t.Run("does not follow links unless asked", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		corpus, err := newBuilder(f).Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		assert.Zero(t, f.count("https://sec.test/library/book-one"))
		for _, link := range links(corpus.Sections["library"].Pages[0]) {
			assert.Empty(t, link.Preview)
		}
	})

	t.Run("previews internal links once per build", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		corpus, err := newBuilder(f).Build(context.Background(), lawofone.BuildOptions{FollowLinks: true})

		require.NoError(t, err)
		library := links(corpus.Sections["library"].Pages[0])
		require.Len(t, library, 3)
		assert.Equal(t, "The first book.", library["https://sec.test/library/book-one"].Preview)
		assert.Equal(t, "The second book.", library["https://sec.test/library/book-two"].Preview)

		pdf := library["https://sec.test/library/book-one.pdf"]
		assert.True(t, pdf.PDF)
		assert.Empty(t, pdf.Preview)
		assert.Zero(t, f.count("https://sec.test/library/book-one.pdf"), "PDFs are never fetched")

		about := links(corpus.Sections["about"].Pages[0])
		assert.Equal(t, "The first book.", about["https://sec.test/library/book-one"].Preview)
		assert.Equal(t, 1, f.count("https://sec.test/library/book-one"))
	})

	t.Run("false positive in the seen set is still fetched", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		b := newBuilder(f)
		// One bit: every URL after the first reads as seen.
		b.Seen = func() *bloom.Seen { return bloom.NewSeen(1, 0.99) }

		corpus, err := b.Build(context.Background(), lawofone.BuildOptions{FollowLinks: true})

		require.NoError(t, err)
		library := links(corpus.Sections["library"].Pages[0])
		assert.Equal(t, "The first book.", library["https://sec.test/library/book-one"].Preview)
		assert.Equal(t, "The second book.", library["https://sec.test/library/book-two"].Preview)
		about := links(corpus.Sections["about"].Pages[0])
		assert.Equal(t, "The first book.", about["https://sec.test/library/book-one"].Preview)
		assert.Equal(t, 1, f.count("https://sec.test/library/book-one"))
		assert.Equal(t, 1, f.count("https://sec.test/library/book-two"))
	})

	t.Run("failed link is not fetched again", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		f.set("https://sec.test/library/book-one", response{status: 500, body: "boom"})

		corpus, err := newBuilder(f).Build(context.Background(), lawofone.BuildOptions{FollowLinks: true})

		require.NoError(t, err)
		about := links(corpus.Sections["about"].Pages[0])
		assert.Empty(t, about["https://sec.test/library/book-one"].Preview)
		assert.Equal(t, 1, f.count("https://sec.test/library/book-one"))
	})

	t.Run("caps previews per page", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher()
		corpus, err := newBuilder(f).Build(context.Background(), lawofone.BuildOptions{FollowLinks: true, MaxLinksPerPage: 1})

		require.NoError(t, err)
		library := links(corpus.Sections["library"].Pages[0])
		assert.NotEmpty(t, library["https://sec.test/library/book-one"].Preview)
		assert.Empty(t, library["https://sec.test/library/book-two"].Preview)
		assert.Zero(t, f.count("https://sec.test/library/book-two"))
	})

	t.Run("failed extraction leaves the preview empty", func(t *testing.T) {
		t.Parallel()

		b := newBuilder(newSiteFetcher())
		b.Extractor = &mock.Extractor{
			ExtractFn: func(html string) (*lawofone.ExtractResult, error) {
				return nil, errors.New("no content")
			},
		}

		corpus, err := b.Build(context.Background(), lawofone.BuildOptions{FollowLinks: true})

		require.NoError(t, err)
		for _, link := range links(corpus.Sections["library"].Pages[0]) {
			assert.Empty(t, link.Preview)
		}
	})

	t.Run("canceled context aborts the build", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		corpus, err := newBuilder(newSiteFetcher()).Build(ctx, lawofone.BuildOptions{})

		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, corpus)
	})

	t.Run("cancellation mid-build aborts", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		b := newBuilder(newSiteFetcher())
		b.Throttle = &mock.Throttle{
			WaitFn: func(ctx context.Context, loop string) error {
				if loop == lawofone.LoopSessions {
					cancel()
				}
				return ctx.Err()
			},
		}

		corpus, err := b.Build(ctx, lawofone.BuildOptions{})

		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, corpus)
	})

	t.Run("paces every request by loop", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		waits := make(map[string]int)
		b := newBuilder(newSiteFetcher())
		b.Throttle = &mock.Throttle{
			WaitFn: func(ctx context.Context, loop string) error {
				mu.Lock()
				defer mu.Unlock()
				waits[loop]++
				return nil
			},
		}

		_, err := b.Build(context.Background(), lawofone.BuildOptions{FollowLinks: true})

		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			lawofone.LoopCategories: 3,
			lawofone.LoopSessions:   4,
			lawofone.LoopSections:   2,
			lawofone.LoopLinks:      2,
		}, waits)
	})

	t.Run("reports progress per loop", func(t *testing.T) {
		t.Parallel()

		var events []crawl.ProgressEvent
		f := newSiteFetcher()
		f.set(primaryURL+"/s/2", response{status: 500})
		b := newBuilder(f)
		b.Progress = func(event crawl.ProgressEvent) {
			events = append(events, event)
		}

		_, err := b.Build(context.Background(), lawofone.BuildOptions{})

		require.NoError(t, err)
		var started, finished, failed []string
		for _, e := range events {
			switch e.Type {
			case crawl.ProgressStarted:
				started = append(started, e.Loop)
			case crawl.ProgressFinished:
				finished = append(finished, e.Loop)
			case crawl.ProgressFailed:
				failed = append(failed, e.URL)
			}
		}
		loops := []string{lawofone.LoopCategories, lawofone.LoopSessions, lawofone.LoopSections}
		assert.Equal(t, loops, started)
		assert.Equal(t, loops, finished)
		assert.Equal(t, []string{primaryURL + "/s/2"}, failed)
	})
}
