// Package crawl builds the corpus by scraping the primary transcript site
// and the secondary article site. It also owns the cache-or-build
// lifecycle used at startup.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/lawofone"
	"github.com/fwojciec/lawofone/bloom"
	"github.com/google/uuid"
)

var _ lawofone.CorpusBuilder = (*Builder)(nil)

// DefaultPrimaryURL is the transcript site.
const DefaultPrimaryURL = "https://www.lawofone.info"

// Paths of the index pages on the primary site.
const (
	CategoryIndexPath = "/c/"
	SessionIndexPath  = "/results/"
)

// DefaultMaxLinksPerPage caps preview fetches per section page when
// BuildOptions leaves it unset.
const DefaultMaxLinksPerPage = 5

// Section names one page of the secondary site to scrape.
type Section struct {
	Key   string
	Title string
	URL   string
}

// DefaultSections are the article sections scraped from the secondary site.
var DefaultSections = []Section{
	{Key: "channeling", Title: "Channeling", URL: "https://www.llresearch.org/channeling"},
	{Key: "library", Title: "Library", URL: "https://www.llresearch.org/library"},
	{Key: "about", Title: "About", URL: "https://www.llresearch.org/about"},
}

// ProgressEvent reports progress during a build.
type ProgressEvent struct {
	Type      ProgressType
	Loop      string
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting build progress.
type ProgressFunc func(event ProgressEvent)

// Builder scrapes both sites into a new corpus. Loops run sequentially in
// the order categories, sessions, sections. A page that fails to fetch,
// returns a non-200 status or panics while being processed is logged and
// skipped.
type Builder struct {
	Fetcher   lawofone.Fetcher
	Parser    lawofone.Parser
	Extractor lawofone.Extractor
	Converter lawofone.Converter
	Throttle  lawofone.Throttle
	Logger    *slog.Logger
	Progress  ProgressFunc

	// PrimaryURL defaults to DefaultPrimaryURL.
	PrimaryURL string

	// Sections defaults to DefaultSections.
	Sections []Section

	// Now defaults to time.Now.
	Now func() time.Time

	// Seen creates the visited-link set for one build. Defaults to a
	// filter sized with bloom.DefaultCapacity and bloom.DefaultFPRate.
	Seen func() *bloom.Seen
}

// Build runs the full scrape. It returns an error only when ctx is done.
func (b *Builder) Build(ctx context.Context, opts lawofone.BuildOptions) (*lawofone.Corpus, error) {
	corpus := lawofone.NewCorpus()
	corpus.BuildID = uuid.NewString()

	if err := b.buildCategories(ctx, corpus); err != nil {
		return nil, err
	}
	if err := b.buildSessions(ctx, corpus, opts.SessionLimit); err != nil {
		return nil, err
	}
	if err := b.buildSections(ctx, corpus, opts); err != nil {
		return nil, err
	}

	corpus.ResolveAnswers()
	corpus.BuiltAt = b.now()
	return corpus, nil
}

func (b *Builder) buildCategories(ctx context.Context, corpus *lawofone.Corpus) error {
	body, ok, err := b.get(ctx, lawofone.LoopCategories, b.primaryURL()+CategoryIndexPath)
	if err != nil || !ok {
		return err
	}

	categories := b.Parser.ParseCategoryIndex(body)
	b.report(ProgressEvent{Type: ProgressStarted, Loop: lawofone.LoopCategories, Total: len(categories)})
	for i, cat := range categories {
		err := b.guard(ctx, lawofone.LoopCategories, cat.URL, func() error {
			body, ok, err := b.get(ctx, lawofone.LoopCategories, cat.URL)
			if err != nil || !ok {
				return err
			}
			cat.Questions = b.Parser.ParseCategoryPage(body)
			return nil
		})
		if err != nil {
			return err
		}
		corpus.Categories[cat.ID] = cat
		b.report(ProgressEvent{Type: ProgressCompleted, Loop: lawofone.LoopCategories, Completed: i + 1, Total: len(categories), URL: cat.URL})
	}
	b.report(ProgressEvent{Type: ProgressFinished, Loop: lawofone.LoopCategories, Completed: len(categories), Total: len(categories)})
	return nil
}

func (b *Builder) buildSessions(ctx context.Context, corpus *lawofone.Corpus, limit int) error {
	body, ok, err := b.get(ctx, lawofone.LoopSessions, b.primaryURL()+SessionIndexPath)
	if err != nil || !ok {
		return err
	}

	refs := b.Parser.ParseSessionIndex(body)
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}

	b.report(ProgressEvent{Type: ProgressStarted, Loop: lawofone.LoopSessions, Total: len(refs)})
	for i, ref := range refs {
		err := b.guard(ctx, lawofone.LoopSessions, ref.URL, func() error {
			body, ok, err := b.get(ctx, lawofone.LoopSessions, ref.URL)
			if err != nil || !ok {
				return err
			}
			corpus.Sessions[ref.ID] = b.Parser.ParseSession(body, ref.ID, ref.URL)
			return nil
		})
		if err != nil {
			return err
		}
		b.report(ProgressEvent{Type: ProgressCompleted, Loop: lawofone.LoopSessions, Completed: i + 1, Total: len(refs), URL: ref.URL})
	}
	b.report(ProgressEvent{Type: ProgressFinished, Loop: lawofone.LoopSessions, Completed: len(refs), Total: len(refs)})
	return nil
}

func (b *Builder) buildSections(ctx context.Context, corpus *lawofone.Corpus, opts lawofone.BuildOptions) error {
	sections := b.sections()
	maxLinks := opts.MaxLinksPerPage
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinksPerPage
	}
	links := newLinkPreviewer(b, maxLinks)

	b.report(ProgressEvent{Type: ProgressStarted, Loop: lawofone.LoopSections, Total: len(sections)})
	for i, sec := range sections {
		err := b.guard(ctx, lawofone.LoopSections, sec.URL, func() error {
			body, ok, err := b.get(ctx, lawofone.LoopSections, sec.URL)
			if err != nil || !ok {
				return err
			}
			page := b.Parser.ParseArticlePage(body, sec.URL)
			if opts.FollowLinks {
				if err := links.preview(ctx, page); err != nil {
					return err
				}
			}
			corpus.Sections[sec.Key] = &lawofone.ArticleSection{
				Key:   sec.Key,
				Title: sec.Title,
				Pages: []*lawofone.Page{page},
			}
			return nil
		})
		if err != nil {
			return err
		}
		b.report(ProgressEvent{Type: ProgressCompleted, Loop: lawofone.LoopSections, Completed: i + 1, Total: len(sections), URL: sec.URL})
	}
	b.report(ProgressEvent{Type: ProgressFinished, Loop: lawofone.LoopSections, Completed: len(sections), Total: len(sections)})
	return nil
}

// get paces the loop and fetches url. ok is false when the page could not
// be retrieved. A non-nil error means ctx is done.
func (b *Builder) get(ctx context.Context, loop, url string) (body string, ok bool, err error) {
	if b.Throttle != nil {
		if err := b.Throttle.Wait(ctx, loop); err != nil {
			return "", false, contextErr(ctx, err)
		}
	}

	status, body, err := b.Fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		b.failed(loop, url, err)
		return "", false, nil
	}
	if status != http.StatusOK {
		b.failed(loop, url, lawofone.Errorf(lawofone.ETRANSPORT, "unexpected status %d", status))
		return "", false, nil
	}
	return body, true, nil
}

// guard runs fn for one page, turning a panic into a logged skip.
func (b *Builder) guard(ctx context.Context, loop, url string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.failed(loop, url, lawofone.Errorf(lawofone.EINTERNAL, "panic: %v", r))
			err = ctx.Err()
		}
	}()
	return fn()
}

func (b *Builder) failed(loop, url string, err error) {
	b.logger().Warn("page skipped", "loop", loop, "url", url, "error", err)
	b.report(ProgressEvent{Type: ProgressFailed, Loop: loop, URL: url, Error: err})
}

func (b *Builder) report(event ProgressEvent) {
	if b.Progress != nil {
		b.Progress(event)
	}
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

func (b *Builder) primaryURL() string {
	if b.PrimaryURL == "" {
		return DefaultPrimaryURL
	}
	return strings.TrimSuffix(b.PrimaryURL, "/")
}

func (b *Builder) sections() []Section {
	if b.Sections == nil {
		return DefaultSections
	}
	return b.Sections
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now().UTC()
	}
	return b.Now()
}

// linkPreviewer fills link previews on section pages, fetching each URL at
// most once per build.
type linkPreviewer struct {
	b        *Builder
	maxLinks int
	seen     *bloom.Seen
	previews map[string]string
	tried    map[string]bool
}

func newLinkPreviewer(b *Builder, maxLinks int) *linkPreviewer {
	seen := bloom.NewSeen(bloom.DefaultCapacity, bloom.DefaultFPRate)
	if b.Seen != nil {
		seen = b.Seen()
	}
	return &linkPreviewer{
		b:        b,
		maxLinks: maxLinks,
		seen:     seen,
		previews: make(map[string]string),
		tried:    make(map[string]bool),
	}
}

// preview fetches up to maxLinks internal non-PDF links of page.
func (p *linkPreviewer) preview(ctx context.Context, page *lawofone.Page) error {
	if p.b.Extractor == nil || p.b.Converter == nil {
		return nil
	}

	attempted := 0
	for _, item := range page.Items {
		if item.Kind != lawofone.ContentLink || item.Link == nil || item.Link.PDF {
			continue
		}
		if attempted >= p.maxLinks {
			break
		}
		link := item.Link

		// A possibly-seen URL that was never tried is a false positive
		// and is fetched like any new one.
		if p.seen.Visit(link.URL) && p.tried[link.URL] {
			link.Preview = p.previews[link.URL]
			continue
		}
		p.tried[link.URL] = true
		attempted++

		err := p.b.guard(ctx, lawofone.LoopLinks, link.URL, func() error {
			text, err := p.fetchPreview(ctx, link.URL)
			if err != nil || text == "" {
				return err
			}
			link.Preview = text
			p.previews[link.URL] = text
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *linkPreviewer) fetchPreview(ctx context.Context, url string) (string, error) {
	body, ok, err := p.b.get(ctx, lawofone.LoopLinks, url)
	if err != nil || !ok {
		return "", err
	}

	extracted, err := p.b.Extractor.Extract(body)
	if err != nil {
		p.b.failed(lawofone.LoopLinks, url, fmt.Errorf("extract: %w", err))
		return "", nil
	}
	markdown, err := p.b.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		p.b.failed(lawofone.LoopLinks, url, fmt.Errorf("convert: %w", err))
		return "", nil
	}
	return lawofone.Preview(markdown, lawofone.PreviewParagraphs, lawofone.PreviewMaxChars), nil
}

func contextErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
