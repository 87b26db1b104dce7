package lawofone

import (
	"sort"
	"strconv"
	"time"
)

// Category groups questions under a topic from the category index.
type Category struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	URL       string      `json:"url"`
	Questions []*Question `json:"questions"`
}

// Question is a question listed on a category page. SessionID is a weak
// reference into Corpus.Sessions; Answer stays empty until resolved.
type Question struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer,omitempty"`
}

// Session is one scraped session transcript.
type Session struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Pairs []*QAPair `json:"pairs"`
}

// QAPair is a question and Ra's answer within a session.
// ID has the form "<session>.<ordinal>" with a 1-based ordinal.
type QAPair struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QAPairID returns the id of the pair at the 1-based ordinal in a session.
func QAPairID(sessionID string, ordinal int) string {
	return sessionID + "." + strconv.Itoa(ordinal)
}

// SessionRef points at a session page listed on the session index.
type SessionRef struct {
	ID  string
	URL string
}

// ArticleSection is a named section of the secondary content site.
type ArticleSection struct {
	Key   string  `json:"key"`
	Title string  `json:"title"`
	Pages []*Page `json:"pages"`
}

// Page is a fetched article page and its content in document order.
type Page struct {
	URL   string        `json:"url"`
	Title string        `json:"title"`
	Items []ContentItem `json:"items"`
}

// ContentKind tags the variant held by a ContentItem.
type ContentKind int

// Content item kinds.
const (
	ContentText ContentKind = iota
	ContentLink
)

// ContentItem is either a block of text (Text and Tag set) or a link
// (Link set), selected by Kind.
type ContentItem struct {
	Kind ContentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	Tag  string      `json:"tag,omitempty"`
	Link *Link       `json:"link,omitempty"`
}

// TextItem returns a text content item.
func TextItem(tag, text string) ContentItem {
	return ContentItem{Kind: ContentText, Tag: tag, Text: text}
}

// LinkItem returns a link content item.
func LinkItem(link *Link) ContentItem {
	return ContentItem{Kind: ContentLink, Link: link}
}

// SearchText returns the text the item is matched against.
func (c ContentItem) SearchText() string {
	switch c.Kind {
	case ContentLink:
		if c.Link == nil {
			return ""
		}
		if c.Link.Preview == "" {
			return c.Link.Text
		}
		return c.Link.Text + " " + c.Link.Preview
	default:
		return c.Text
	}
}

// Link is an internal link found on an article page. PDF links are kept
// by reference only and never carry a preview.
type Link struct {
	Text    string `json:"text"`
	URL     string `json:"url"`
	Preview string `json:"preview,omitempty"`
	PDF     bool   `json:"pdf,omitempty"`
}

// Corpus is the aggregate of everything scraped in one build. It is the
// unit persisted by a CorpusCache and queried by an Index, and it is not
// modified once built or loaded.
type Corpus struct {
	BuildID    string                     `json:"buildId"`
	BuiltAt    time.Time                  `json:"builtAt"`
	Sessions   map[string]*Session        `json:"sessions"`
	Categories map[string]*Category       `json:"categories"`
	Sections   map[string]*ArticleSection `json:"sections"`
}

// NewCorpus returns an empty corpus with initialized maps.
func NewCorpus() *Corpus {
	return &Corpus{
		Sessions:   make(map[string]*Session),
		Categories: make(map[string]*Category),
		Sections:   make(map[string]*ArticleSection),
	}
}

// Empty reports whether the corpus holds no sessions, categories or sections.
func (c *Corpus) Empty() bool {
	return c == nil || (len(c.Sessions) == 0 && len(c.Categories) == 0 && len(c.Sections) == 0)
}

// Valid reports whether the corpus is complete enough to be served from a
// cache. Both sessions and categories must be present.
func (c *Corpus) Valid() bool {
	return c != nil && len(c.Sessions) > 0 && len(c.Categories) > 0
}

// SessionIDs returns session ids in natural order ("2" before "10").
func (c *Corpus) SessionIDs() []string {
	ids := make([]string, 0, len(c.Sessions))
	for id := range c.Sessions {
		ids = append(ids, id)
	}
	sortNatural(ids)
	return ids
}

// CategoryIDs returns category ids in natural order.
func (c *Corpus) CategoryIDs() []string {
	ids := make([]string, 0, len(c.Categories))
	for id := range c.Categories {
		ids = append(ids, id)
	}
	sortNatural(ids)
	return ids
}

// SectionKeys returns section keys in natural order.
func (c *Corpus) SectionKeys() []string {
	keys := make([]string, 0, len(c.Sections))
	for key := range c.Sections {
		keys = append(keys, key)
	}
	sortNatural(keys)
	return keys
}

// ResolveAnswers fills each category question's Answer from the session
// pair it points at. Questions whose session or pair is missing are left
// unresolved.
func (c *Corpus) ResolveAnswers() {
	for _, cat := range c.Categories {
		for _, q := range cat.Questions {
			session, ok := c.Sessions[q.SessionID]
			if !ok {
				continue
			}
			pairID := q.SessionID + "." + q.ID
			for _, pair := range session.Pairs {
				if pair.ID == pairID {
					q.Answer = pair.Answer
					break
				}
			}
		}
	}
}

// CorpusStats summarizes the size of a corpus.
type CorpusStats struct {
	Sessions   int `json:"sessions"`
	Pairs      int `json:"pairs"`
	Categories int `json:"categories"`
	Questions  int `json:"questions"`
	Resolved   int `json:"resolved"`
	Sections   int `json:"sections"`
	Pages      int `json:"pages"`
	Links      int `json:"links"`
}

// Stats counts the records held by the corpus.
func (c *Corpus) Stats() CorpusStats {
	var s CorpusStats
	if c == nil {
		return s
	}
	s.Sessions = len(c.Sessions)
	for _, session := range c.Sessions {
		s.Pairs += len(session.Pairs)
	}
	s.Categories = len(c.Categories)
	for _, cat := range c.Categories {
		s.Questions += len(cat.Questions)
		for _, q := range cat.Questions {
			if q.Answer != "" {
				s.Resolved++
			}
		}
	}
	s.Sections = len(c.Sections)
	for _, section := range c.Sections {
		s.Pages += len(section.Pages)
		for _, page := range section.Pages {
			for _, item := range page.Items {
				if item.Kind == ContentLink {
					s.Links++
				}
			}
		}
	}
	return s
}

// sortNatural sorts ids numerically when both sides are integers and
// lexically otherwise.
func sortNatural(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return lessNatural(ids[i], ids[j])
	})
}

func lessNatural(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
