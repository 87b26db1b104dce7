package lawofone

import (
	"sort"
	"strings"
)

// Scoring weights for keyword relevance.
const (
	// Q&A pairs.
	WeightQuestionPhrase = 10
	WeightAnswerPhrase   = 5
	WeightQuestionTerm   = 2
	WeightAnswerTerm     = 1

	// Article content items.
	WeightItemPhrase = 5
	WeightItemTerm   = 1
)

const (
	// MaxResults is the number of results returned by a search.
	MaxResults = 5

	// MaxSnippets is the number of scoring content items kept per article page.
	MaxSnippets = 3
)

// Source identifies where a search result came from.
type Source int

// Result sources, in tie-break order.
const (
	SourceQA Source = iota
	SourceArticle
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceQA:
		return "qa"
	case SourceArticle:
		return "article"
	default:
		return "unknown"
	}
}

// Result is a scored search match. It is implemented by *QAResult and
// *ArticleResult only.
type Result interface {
	Source() Source
	Score() int
	result()
}

// QAResult is a matching question/answer pair from a session.
type QAResult struct {
	SessionID string `json:"sessionId"`
	PairID    string `json:"pairId"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	URL       string `json:"url"`
	Relevance int    `json:"score"`
}

func (r *QAResult) Source() Source { return SourceQA }
func (r *QAResult) Score() int     { return r.Relevance }
func (r *QAResult) result()        {}

// ArticleResult is a matching secondary-site page with up to MaxSnippets
// supporting content items.
type ArticleResult struct {
	SectionKey string   `json:"sectionKey"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Snippets   []string `json:"snippets"`
	Relevance  int      `json:"score"`
}

func (r *ArticleResult) Source() Source { return SourceArticle }
func (r *ArticleResult) Score() int     { return r.Relevance }
func (r *ArticleResult) result()        {}

// Searcher ranks stored records against a free-text query.
type Searcher interface {
	// Search returns at most MaxResults results by non-increasing score.
	Search(query string) []Result
}

// Ensure Index implements Searcher at compile time.
var _ Searcher = (*Index)(nil)

// Index scores a corpus with case-insensitive substring matching.
// It is safe for concurrent use because the corpus is never modified.
type Index struct {
	pairs []indexedPair
	pages []indexedPage
}

type indexedPair struct {
	sessionID string
	url       string
	pair      *QAPair
	question  string
	answer    string
}

type indexedPage struct {
	sectionKey string
	title      string
	url        string
	texts      []string
	lowered    []string
}

// NewIndex prepares an index over corpus. Records are laid out in corpus
// order: sessions by natural id, pairs by ordinal, sections by key, pages
// in order. Equal scores keep this order.
func NewIndex(corpus *Corpus) *Index {
	idx := &Index{}
	if corpus == nil {
		return idx
	}

	for _, id := range corpus.SessionIDs() {
		session := corpus.Sessions[id]
		for _, pair := range session.Pairs {
			idx.pairs = append(idx.pairs, indexedPair{
				sessionID: id,
				url:       session.URL,
				pair:      pair,
				question:  strings.ToLower(pair.Question),
				answer:    strings.ToLower(pair.Answer),
			})
		}
	}

	for _, key := range corpus.SectionKeys() {
		section := corpus.Sections[key]
		for _, page := range section.Pages {
			p := indexedPage{sectionKey: key, title: page.Title, url: page.URL}
			if p.title == "" {
				p.title = section.Title
			}
			for _, item := range page.Items {
				text := item.SearchText()
				p.texts = append(p.texts, text)
				p.lowered = append(p.lowered, strings.ToLower(text))
			}
			idx.pages = append(idx.pages, p)
		}
	}

	return idx
}

// Search returns the best matches for query.
func (idx *Index) Search(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	terms := strings.Fields(query)

	var results []Result
	for _, p := range idx.pairs {
		score := scorePair(p.question, p.answer, query, terms)
		if score == 0 {
			continue
		}
		results = append(results, &QAResult{
			SessionID: p.sessionID,
			PairID:    p.pair.ID,
			Question:  p.pair.Question,
			Answer:    p.pair.Answer,
			URL:       p.url + "#" + p.pair.ID,
			Relevance: score,
		})
	}

	for _, p := range idx.pages {
		var total int
		var snippets []string
		for i, text := range p.lowered {
			score := scoreItem(text, query, terms)
			if score == 0 {
				continue
			}
			total += score
			if len(snippets) < MaxSnippets {
				snippets = append(snippets, p.texts[i])
			}
		}
		if total == 0 {
			continue
		}
		results = append(results, &ArticleResult{
			SectionKey: p.sectionKey,
			Title:      p.title,
			URL:        p.url,
			Snippets:   snippets,
			Relevance:  total,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score() != results[j].Score() {
			return results[i].Score() > results[j].Score()
		}
		return results[i].Source() < results[j].Source()
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// scorePair scores lower-cased question and answer text.
func scorePair(question, answer, query string, terms []string) int {
	var score int
	if strings.Contains(question, query) {
		score += WeightQuestionPhrase
	}
	if strings.Contains(answer, query) {
		score += WeightAnswerPhrase
	}
	for _, term := range terms {
		if strings.Contains(question, term) {
			score += WeightQuestionTerm
		}
		if strings.Contains(answer, term) {
			score += WeightAnswerTerm
		}
	}
	return score
}

// scoreItem scores the lower-cased text of one article content item.
func scoreItem(text, query string, terms []string) int {
	var score int
	if strings.Contains(text, query) {
		score += WeightItemPhrase
	}
	for _, term := range terms {
		if strings.Contains(text, term) {
			score += WeightItemTerm
		}
	}
	return score
}
