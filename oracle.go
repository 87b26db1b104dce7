package lawofone

import (
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// AnswerKind describes how an Answer was produced.
type AnswerKind string

// Answer kinds.
const (
	AnswerGreeting AnswerKind = "greeting"
	AnswerFarewell AnswerKind = "farewell"
	AnswerMatch    AnswerKind = "match"
	AnswerFallback AnswerKind = "fallback"
)

// Answer is a reply to a query together with the results it was built from.
type Answer struct {
	Text    string
	Kind    AnswerKind
	Results []Result
}

// GreetingResponses are replied to salutations.
var GreetingResponses = []string{
	"I am Ra. I greet you in the love and the light of the Infinite Creator.",
	"I am Ra. I come to you in the love and light of the One Infinite Creator.",
	"I am Ra. We communicate now in the love and light of our Infinite Creator.",
}

// FarewellResponses are replied to partings.
var FarewellResponses = []string{
	"I am Ra. I leave you in the love and the light of the One Infinite Creator. Go forth, therefore, rejoicing in the power and the peace of the One Creator. Adonai.",
	"I am Ra. I leave you in the glory and the peace of the One Creator. Rejoice in the love and the light, and go forth in the power of the One Infinite Creator. In joy, we leave you. Adonai.",
	"I am Ra. We leave you in appreciation of the great light and love of the One Infinite Creator. Adonai.",
}

var (
	greetingWords = map[string]bool{"hello": true, "hi": true, "hey": true, "greetings": true}
	farewellWords = map[string]bool{"bye": true, "goodbye": true, "farewell": true}
)

const farewellPhrase = "see you"

// Oracle answers queries from a Searcher. It holds no per-conversation
// state, so one Oracle can serve any number of callers.
type Oracle struct {
	searcher Searcher
}

// NewOracle returns an Oracle backed by searcher.
func NewOracle(searcher Searcher) *Oracle {
	return &Oracle{searcher: searcher}
}

// Search returns the ranked results for query. It never panics; a failing
// searcher yields no results.
func (o *Oracle) Search(query string) (results []Result) {
	defer func() {
		if recover() != nil {
			results = nil
		}
	}()
	if o.searcher == nil {
		return nil
	}
	return o.searcher.Search(query)
}

// Respond returns the persona reply for query.
func (o *Oracle) Respond(query string) string {
	return o.Answer(query).Text
}

// Answer classifies query and builds the reply. Salutations and partings
// get a canned line; everything else is searched and formatted.
func (o *Oracle) Answer(query string) Answer {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		if greetingWords[w] {
			return Answer{Text: pick(GreetingResponses, query), Kind: AnswerGreeting}
		}
	}
	for _, w := range words {
		if farewellWords[w] {
			return Answer{Text: pick(FarewellResponses, query), Kind: AnswerFarewell}
		}
	}
	if strings.Contains(strings.Join(words, " "), farewellPhrase) {
		return Answer{Text: pick(FarewellResponses, query), Kind: AnswerFarewell}
	}

	results := o.Search(query)
	if len(results) == 0 {
		return Answer{Text: FallbackResponse, Kind: AnswerFallback}
	}
	return Answer{Text: FormatResponse(results), Kind: AnswerMatch, Results: results}
}

// pick selects a line deterministically from the query text.
func pick(lines []string, query string) string {
	return lines[xxhash.Sum64String(query)%uint64(len(lines))]
}
