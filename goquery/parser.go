// Package goquery implements lawofone.Parser with CSS selectors over the
// markup of lawofone.info and the secondary article site.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/lawofone"
)

// Ensure Parser implements lawofone.Parser at compile time.
var _ lawofone.Parser = (*Parser)(nil)

// Selectors for the primary site.
const (
	selectorCategories   = "div.categories"
	selectorResults      = "div.results div.result"
	selectorSessionIndex = "ul.results-index a[href]"
	selectorQuestion     = "div.q"
	selectorAnswer       = "div.a"
)

// Selectors for secondary-site article pages.
const (
	selectorContentRoots = "main, article, .entry-content"
	selectorContent      = "h1, h2, h3, h4, p, li, blockquote, a[href]"
)

// speakerRe matches the speaker label that opens a transcript paragraph.
var speakerRe = regexp.MustCompile(`^\s*(?:Questioner|Ra)\s*:\s*`)

// Parser extracts corpus records from HTML. Relative links on the primary
// site are resolved against its base URL.
type Parser struct {
	base *url.URL
}

// NewParser creates a Parser for the primary site at baseURL.
func NewParser(baseURL string) *Parser {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = &url.URL{}
	}
	return &Parser{base: base}
}

// ParseCategoryIndex returns categories from the category index page.
func (p *Parser) ParseCategoryIndex(html string) []*lawofone.Category {
	doc, ok := parseDocument(html)
	if !ok {
		return nil
	}

	var categories []*lawofone.Category
	seen := make(map[string]bool)
	doc.Find(selectorCategories).First().Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		id := lastSegment(href)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		categories = append(categories, &lawofone.Category{
			ID:   id,
			Name: collapse(sel.Text()),
			URL:  resolveURL(p.base, href),
		})
	})
	return categories
}

// ParseCategoryPage returns the questions listed on a category page.
// Question links have the form /s/<session>/<question> or
// /s/<session>#<question>.
func (p *Parser) ParseCategoryPage(html string) []*lawofone.Question {
	doc, ok := parseDocument(html)
	if !ok {
		return nil
	}

	var questions []*lawofone.Question
	doc.Find(selectorResults).Each(func(_ int, result *goquery.Selection) {
		link := result.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		sessionID, questionID := questionRef(href)
		if questionID == "" {
			return
		}
		questions = append(questions, &lawofone.Question{
			ID:        questionID,
			Text:      collapse(link.Text()),
			URL:       resolveURL(p.base, href),
			SessionID: sessionID,
		})
	})
	return questions
}

// ParseSessionIndex returns the sessions linked from the session index.
func (p *Parser) ParseSessionIndex(html string) []lawofone.SessionRef {
	doc, ok := parseDocument(html)
	if !ok {
		return nil
	}

	var refs []lawofone.SessionRef
	seen := make(map[string]bool)
	doc.Find(selectorSessionIndex).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		id := lastSegment(href)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		refs = append(refs, lawofone.SessionRef{ID: id, URL: resolveURL(p.base, href)})
	})
	return refs
}

// ParseSession pairs question and answer blocks in document order. Extra
// blocks on either side are dropped.
func (p *Parser) ParseSession(html, id, pageURL string) *lawofone.Session {
	session := &lawofone.Session{ID: id, URL: pageURL, Title: "Session " + id}

	doc, ok := parseDocument(html)
	if !ok {
		return session
	}

	if title := collapse(doc.Find("title").First().Text()); title != "" {
		session.Title = title
	}

	questions := doc.Find(selectorQuestion)
	answers := doc.Find(selectorAnswer)
	n := min(questions.Length(), answers.Length())
	for i := 0; i < n; i++ {
		session.Pairs = append(session.Pairs, &lawofone.QAPair{
			ID:       lawofone.QAPairID(id, i+1),
			Question: stripSpeaker(questions.Eq(i).Text()),
			Answer:   stripSpeaker(answers.Eq(i).Text()),
		})
	}
	return session
}

// ParseArticlePage returns headings, paragraphs, list items and internal
// links of the page's main content in document order.
func (p *Parser) ParseArticlePage(html, pageURL string) *lawofone.Page {
	page := &lawofone.Page{URL: pageURL}

	doc, ok := parseDocument(html)
	if !ok {
		return page
	}

	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		base = p.base
	}

	page.Title = collapse(doc.Find("h1").First().Text())
	if page.Title == "" {
		page.Title = collapse(doc.Find("title").First().Text())
	}

	root := doc.Find(selectorContentRoots).First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	seenText := make(map[string]bool)
	seenLink := make(map[string]bool)
	root.Find(selectorContent).Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		if tag != "a" {
			text := collapse(sel.Text())
			if text == "" || seenText[text] {
				return
			}
			seenText[text] = true
			if resolved, ok := wrappedLink(sel, text, base); ok && !seenLink[resolved] {
				return
			}
			page.Items = append(page.Items, lawofone.TextItem(tag, text))
			return
		}

		resolved, ok := internalLink(sel, base)
		if !ok || seenLink[resolved] {
			return
		}
		seenLink[resolved] = true

		text := collapse(sel.Text())
		if text == "" {
			text = resolved
		}
		page.Items = append(page.Items, lawofone.LinkItem(&lawofone.Link{
			Text: text,
			URL:  resolved,
			PDF:  isPDF(resolved),
		}))
	})
	return page
}

// internalLink resolves the href of anchor a against base. It reports
// false for fragments, non-HTTP schemes, other hosts and the page itself.
func internalLink(a *goquery.Selection, base *url.URL) (string, bool) {
	href, _ := a.Attr("href")
	if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
		return "", false
	}
	resolved := resolveURL(base, href)
	if resolved == "" || resolved == stripFragment(base).String() || !isSameHost(base, resolved) {
		return "", false
	}
	return resolved, true
}

// wrappedLink returns the internal link sel consists of, when sel holds a
// single anchor whose text is the whole of text. The link item then stands
// in for the element.
func wrappedLink(sel *goquery.Selection, text string, base *url.URL) (string, bool) {
	anchors := sel.Find("a[href]")
	if anchors.Length() != 1 || collapse(anchors.Text()) != text {
		return "", false
	}
	return internalLink(anchors, base)
}

// parseDocument parses html, reporting false for input that cannot be read.
func parseDocument(html string) (*goquery.Document, bool) {
	if strings.TrimSpace(html) == "" {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// stripSpeaker removes a leading speaker label and collapses whitespace.
func stripSpeaker(s string) string {
	return collapse(speakerRe.ReplaceAllString(collapse(s), ""))
}

// collapse trims s and folds internal whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
