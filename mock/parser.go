package mock

import "github.com/fwojciec/lawofone"

var _ lawofone.Parser = (*Parser)(nil)

// Parser is a mock implementation of lawofone.Parser.
type Parser struct {
	ParseCategoryIndexFn func(html string) []*lawofone.Category
	ParseCategoryPageFn  func(html string) []*lawofone.Question
	ParseSessionIndexFn  func(html string) []lawofone.SessionRef
	ParseSessionFn       func(html, id, url string) *lawofone.Session
	ParseArticlePageFn   func(html, url string) *lawofone.Page
}

func (p *Parser) ParseCategoryIndex(html string) []*lawofone.Category {
	return p.ParseCategoryIndexFn(html)
}

func (p *Parser) ParseCategoryPage(html string) []*lawofone.Question {
	return p.ParseCategoryPageFn(html)
}

func (p *Parser) ParseSessionIndex(html string) []lawofone.SessionRef {
	return p.ParseSessionIndexFn(html)
}

func (p *Parser) ParseSession(html, id, url string) *lawofone.Session {
	return p.ParseSessionFn(html, id, url)
}

func (p *Parser) ParseArticlePage(html, url string) *lawofone.Page {
	return p.ParseArticlePageFn(html, url)
}
