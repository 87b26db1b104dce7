package lawofone

// Parser extracts structured records from scraped HTML documents.
// Implementations never fail: absent markup yields empty results.
type Parser interface {
	// ParseCategoryIndex returns the categories listed on the category index.
	ParseCategoryIndex(html string) []*Category

	// ParseCategoryPage returns the questions listed on a category page.
	ParseCategoryPage(html string) []*Question

	// ParseSessionIndex returns the session pages listed on the session index.
	ParseSessionIndex(html string) []SessionRef

	// ParseSession returns the session transcript found at url.
	ParseSession(html, id, url string) *Session

	// ParseArticlePage returns the content of a secondary-site page at url.
	ParseArticlePage(html, url string) *Page
}
