package lawofone

import (
	"strings"
)

// Persona text used by FormatResponse.
const (
	// Greeting opens every answer taken from a session.
	Greeting = "I am Ra."

	// FallbackResponse is returned when no stored record matches.
	FallbackResponse = "I am Ra. This sphere of inquiry is not easily addressed through the limitations of your language and understanding. However, I encourage you to explore the Law of One for deeper insights."

	// ArticlePreamble opens answers taken from secondary-site articles.
	ArticlePreamble = "I am Ra. We find that those who have sought before you have recorded the following concerning this matter."
)

// articleSnippets is the number of supporting snippets quoted from an article.
const articleSnippets = 2

// FormatResponse renders the top-ranked result as a reply in the Ra persona
// with a bracketed citation. Returns FallbackResponse when there are no
// results.
func FormatResponse(results []Result) string {
	if len(results) == 0 {
		return FallbackResponse
	}

	switch r := results[0].(type) {
	case *QAResult:
		return formatQA(r)
	case *ArticleResult:
		return formatArticle(r)
	default:
		return FallbackResponse
	}
}

func formatQA(r *QAResult) string {
	var b strings.Builder
	answer := strings.TrimSpace(r.Answer)
	if !strings.HasPrefix(answer, strings.TrimSuffix(Greeting, ".")) {
		b.WriteString(Greeting)
		b.WriteString(" ")
	}
	b.WriteString(answer)
	b.WriteString("\n\n[From Session ")
	b.WriteString(r.SessionID)
	if r.URL != "" {
		b.WriteString(": ")
		b.WriteString(r.URL)
	}
	b.WriteString("]")
	return b.String()
}

func formatArticle(r *ArticleResult) string {
	snippets := r.Snippets
	if len(snippets) > articleSnippets {
		snippets = snippets[:articleSnippets]
	}

	var b strings.Builder
	b.WriteString(ArticlePreamble)
	if len(snippets) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(snippets, " "))
	}
	b.WriteString("\n\n[From ")
	title := r.Title
	if title == "" {
		title = r.SectionKey
	}
	b.WriteString(title)
	if r.URL != "" {
		b.WriteString(": ")
		b.WriteString(r.URL)
	}
	b.WriteString("]")
	return b.String()
}
