package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/lawofone"
	"gopkg.in/yaml.v3"
)

// Exporter writes the corpus as markdown files with YAML frontmatter:
// sessions/<id>.md for each session and categories/<id>.md for each
// category. Files go to baseDir/name.tmp and are moved to baseDir/name
// once every file is written.
type Exporter struct {
	baseDir string
	name    string
}

// NewExporter creates an Exporter writing to baseDir/name.
func NewExporter(baseDir, name string) *Exporter {
	return &Exporter{baseDir: baseDir, name: name}
}

func (e *Exporter) tempDir() string {
	return filepath.Join(e.baseDir, e.name+".tmp")
}

func (e *Exporter) finalDir() string {
	return filepath.Join(e.baseDir, e.name)
}

func (e *Exporter) oldDir() string {
	return filepath.Join(e.baseDir, e.name+".old")
}

// Export writes corpus and returns the number of files written. On error
// the previous export, if any, is left untouched.
func (e *Exporter) Export(ctx context.Context, corpus *lawofone.Corpus) (int, error) {
	if corpus.Empty() {
		return 0, lawofone.Errorf(lawofone.EINVALID, "nothing to export")
	}
	if err := os.RemoveAll(e.tempDir()); err != nil {
		return 0, err
	}

	written := 0
	for _, id := range corpus.SessionIDs() {
		if err := ctx.Err(); err != nil {
			return 0, e.abort(err)
		}
		session := corpus.Sessions[id]
		if err := e.write(filepath.Join("sessions", fileName(id)), FormatSession(session, corpus)); err != nil {
			return 0, e.abort(err)
		}
		written++
	}
	for _, id := range corpus.CategoryIDs() {
		if err := ctx.Err(); err != nil {
			return 0, e.abort(err)
		}
		if err := e.write(filepath.Join("categories", fileName(id)), FormatCategory(corpus.Categories[id], corpus)); err != nil {
			return 0, e.abort(err)
		}
		written++
	}

	if err := e.swap(); err != nil {
		return 0, e.abort(err)
	}
	return written, nil
}

// swap moves the previous export aside, puts the temp directory in its
// place and then removes the previous export. A failed move restores it.
func (e *Exporter) swap() error {
	old := e.oldDir()
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	hadPrevious := true
	if err := os.Rename(e.finalDir(), old); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		hadPrevious = false
	}
	if err := os.Rename(e.tempDir(), e.finalDir()); err != nil {
		if hadPrevious {
			_ = os.Rename(old, e.finalDir())
		}
		return err
	}
	return os.RemoveAll(old)
}

func (e *Exporter) write(relPath, content string) error {
	fullPath := filepath.Join(e.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

func (e *Exporter) abort(err error) error {
	_ = os.RemoveAll(e.tempDir())
	return err
}

// fileName maps an id to a safe markdown file name.
func fileName(id string) string {
	id = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, id)
	return id + ".md"
}

// FormatSession formats a session transcript with YAML frontmatter.
func FormatSession(session *lawofone.Session, corpus *lawofone.Corpus) string {
	var b strings.Builder
	writeFrontmatter(&b, session.URL, session.Title, corpus)
	b.WriteString("# ")
	b.WriteString(session.Title)
	b.WriteString("\n")
	for _, pair := range session.Pairs {
		b.WriteString("\n## ")
		b.WriteString(pair.ID)
		b.WriteString("\n\n**Questioner:** ")
		b.WriteString(pair.Question)
		b.WriteString("\n\n**Ra:** ")
		b.WriteString(pair.Answer)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCategory formats a category's questions and resolved answers
// with YAML frontmatter.
func FormatCategory(category *lawofone.Category, corpus *lawofone.Corpus) string {
	var b strings.Builder
	writeFrontmatter(&b, category.URL, category.Name, corpus)
	b.WriteString("# ")
	b.WriteString(category.Name)
	b.WriteString("\n")
	for _, q := range category.Questions {
		b.WriteString("\n## [")
		b.WriteString(q.SessionID)
		b.WriteString(".")
		b.WriteString(q.ID)
		b.WriteString("](")
		b.WriteString(q.URL)
		b.WriteString(") ")
		b.WriteString(q.Text)
		b.WriteString("\n")
		if q.Answer != "" {
			b.WriteString("\n")
			b.WriteString(q.Answer)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Frontmatter is the YAML header of an exported file.
type Frontmatter struct {
	Source  string `yaml:"source"`
	Title   string `yaml:"title"`
	Crawled string `yaml:"crawled"`
}

func writeFrontmatter(b *strings.Builder, source, title string, corpus *lawofone.Corpus) {
	out, err := yaml.Marshal(Frontmatter{
		Source:  source,
		Title:   title,
		Crawled: corpus.BuiltAt.Format("2006-01-02"),
	})
	if err != nil {
		// Strings always marshal.
		panic(err)
	}
	b.WriteString("---\n")
	b.Write(out)
	b.WriteString("---\n\n")
}
