package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/lawofone"
)

// Compile-time interface verification.
var _ lawofone.CorpusCache = (*CorpusStore)(nil)

// CorpusFile is the database file name inside the data directory.
const CorpusFile = "law_of_one_cache.db"

// schemaVersion is bumped whenever the tables change; older files are
// reported as corrupt and rebuilt.
const schemaVersion = "1"

// CorpusStore implements lawofone.CorpusCache with one SQLite file. Each
// Save writes a fresh database next to the target and renames it over.
type CorpusStore struct {
	path string
}

// NewCorpusStore creates a store keeping its database in dir.
func NewCorpusStore(dir string) *CorpusStore {
	return &CorpusStore{path: filepath.Join(dir, CorpusFile)}
}

// Path returns the database file path.
func (s *CorpusStore) Path() string {
	return s.path
}

// Load reads the whole corpus from the database.
func (s *CorpusStore) Load(ctx context.Context) (*lawofone.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, lawofone.Errorf(lawofone.ENOTFOUND, "no database at %s", s.path)
	}

	db := NewReadOnlyDB(s.path)
	if err := db.Open(); err != nil {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "open cache: %v", err)
	}
	defer db.Close()

	corpus, err := readCorpus(ctx, db)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "read cache: %v", err)
	}
	if !corpus.Valid() {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "cache holds an incomplete corpus")
	}
	return corpus, nil
}

// Save replaces the database with corpus.
func (s *CorpusStore) Save(ctx context.Context, corpus *lawofone.Corpus) (err error) {
	if corpus == nil {
		return lawofone.Errorf(lawofone.EINVALID, "corpus required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	db := NewDB(tmp)
	if err := db.Open(); err != nil {
		return err
	}
	if err := writeCorpus(ctx, db, corpus); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func writeCorpus(ctx context.Context, db *DB, corpus *lawofone.Corpus) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"schema_version": schemaVersion,
		"build_id":       corpus.BuildID,
		"built_at":       corpus.BuiltAt.UTC().Format(time.RFC3339Nano),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return err
		}
	}

	for _, id := range corpus.SessionIDs() {
		session := corpus.Sessions[id]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, title, url) VALUES (?, ?, ?)
		`, id, session.Title, session.URL); err != nil {
			return err
		}
		for i, pair := range session.Pairs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO qa_pairs (session_id, ordinal, id, question, answer)
				VALUES (?, ?, ?, ?, ?)
			`, id, i, pair.ID, pair.Question, pair.Answer); err != nil {
				return err
			}
		}
	}

	for _, id := range corpus.CategoryIDs() {
		cat := corpus.Categories[id]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, url) VALUES (?, ?, ?)
		`, id, cat.Name, cat.URL); err != nil {
			return err
		}
		for i, q := range cat.Questions {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO questions (category_id, position, id, text, url, session_id, answer)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, id, i, q.ID, q.Text, q.URL, q.SessionID, q.Answer); err != nil {
				return err
			}
		}
	}

	for _, key := range corpus.SectionKeys() {
		section := corpus.Sections[key]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sections (key, title) VALUES (?, ?)
		`, key, section.Title); err != nil {
			return err
		}
		for p, page := range section.Pages {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO pages (section_key, position, url, title) VALUES (?, ?, ?, ?)
			`, key, p, page.URL, page.Title); err != nil {
				return err
			}
			for i, item := range page.Items {
				var link lawofone.Link
				if item.Link != nil {
					link = *item.Link
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO content_items (section_key, page_position, position, kind, text, tag, link_text, link_url, link_preview, link_pdf)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				`, key, p, i, int(item.Kind), item.Text, item.Tag, link.Text, link.URL, link.Preview, link.PDF); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

func readCorpus(ctx context.Context, db *DB) (*lawofone.Corpus, error) {
	corpus := lawofone.NewCorpus()

	meta := make(map[string]string)
	err := eachRow(ctx, db, `SELECT key, value FROM meta`, func(rows *sql.Rows) error {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		meta[key] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	if meta["schema_version"] != schemaVersion {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "schema version %q, want %q", meta["schema_version"], schemaVersion)
	}
	corpus.BuildID = meta["build_id"]
	builtAt, err := time.Parse(time.RFC3339Nano, meta["built_at"])
	if err != nil {
		return nil, fmt.Errorf("built_at: %w", err)
	}
	corpus.BuiltAt = builtAt

	if err := readSessions(ctx, db, corpus); err != nil {
		return nil, err
	}
	if err := readCategories(ctx, db, corpus); err != nil {
		return nil, err
	}
	if err := readSections(ctx, db, corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}

func readSessions(ctx context.Context, db *DB, corpus *lawofone.Corpus) error {
	err := eachRow(ctx, db, `SELECT id, title, url FROM sessions`, func(rows *sql.Rows) error {
		var s lawofone.Session
		if err := rows.Scan(&s.ID, &s.Title, &s.URL); err != nil {
			return err
		}
		corpus.Sessions[s.ID] = &s
		return nil
	})
	if err != nil {
		return err
	}

	return eachRow(ctx, db, `
		SELECT session_id, id, question, answer FROM qa_pairs ORDER BY session_id, ordinal
	`, func(rows *sql.Rows) error {
		var sessionID string
		var pair lawofone.QAPair
		if err := rows.Scan(&sessionID, &pair.ID, &pair.Question, &pair.Answer); err != nil {
			return err
		}
		session, ok := corpus.Sessions[sessionID]
		if !ok {
			return lawofone.Errorf(lawofone.ECORRUPT, "pair %s has no session", pair.ID)
		}
		session.Pairs = append(session.Pairs, &pair)
		return nil
	})
}

func readCategories(ctx context.Context, db *DB, corpus *lawofone.Corpus) error {
	err := eachRow(ctx, db, `SELECT id, name, url FROM categories`, func(rows *sql.Rows) error {
		var c lawofone.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.URL); err != nil {
			return err
		}
		corpus.Categories[c.ID] = &c
		return nil
	})
	if err != nil {
		return err
	}

	return eachRow(ctx, db, `
		SELECT category_id, id, text, url, session_id, answer
		FROM questions
		ORDER BY category_id, position
	`, func(rows *sql.Rows) error {
		var categoryID string
		var q lawofone.Question
		if err := rows.Scan(&categoryID, &q.ID, &q.Text, &q.URL, &q.SessionID, &q.Answer); err != nil {
			return err
		}
		cat, ok := corpus.Categories[categoryID]
		if !ok {
			return lawofone.Errorf(lawofone.ECORRUPT, "question %s has no category", q.ID)
		}
		cat.Questions = append(cat.Questions, &q)
		return nil
	})
}

func readSections(ctx context.Context, db *DB, corpus *lawofone.Corpus) error {
	err := eachRow(ctx, db, `SELECT key, title FROM sections`, func(rows *sql.Rows) error {
		var s lawofone.ArticleSection
		if err := rows.Scan(&s.Key, &s.Title); err != nil {
			return err
		}
		corpus.Sections[s.Key] = &s
		return nil
	})
	if err != nil {
		return err
	}

	type pageKey struct {
		section  string
		position int
	}
	pages := make(map[pageKey]*lawofone.Page)

	err = eachRow(ctx, db, `
		SELECT section_key, position, url, title FROM pages ORDER BY section_key, position
	`, func(rows *sql.Rows) error {
		var key pageKey
		var page lawofone.Page
		if err := rows.Scan(&key.section, &key.position, &page.URL, &page.Title); err != nil {
			return err
		}
		section, ok := corpus.Sections[key.section]
		if !ok {
			return lawofone.Errorf(lawofone.ECORRUPT, "page %s has no section", page.URL)
		}
		section.Pages = append(section.Pages, &page)
		pages[key] = &page
		return nil
	})
	if err != nil {
		return err
	}

	return eachRow(ctx, db, `
		SELECT section_key, page_position, kind, text, tag, link_text, link_url, link_preview, link_pdf
		FROM content_items
		ORDER BY section_key, page_position, position
	`, func(rows *sql.Rows) error {
		var key pageKey
		var kind int
		var item lawofone.ContentItem
		var link lawofone.Link
		if err := rows.Scan(&key.section, &key.position, &kind, &item.Text, &item.Tag,
			&link.Text, &link.URL, &link.Preview, &link.PDF); err != nil {
			return err
		}
		page, ok := pages[key]
		if !ok {
			return lawofone.Errorf(lawofone.ECORRUPT, "content item has no page")
		}
		item.Kind = lawofone.ContentKind(kind)
		if item.Kind == lawofone.ContentLink {
			item.Link = &link
		}
		page.Items = append(page.Items, item)
		return nil
	})
}

// eachRow runs fn for every row of query.
func eachRow(ctx context.Context, db *DB, query string, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
