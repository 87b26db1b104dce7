package lawofone

import "context"

// CorpusCache persists a built corpus between runs.
type CorpusCache interface {
	// Load returns the cached corpus.
	// Returns ENOTFOUND if no snapshot exists and ECORRUPT if the snapshot
	// cannot be read or holds an incomplete corpus (see Corpus.Valid).
	// Callers treat any error as an absent cache.
	Load(ctx context.Context) (*Corpus, error)

	// Save replaces the snapshot with corpus. A concurrent Load sees either
	// the old or the new snapshot, never a partial write.
	Save(ctx context.Context, corpus *Corpus) error
}

// BuildOptions controls the extent of a corpus build.
type BuildOptions struct {
	// SessionLimit caps the number of sessions fetched. Zero means all.
	SessionLimit int

	// FollowLinks enables fetching previews for internal links found on
	// article section pages.
	FollowLinks bool

	// MaxLinksPerPage caps preview fetches per section page.
	// Zero means the builder default.
	MaxLinksPerPage int
}

// CorpusBuilder scrapes the remote sites into a new corpus.
type CorpusBuilder interface {
	// Build runs the full scrape. Failures of individual pages are logged
	// and skipped; only cancellation of ctx returns an error.
	Build(ctx context.Context, opts BuildOptions) (*Corpus, error)
}
