package lawofone

import "context"

// Fetcher performs HTTP GET requests against the remote sites.
type Fetcher interface {
	// Fetch retrieves the document at url. HTTP-level failures (4xx, 5xx)
	// are reported through status with a nil error; a non-nil error means
	// the request never completed (DNS, timeout, refused connection) and
	// carries the ETRANSPORT code.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (status int, body string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// Throttle bounds the request rate of the build loops.
type Throttle interface {
	// Wait blocks until the named loop may issue its next request.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, loop string) error
}

// Loop names used for pacing build requests.
const (
	LoopCategories = "categories"
	LoopSessions   = "sessions"
	LoopSections   = "sections"
	LoopLinks      = "links"
)
