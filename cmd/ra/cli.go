package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/lawofone"
	"github.com/fwojciec/lawofone/crawl"
	loslog "github.com/fwojciec/lawofone/slog"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Loader  *crawl.Loader
	DataDir string
	Rebuild bool
}

// Corpus returns the cached corpus, building it on a miss or when a
// rebuild was requested.
func (d *Dependencies) Corpus() (*lawofone.Corpus, error) {
	return d.Loader.Load(d.Ctx, d.Rebuild)
}

// Oracle returns an Oracle searching corpus.
func (d *Dependencies) Oracle(corpus *lawofone.Corpus) *lawofone.Oracle {
	var searcher lawofone.Searcher = lawofone.NewIndex(corpus)
	if d.Logger != nil {
		searcher = loslog.NewLoggingSearcher(searcher, d.Logger)
	}
	return lawofone.NewOracle(searcher)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DataDir  string        `name:"data-dir" type:"path" env:"RA_DATA_DIR" default:"~/.soulcompass" help:"Directory holding the corpus cache"`
	Store    string        `env:"RA_STORE" enum:"file,sqlite" default:"file" help:"Cache backend (file or sqlite)"`
	Timeout  time.Duration `env:"RA_TIMEOUT" default:"10s" help:"Timeout for each HTTP request"`
	LogLevel string        `name:"log-level" env:"RA_LOG_LEVEL" enum:"debug,info,warn,error" default:"warn" help:"Log level"`
	Rebuild  bool          `help:"Ignore the cache and rebuild the corpus"`

	Build  BuildCmd  `cmd:"" help:"Scrape both sites and refresh the cache"`
	Ask    AskCmd    `cmd:"" help:"Answer a question in the Ra persona"`
	Search SearchCmd `cmd:"" help:"Show ranked search results for a query"`
	Chat   ChatCmd   `cmd:"" help:"Answer questions read from standard input"`
	Stats  StatsCmd  `cmd:"" help:"Show corpus statistics"`
	Serve  ServeCmd  `cmd:"" help:"Serve the ask and search API over HTTP"`
	Export ExportCmd `cmd:"" help:"Write sessions and categories as markdown files"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	SessionLimit int  `name:"session-limit" help:"Fetch at most N sessions (0 means all)"`
	NoLinks      bool `name:"no-links" help:"Do not fetch previews for article links"`
	MaxLinks     int  `name:"max-links" default:"5" help:"Preview fetches per article page"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question []string `arg:"" help:"Question to ask"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query []string `arg:"" help:"Search query"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct{}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `env:"RA_ADDR" default:":8080" help:"Listen address"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Out  string `type:"path" help:"Parent directory of the export (defaults to the data directory)"`
	Name string `default:"law-of-one" help:"Name of the export directory"`
}
