package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/lawofone"
	"github.com/fwojciec/lawofone/crawl"
	"github.com/fwojciec/lawofone/fs"
	"github.com/fwojciec/lawofone/goquery"
	"github.com/fwojciec/lawofone/htmltomarkdown"
	lohttp "github.com/fwojciec/lawofone/http"
	"github.com/fwojciec/lawofone/readability"
	loslog "github.com/fwojciec/lawofone/slog"
	"github.com/fwojciec/lawofone/sqlite"
	"github.com/fwojciec/lawofone/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin is read by the chat command.
	Stdin io.Reader

	// Fetcher and Builder override the network stack. Set in tests.
	Fetcher lawofone.Fetcher
	Builder lawofone.CorpusBuilder
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Stdin: os.Stdin}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ra"),
		kong.Description("Ask the Law of One material questions from a local cache"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'ra --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cli.LogLevel)
	if err != nil {
		return err
	}
	deps.Logger = logger
	deps.DataDir = cli.DataDir
	deps.Rebuild = cli.Rebuild

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = lohttp.NewFetcher(lohttp.WithTimeout(cli.Timeout))
	}
	fetcher = loslog.NewLoggingFetcher(fetcher, logger)
	defer fetcher.Close()

	builder := m.Builder
	if builder == nil {
		builder = &crawl.Builder{
			Fetcher: fetcher,
			Parser:  goquery.NewParser(crawl.DefaultPrimaryURL),
			Extractor: crawl.ChainExtractor{
				trafilatura.NewExtractor(),
				readability.NewExtractor(),
			},
			Converter: htmltomarkdown.NewConverter(htmltomarkdown.WithPlainLinks()),
			Throttle:  crawl.NewThrottle(nil),
			Logger:    logger,
			Progress:  progressPrinter(stderr),
		}
	}

	deps.Loader = &crawl.Loader{
		Cache:   loslog.NewLoggingCache(openCache(cli.DataDir, cli.Store, logger), logger),
		Builder: builder,
		Logger:  logger,
		Options: lawofone.BuildOptions{FollowLinks: true},
	}

	return kongCtx.Run(deps)
}

// openCache returns the configured store in dataDir. When the directory
// cannot be created the cache is disabled and every run rebuilds.
func openCache(dataDir, store string, logger *slog.Logger) lawofone.CorpusCache {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Warn("data directory unavailable, cache disabled", "dir", dataDir, "error", err)
		return crawl.NopCache{}
	}
	if store == "sqlite" {
		return sqlite.NewCorpusStore(dataDir)
	}
	return fs.NewSnapshotStore(dataDir)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// progressPrinter reports build progress on w.
func progressPrinter(w io.Writer) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		if line := crawl.FormatProgress(event); line != "" {
			fmt.Fprintln(w, line)
		}
	}
}
