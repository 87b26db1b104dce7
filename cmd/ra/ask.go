package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fwojciec/lawofone"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	corpus, err := deps.Corpus()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, deps.Oracle(corpus).Respond(strings.Join(c.Question, " ")))
	return nil
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	corpus, err := deps.Corpus()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}

	results := deps.Oracle(corpus).Search(strings.Join(c.Query, " "))
	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for i, r := range results {
		switch r := r.(type) {
		case *lawofone.QAResult:
			fmt.Fprintf(deps.Stdout, "%d. [%d] session %s  %s\n   %s\n", i+1, r.Score(), r.SessionID, r.URL, lawofone.Truncate(r.Question, 100))
		case *lawofone.ArticleResult:
			fmt.Fprintf(deps.Stdout, "%d. [%d] %s  %s\n", i+1, r.Score(), r.Title, r.URL)
			for _, s := range r.Snippets {
				fmt.Fprintf(deps.Stdout, "   %s\n", lawofone.Truncate(s, 100))
			}
		}
	}
	return nil
}

// Run executes the chat command. Each line read is answered until EOF or
// a line reading "exit" or "quit".
func (c *ChatCmd) Run(deps *Dependencies) error {
	corpus, err := deps.Corpus()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}
	oracle := deps.Oracle(corpus)

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(deps.Stdout)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		fmt.Fprintf(deps.Stdout, "%s\n\n", oracle.Respond(line))
		if err := deps.Ctx.Err(); err != nil {
			return err
		}
	}
}
