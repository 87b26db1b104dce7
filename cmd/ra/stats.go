package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/lawofone"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	corpus, err := deps.Corpus()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}

	s := corpus.Stats()
	fmt.Fprintf(deps.Stdout, "Build:      %s (%s)\n", corpus.BuildID, corpus.BuiltAt.Format(time.RFC3339))
	fmt.Fprintf(deps.Stdout, "Sessions:   %d (%d Q&A pairs)\n", s.Sessions, s.Pairs)
	fmt.Fprintf(deps.Stdout, "Categories: %d (%d questions, %d answered)\n", s.Categories, s.Questions, s.Resolved)
	fmt.Fprintf(deps.Stdout, "Sections:   %d (%d pages, %d links)\n", s.Sections, s.Pages, s.Links)
	return nil
}
