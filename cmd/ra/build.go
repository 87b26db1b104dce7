package main

import (
	"fmt"

	"github.com/fwojciec/lawofone"
)

// Run executes the build command. It always rebuilds.
func (c *BuildCmd) Run(deps *Dependencies) error {
	deps.Loader.Options = lawofone.BuildOptions{
		SessionLimit:    c.SessionLimit,
		FollowLinks:     !c.NoLinks,
		MaxLinksPerPage: c.MaxLinks,
	}

	corpus, err := deps.Loader.Load(deps.Ctx, true)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}

	stats := corpus.Stats()
	fmt.Fprintf(deps.Stdout, "Built corpus %s: %d sessions, %d categories, %d sections\n",
		corpus.BuildID, stats.Sessions, stats.Categories, stats.Sections)
	if !corpus.Valid() {
		fmt.Fprintln(deps.Stderr, "warning: corpus is incomplete and was not cached")
	}
	return nil
}
