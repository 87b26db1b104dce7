package main

import (
	"fmt"

	"github.com/fwojciec/lawofone"
	"github.com/fwojciec/lawofone/echo"
)

// Run executes the serve command. It blocks until the context is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	corpus, err := deps.Corpus()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}

	server := echo.NewServer(deps.Oracle(corpus), corpus.Stats(), deps.Logger)
	fmt.Fprintf(deps.Stdout, "Serving on %s\n", c.Addr)
	return server.Run(deps.Ctx, c.Addr)
}
