package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/lawofone"
	"github.com/fwojciec/lawofone/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	corpus, err := deps.Corpus()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}

	out := c.Out
	if out == "" {
		out = deps.DataDir
	}

	n, err := fs.NewExporter(out, c.Name).Export(deps.Ctx, corpus)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lawofone.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d files to %s\n", n, filepath.Join(out, c.Name))
	return nil
}
