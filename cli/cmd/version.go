package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/haksh/pkg"
)

// Version prints the program version.
type Version struct{}

// Run executes the version command.
func (Version) Run(ctx context.Context) error {
	name := pkg.Name
	if ktx := kongContextFrom(ctx); ktx != nil {
		name = ktx.Model.Name
	}

	_, err := fmt.Fprintln(sessionFrom(ctx).Stdout, name, pkg.Version())

	return err
}
