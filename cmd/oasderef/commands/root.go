// Package commands implements the oasderef command line.
package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oasderef",
		Short: "Dereference OpenAPI 3.x documents",
		Long: `oasderef replaces every $ref of an OpenAPI 3.x document with a copy of its
target, flattens allOf compositions and fills Example values from their
externalValue. Failures are reported per node and never stop the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDerefCmd(), newMCPCmd(), newVersionCmd())
	return root
}

// Execute runs the command line against os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
