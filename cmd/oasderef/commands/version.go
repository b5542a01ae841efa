package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasderef"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("oasderef version %s\n", oasderef.Version())
		},
	}
}
