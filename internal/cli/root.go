// Package cli holds the supportd commands and the wiring between
// configuration, storage and the HTTP API.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "supportd",
		Short:         "Support desk backend",
		Long:          `supportd serves the support desk API: tickets, clients, portabilites and their comment threads.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCommand(),
		newPrincipalCommand(),
	)

	return root
}
