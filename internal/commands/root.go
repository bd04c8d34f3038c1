package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monedero-app/monedero/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "monedero",
		Short:   "Local-first personal finance ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(homeFlag, "", "data home directory (default $MONEDERO_HOME or ~/.monedero)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "account", Title: "Account:"},
		&cobra.Group{ID: "ledger", Title: "Transactions:"},
		&cobra.Group{ID: "data", Title: "Data:"},
	)

	for _, c := range []*cobra.Command{
		newRegisterCommand(),
		newLoginCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
	} {
		c.GroupID = "account"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newAddCommand(),
		newDeleteCommand(),
		newListCommand(),
		newSummaryCommand(),
		newWeekCommand(),
		newSeedCommand(),
	} {
		c.GroupID = "ledger"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newInitCommand(),
		newExportCommand(),
		newImportCommand(),
		newLogCommand(),
		newSnapshotCommand(),
		newCheckCommand(),
	} {
		c.GroupID = "data"
		rootCmd.AddCommand(c)
	}

	return rootCmd
}

// Execute runs the CLI and returns the process exit code. Errors whose
// notice was already printed are not repeated.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}
