package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type adminFlags struct {
	id    string
	email string
}

func newRootCmd() *cobra.Command {
	admin := &adminFlags{}
	cmd := &cobra.Command{
		Use:           "tablemaster",
		Short:         "Tablemaster admin tool: review requests, run migrations, seed data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&admin.id, "admin-id", "cli", "Reviewer id recorded on decisions")
	cmd.PersistentFlags().StringVar(&admin.email, "admin-email", "", "Reviewer email recorded on decisions")

	cmd.AddCommand(newRequestsCmd(admin))
	cmd.AddCommand(newAccessCmd(admin))
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd(admin))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
