package main

import (
	"github.com/spf13/cobra"

	"github.com/tablemaster/tablemaster/migrations"
	"github.com/tablemaster/tablemaster/pkg/configuration"
	pkgmigrations "github.com/tablemaster/tablemaster/pkg/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			return pkgmigrations.NewRunner(migrations.FS, conf.Logger()).Up(cmd.Context(), conf.Database.Opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			return pkgmigrations.NewRunner(migrations.FS, conf.Logger()).Down(cmd.Context(), conf.Database.Opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied state of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			return pkgmigrations.NewRunner(migrations.FS, conf.Logger()).Status(cmd.Context(), conf.Database.Opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "files",
		Short: "List the embedded migration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := pkgmigrations.NewRunner(migrations.FS, configuration.Use().Logger()).Files()
			if err != nil {
				return err
			}
			return writeJSON(files)
		},
	})
	return cmd
}
