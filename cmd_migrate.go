package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gameforge/gameforge/internal/repository/sqlite"
	"github.com/gameforge/gameforge/internal/repository/sqlite/migrations"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if !status {
				db, err := openDB(cmd.Context(), cfg.DatabasePath)
				if err != nil {
					return err
				}
				return db.Close()
			}

			db, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			list, err := migrations.List(cmd.Context(), db.SQLDB)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MIGRATION\tSTATUS\tAPPLIED AT")
			for _, s := range list {
				state, at := "pending", "-"
				if s.Applied {
					state, at = "applied", s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Filename, state, at)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "list migrations without applying them")
	addDBFlag(cmd)
	return cmd
}
