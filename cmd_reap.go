package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func reapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Delete expired sessions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := newAuthService(cfg, db).Sessions().ReapExpired(cmd.Context())
			if err != nil {
				return fmt.Errorf("reap expired sessions: %w", err)
			}
			fmt.Printf("deleted %d expired sessions\n", n)
			return nil
		},
	}

	addDBFlag(cmd)
	return cmd
}
