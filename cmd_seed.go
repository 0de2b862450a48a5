package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gameforge/gameforge/internal/domain"
	"github.com/gameforge/gameforge/internal/service"
)

// defaultSeeds are the demo accounts created when no file is given.
var defaultSeeds = []service.SeedUser{
	{Name: "admin", Email: "admin@gameforge.local", Role: domain.RoleAdmin},
	{Name: "player", Email: "player@gameforge.local", Role: domain.RoleUser},
}

func seedCmd() *cobra.Command {
	var (
		file     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo and admin accounts",
		Long: `Create accounts from a JSON file of {"name","email","password","role"}
objects, or the built-in demo accounts when --file is not given. Accounts
whose email already exists are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			seeds, err := loadSeeds(file, password)
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			created, err := newAuthService(cfg, db).SeedUsers(cmd.Context(), seeds)
			if err != nil {
				return err
			}
			fmt.Printf("created %d of %d accounts\n", created, len(seeds))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with accounts to create")
	cmd.Flags().StringVar(&password, "password", "", "password for built-in or password-less accounts (required unless every file entry has one)")
	addDBFlag(cmd)
	return cmd
}

func loadSeeds(file, password string) ([]service.SeedUser, error) {
	var seeds []service.SeedUser
	if file == "" {
		seeds = append(seeds, defaultSeeds...)
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		var entries []struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse seed file: %w", err)
		}
		for _, e := range entries {
			seeds = append(seeds, service.SeedUser{
				Name:     e.Name,
				Email:    e.Email,
				Password: e.Password,
				Role:     domain.Role(e.Role),
			})
		}
	}

	for i := range seeds {
		if seeds[i].Password != "" {
			continue
		}
		if password == "" {
			return nil, fmt.Errorf("account %s has no password; pass --password", seeds[i].Email)
		}
		seeds[i].Password = password
	}
	return seeds, nil
}
