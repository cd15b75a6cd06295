package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Carscout database",
		Long:  "Opens the configured store and migrates all tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Store.Driver == "sqlite" {
		fmt.Fprintf(out, "Opened %s\n", cfg.Store.Path)
	} else {
		fmt.Fprintf(out, "Connected to %s:%d/%s\n", cfg.Store.Host, cfg.Store.Port, cfg.Store.Database)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	return nil
}
