package main

import (
	"fmt"

	"github.com/zulandar/carscout/internal/config"
	"github.com/zulandar/carscout/internal/db"
	"gorm.io/gorm"
)

// connectFromConfig loads the config file and opens the configured store.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}
