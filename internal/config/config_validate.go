// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/lodestar/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateSources(); err != nil {
		return err
	}

	if err := c.validateProfiles(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	return c.EngineConfig().Validate()
}

// validateSources requires at least one content source.
func (c *Config) validateSources() error {
	if !c.Database.Enabled && c.Catalog.Path == "" {
		return errors.New("no content source: enable DUCKDB_ENABLED or set CATALOG_PATH")
	}
	if c.Database.Enabled && c.Database.Path == "" {
		return errors.New("DUCKDB_PATH is required when DUCKDB_ENABLED=true")
	}
	if c.Database.ImportCatalog && (!c.Database.Enabled || c.Catalog.Path == "") {
		return errors.New("DUCKDB_IMPORT_CATALOG requires DUCKDB_ENABLED=true and CATALOG_PATH")
	}
	return nil
}

// validateProfiles requires a directory for the durable backend.
func (c *Config) validateProfiles() error {
	if c.Profiles.Backend == ProfilesBackendBadger && c.Profiles.Path == "" {
		return errors.New("PROFILES_PATH is required when PROFILES_BACKEND=badger")
	}
	return nil
}

// validateRecommend checks cross-field engine limits.
func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultLimit > c.Recommend.MaxLimit {
		return fmt.Errorf("recommend.default_limit (%d) must not exceed recommend.max_limit (%d)",
			c.Recommend.DefaultLimit, c.Recommend.MaxLimit)
	}
	if c.Recommend.ShortWindow > c.Recommend.LongWindow {
		return fmt.Errorf("recommend.short_window (%v) must not exceed recommend.long_window (%v)",
			c.Recommend.ShortWindow, c.Recommend.LongWindow)
	}
	return nil
}
