// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides the run configuration of simval.
// Configuration is loaded from environment variables with defaults,
// and per-field binning from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/dataset"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/fieldfilter"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

const defaultJobs = 1

// Config holds the complete run configuration.
type Config struct {
	Table           string // Table (tree) to read from both datasets
	NBins           int    // Bin count for fields without their own binning
	FieldConfigPath string // YAML file of per-field binning (optional)
	WeightField     string // Field holding per-record weights (optional)
	Filter          string // Field selection query (optional)
	Jobs            int    // Fields compared in parallel
	Strict          bool   // Fail the run if any field fails

	// Fields is the per-field binning read by LoadFields.
	Fields map[string]FieldBinning

	filter *fieldfilter.Filter
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Table: dataset.DefaultTable,
		NBins: histo.DefaultNBins,
		Jobs:  defaultJobs,
	}
}

// Load reads configuration from environment variables and returns a
// validated Config.
func Load() (Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv applies defaults, then overrides them with SIMVAL_*
// environment variables. The result is not validated.
func FromEnv() Config {
	cfg := Default()
	cfg.Table = GetEnvDefault("SIMVAL_TABLE", cfg.Table)
	cfg.NBins = ParsePositiveEnvInt("SIMVAL_NBINS", cfg.NBins)
	cfg.FieldConfigPath = GetEnvDefault("SIMVAL_FIELD_CONFIG", cfg.FieldConfigPath)
	cfg.WeightField = GetEnvDefault("SIMVAL_WEIGHT_FIELD", cfg.WeightField)
	cfg.Filter = GetEnvDefault("SIMVAL_FILTER", cfg.Filter)
	cfg.Jobs = ParsePositiveEnvInt("SIMVAL_JOBS", cfg.Jobs)
	cfg.Strict = ParseBoolEnv("SIMVAL_STRICT", cfg.Strict)
	return cfg
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Table) == "" {
		errs = append(errs, errors.New("config: table name is required"))
	}
	if c.NBins < 1 {
		errs = append(errs, fmt.Errorf("config: bin count must be positive, got %d", c.NBins))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("config: jobs must be positive, got %d", c.Jobs))
	}
	c.filter = nil
	if c.Filter != "" {
		f, err := fieldfilter.New(c.Filter)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: filter: %w", err))
		}
		c.filter = f
	}
	return errors.Join(errs...)
}

// FieldFilter returns the Filter query as compiled by the last call
// to Validate. It is nil if the query is empty or did not parse.
func (c *Config) FieldFilter() *fieldfilter.Filter {
	return c.filter
}

// LoadFields reads c.FieldConfigPath into c.Fields. It does nothing
// if no path is set.
func (c *Config) LoadFields() error {
	if c.FieldConfigPath == "" {
		return nil
	}
	fields, err := ReadFieldFile(c.FieldConfigPath)
	if err != nil {
		return err
	}
	c.Fields = fields
	return nil
}

// BinSpec returns the binning of field. A field without its own
// binning gets c.NBins bins over an automatic range.
func (c *Config) BinSpec(field string) (histo.BinSpec, error) {
	b, ok := c.Fields[field]
	if !ok {
		spec := histo.DefaultBinSpec()
		spec.NBins = c.NBins
		return spec, nil
	}
	spec, err := b.Spec(c.NBins)
	if err != nil {
		return spec, fmt.Errorf("config: field %s: %w", field, err)
	}
	return spec, nil
}

// cleanEnvValue trims white space and an inline "# comment".
func cleanEnvValue(value string) string {
	cleaned := strings.TrimSpace(value)
	if idx := strings.Index(cleaned, " #"); idx >= 0 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}
	return cleaned
}

// GetEnvDefault returns the cleaned value of key, or fallback if it
// is unset or empty.
func GetEnvDefault(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		if cleaned := cleanEnvValue(value); cleaned != "" {
			return cleaned
		}
	}
	return fallback
}

// ParsePositiveEnvInt returns the positive integer value of key, or
// fallback if it is unset, invalid or not positive.
func ParsePositiveEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	cleaned := cleanEnvValue(value)
	if cleaned == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(cleaned)
	if err != nil {
		log.Printf("config: %s invalid (%q), using fallback %d", key, value, fallback)
		return fallback
	}
	if parsed <= 0 {
		log.Printf("config: %s non-positive (%d), using fallback %d", key, parsed, fallback)
		return fallback
	}
	return parsed
}

// ParseBoolEnv returns the boolean value of key, or fallback if it is
// unset or unrecognised.
func ParseBoolEnv(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	cleaned := cleanEnvValue(value)
	if cleaned == "" {
		return fallback
	}
	switch strings.ToLower(cleaned) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	log.Printf("config: %s has unrecognised boolean value %q, using fallback %v", key, value, fallback)
	return fallback
}
