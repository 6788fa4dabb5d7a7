package config

import (
	"flag"
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration (CLI flags + config file + defaults).
type Config struct {
	Listen   string `yaml:"listen"`
	Registry string `yaml:"registry"` // field registry document path
	KB       string `yaml:"kb"`       // capability knowledge base path

	// DriftTolerance is the relative numeric difference between sources
	// that still counts as agreement. 0 records every difference.
	DriftTolerance float64 `yaml:"drift_tolerance"`
	// MostlyAutomaticThreshold is the SUPPORTED+PARTIAL share required
	// for the mostly-automatic workload label.
	MostlyAutomaticThreshold float64 `yaml:"mostly_automatic_threshold"`

	// internal: path to config file (from CLI flag)
	configFile string
}

// defaults are overlaid last; flags and file values win.
var defaults = Config{
	Listen:                   ":8080",
	Registry:                 "registry.yaml",
	KB:                       "kb.yaml",
	MostlyAutomaticThreshold: 0.8,
}

// Parse reads CLI flags, overlays config file values, then defaults.
// CLI flags take precedence over config file values.
func Parse() *Config {
	c := &Config{}
	flag.StringVar(&c.configFile, "config", "", "Path to config file (YAML)")
	flag.StringVar(&c.Listen, "listen", "", "HTTP listen address")
	flag.StringVar(&c.Registry, "registry", "", "Path to the field registry document")
	flag.StringVar(&c.KB, "kb", "", "Path to the capability knowledge base document")
	flag.Parse()

	if c.configFile != "" {
		if err := c.loadFile(c.configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}

	// Fill anything still unset from defaults.
	if err := mergo.Merge(c, defaults); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying config defaults: %v\n", err)
		os.Exit(1)
	}

	return c
}

// loadFile reads a YAML config file. Unset flag values are zero, so a
// plain merge applies file values only where no flag was given.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := mergo.Merge(c, file); err != nil {
		return fmt.Errorf("overlaying %s: %w", path, err)
	}

	return nil
}
