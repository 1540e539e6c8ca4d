// =============================================================================
// Ledger Checker - Configuration Module
// =============================================================================
//
// This module handles loading and parsing of configuration files:
//   - Main configuration (config.yaml): directories, logging, rate service
//   - Ledger profiles (configs/*.yaml): how to recognise and read each
//     journal export
//   - Environment overrides (.env or process environment)
//
// CONFIGURATION HIERARCHY:
//   1. Built-in defaults
//   2. config.yaml
//   3. Environment variables LEDGERCHECK_RATES_URL, LEDGERCHECK_LOG_LEVEL
//
// LEDGER PROFILES:
//   When the profiles directory holds no YAML file, a purchases profile and
//   a sales profile are built in, matching file names containing "achat" and
//   "vente".
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override config.yaml.
const (
	EnvRatesURL = "LEDGERCHECK_RATES_URL"
	EnvLogLevel = "LEDGERCHECK_LOG_LEVEL"
)

// =============================================================================
// MAIN CONFIGURATION
// =============================================================================

// MainConfig holds the global settings.
//
// EXAMPLE (config.yaml):
//   input_dir: ./input
//   output_dir: ./output
//   output_name_format: "{original}_corrige_{uuid}.xlsx"
//   max_concurrency: 4
//   rates:
//     base_url: https://api.frankfurter.app
//     timeout: 10s
type MainConfig struct {
	// InputDir is scanned for journal exports.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives corrected workbooks.
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives inputs whose documents all passed.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ConfigsDir holds the ledger profiles.
	ConfigsDir string `yaml:"configs_dir"`

	// LogDir receives one check log per processed file.
	LogDir string `yaml:"log_dir"`

	// LogLevel is the operational log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// OutputNameFormat names the corrected workbook.
	// Placeholders: {original}, {uuid}, {timestamp}, {kind}.
	OutputNameFormat string `yaml:"output_name_format"`

	// MaxConcurrency bounds the number of files checked at once.
	MaxConcurrency int `yaml:"max_concurrency"`

	Rates RatesConfig `yaml:"rates"`
}

// RatesConfig configures the exchange-rate service used for sales.
type RatesConfig struct {
	// BaseURL is the Frankfurter-compatible API root.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds one rate request. Zero keeps the transport default.
	Timeout time.Duration `yaml:"timeout"`
}

// LoadMainConfig loads the main configuration from a YAML file, applies
// defaults and environment overrides, and creates missing directories.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)
	applyEnvOverrides(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultMainConfig returns the configuration used when no file is given.
func DefaultMainConfig() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	applyEnvOverrides(&config)
	return &config
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.ConfigsDir == "" {
		config.ConfigsDir = "./configs"
	}
	if config.LogDir == "" {
		config.LogDir = "./logs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_corrige_{uuid}.xlsx"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Rates.BaseURL == "" {
		config.Rates.BaseURL = "https://api.frankfurter.app"
	}
}

func applyEnvOverrides(config *MainConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRatesURL)); v != "" {
		config.Rates.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.LogLevel = v
	}
}

func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}
	if config.Rates.Timeout < 0 {
		return fmt.Errorf("rates.timeout must not be negative")
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.InputArchiveDir,
		config.ConfigsDir,
		config.LogDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// LEDGER PROFILES
// =============================================================================

// LedgerConfig describes one kind of journal export.
//
// EXAMPLE (configs/achats.yaml):
//   ledger_name: achats
//   kind: purchases
//   file_matching_patterns: ["*achat*"]
//   sheet: ""
//   header_row: 1
//   csv_settings:
//     delimiter: ";"
//     encoding: windows-1252
type LedgerConfig struct {
	// LedgerName identifies the profile in logs.
	LedgerName string `yaml:"ledger_name"`

	// Kind selects the layout and the rules: purchases or sales.
	Kind ledger.Kind `yaml:"kind"`

	// FileMatchingPatterns are globs matched against the lower-cased file
	// name.
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// Sheet is the worksheet to read. Empty selects the first sheet.
	Sheet string `yaml:"sheet"`

	// HeaderRow is the 0-based row of the column names.
	HeaderRow *int `yaml:"header_row"`

	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// CSVSettings configures the reading of CSV exports.
type CSVSettings struct {
	// Delimiter is the field separator. Default ";".
	Delimiter string `yaml:"delimiter"`

	// Encoding is the file's character set: UTF-8, ISO-8859-1,
	// ISO-8859-15 or Windows-1252. Default UTF-8.
	Encoding string `yaml:"encoding"`
}

// Header returns the configured header row.
func (c *LedgerConfig) Header() int {
	if c.HeaderRow == nil {
		return 1
	}
	return *c.HeaderRow
}

// Matches reports whether a file name matches one of the profile patterns.
func (c *LedgerConfig) Matches(fileName string) bool {
	name := strings.ToLower(filepath.Base(fileName))
	for _, p := range c.FileMatchingPatterns {
		if ok, _ := filepath.Match(strings.ToLower(p), name); ok {
			return true
		}
	}
	return false
}

// DefaultLedgerConfigs returns the built-in purchases and sales profiles.
func DefaultLedgerConfigs() map[string]*LedgerConfig {
	return map[string]*LedgerConfig{
		"achats": withLedgerDefaults(&LedgerConfig{
			LedgerName:           "achats",
			Kind:                 ledger.KindPurchases,
			FileMatchingPatterns: []string{"*achat*", "*purchase*"},
		}),
		"ventes": withLedgerDefaults(&LedgerConfig{
			LedgerName:           "ventes",
			Kind:                 ledger.KindSales,
			FileMatchingPatterns: []string{"*vente*", "*sales*"},
		}),
	}
}

// LoadLedgerConfigs loads every *.yaml and *.yml profile in a directory.
// When there is none, the built-in profiles are returned.
func LoadLedgerConfigs(configsDir string) (map[string]*LedgerConfig, error) {
	configs := make(map[string]*LedgerConfig)

	files, err := filepath.Glob(filepath.Join(configsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(configsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := loadLedgerConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		key := config.LedgerName
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			config.LedgerName = key
		}
		if _, dup := configs[key]; dup {
			return nil, fmt.Errorf("duplicate ledger_name %q in %s", key, file)
		}

		configs[key] = config
	}

	if len(configs) == 0 {
		return DefaultLedgerConfigs(), nil
	}

	return configs, nil
}

func loadLedgerConfig(filePath string) (*LedgerConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config LedgerConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	withLedgerDefaults(&config)

	if !config.Kind.Valid() {
		return nil, fmt.Errorf("kind must be %q or %q, got %q", ledger.KindPurchases, ledger.KindSales, config.Kind)
	}
	if config.Header() < 0 {
		return nil, fmt.Errorf("header_row must not be negative")
	}

	return &config, nil
}

func withLedgerDefaults(config *LedgerConfig) *LedgerConfig {
	if config.HeaderRow == nil {
		row := 1
		config.HeaderRow = &row
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ";"
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}
	return config
}

// MatchLedger returns the first profile, by name order, whose patterns match
// the file name.
func MatchLedger(configs map[string]*LedgerConfig, fileName string) (*LedgerConfig, bool) {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if configs[name].Matches(fileName) {
			return configs[name], true
		}
	}
	return nil, false
}

// ForKind returns the first profile, by name order, of the given kind.
func ForKind(configs map[string]*LedgerConfig, kind ledger.Kind) (*LedgerConfig, bool) {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if configs[name].Kind == kind {
			return configs[name], true
		}
	}
	return nil, false
}
