package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

type Config struct {
	Path              string   `json:"path"`
	Filter            string   `json:"filter"`
	ExcludedFolders   []string `json:"excluded_folders"`
	HashedCSVPath     string   `json:"hashed_csv_path"`
	DuplicatesCSVPath string   `json:"duplicates_csv_path"`
	BatchSize         int      `json:"batch_size"`
	ConcurrencyLevel  int      `json:"concurrency_level"`
	NiceLevel         string   `json:"nice_level"`
	MaxIOPerSecond    int      `json:"max_io_per_second"`
	LogLevel          string   `json:"log_level"`
	ConfigFile        string   `json:"config_file"`
	ConcurrencySet    bool     `json:"-"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Filter:            "*",
		ExcludedFolders:   []string{},
		HashedCSVPath:     "hashedFiles.csv",
		DuplicatesCSVPath: "duplicate_files.csv",
		BatchSize:         1000,
		ConcurrencyLevel:  runtime.NumCPU(),
		NiceLevel:         "medium",
		MaxIOPerSecond:    0,
		LogLevel:          "info",
	}

	path := flag.String("path", "", "Root directory to scan (required).")
	filter := flag.String("filter", cfg.Filter, fmt.Sprintf("Glob applied to file names (default: %s).", cfg.Filter))
	excluded := flag.String("excluded-folders", "", "Comma-separated list of directory prefixes to skip (default: none).")
	hashedCSV := flag.String("hashed-csv", cfg.HashedCSVPath, fmt.Sprintf("Hash ledger output path (default: %s).", cfg.HashedCSVPath))
	duplicatesCSV := flag.String("duplicates-csv", cfg.DuplicatesCSVPath, fmt.Sprintf("Duplicates report output path (default: %s).", cfg.DuplicatesCSVPath))
	batchSize := flag.Int("batch-size", cfg.BatchSize, fmt.Sprintf("Number of files hashed per batch (default: %d).", cfg.BatchSize))
	concurrency := flag.Int("concurrency", cfg.ConcurrencyLevel, fmt.Sprintf("Concurrency level (default: %d).", cfg.ConcurrencyLevel))
	nice := flag.String("nice", cfg.NiceLevel, fmt.Sprintf("Nice level: high, medium, or low (default: %s).", cfg.NiceLevel))
	maxIO := flag.Int("max-io-per-second", cfg.MaxIOPerSecond, "Maximum file enumerations per second (default: 0, unlimited).")
	logLevel := flag.String("log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	configFile := flag.String("config", "", "Path to JSON configuration file (default: none).")

	flag.Usage = displayHelp
	flag.Parse()

	if *configFile != "" {
		cfg.ConfigFile = *configFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "path":
			cfg.Path = *path
		case "filter":
			cfg.Filter = *filter
		case "excluded-folders":
			cfg.ExcludedFolders = parseCommaSeparated(*excluded)
		case "hashed-csv":
			cfg.HashedCSVPath = *hashedCSV
		case "duplicates-csv":
			cfg.DuplicatesCSVPath = *duplicatesCSV
		case "batch-size":
			cfg.BatchSize = *batchSize
		case "concurrency":
			cfg.ConcurrencyLevel = *concurrency
			cfg.ConcurrencySet = true
		case "nice":
			cfg.NiceLevel = *nice
		case "max-io-per-second":
			cfg.MaxIOPerSecond = *maxIO
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	cfg.NiceLevel = strings.ToLower(strings.TrimSpace(cfg.NiceLevel))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.Filter == "" {
		cfg.Filter = "*"
	}
	if cfg.HashedCSVPath == "" {
		cfg.HashedCSVPath = "hashedFiles.csv"
	}
	if cfg.DuplicatesCSVPath == "" {
		cfg.DuplicatesCSVPath = "duplicate_files.csv"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func displayHelp() {
	fmt.Println("dupescan - Duplicate File Finder")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  dupescan -path <dir> [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  dupescan -path \"/data\"")
	fmt.Println("  dupescan -path \"/data\" -filter \"*.txt\" -excluded-folders \"/data/tmp,/data/cache\"")
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	if _, ok := raw["concurrency_level"]; ok {
		cfg.ConcurrencySet = true
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	return nil
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.Path) == "" {
		return fmt.Errorf("a scan path must be specified")
	}
	if _, err := filepath.Match(cfg.Filter, "probe"); err != nil {
		return fmt.Errorf("invalid filter pattern: %s", cfg.Filter)
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if cfg.ConcurrencyLevel <= 0 {
		return fmt.Errorf("concurrency level must be positive")
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.HashedCSVPath == cfg.DuplicatesCSVPath {
		return fmt.Errorf("ledger and duplicates report must be distinct files")
	}
	if cfg.NiceLevel != "high" && cfg.NiceLevel != "medium" && cfg.NiceLevel != "low" {
		return fmt.Errorf("invalid nice level: %s", cfg.NiceLevel)
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	return nil
}

func parseCommaSeparated(input string) []string {
	if input == "" {
		return []string{}
	}
	items := strings.Split(input, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}
