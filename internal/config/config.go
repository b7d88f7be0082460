package config

import (
	"os"
	"path/filepath"
	"slices"
)

// FileName is the per-directory configuration file.
const FileName = ".datamanager.kdl"

// Scan bounds used when a spreadsheet exposes no cell listing.
const (
	DefaultMaxColumns = 52
	DefaultMaxRows    = 200
	// MaxColumnsLimit is the last two-letter column (ZZ).
	MaxColumnsLimit = 26 + 26*26
)

type Config struct {
	Version      int
	Document     Document
	VarSet       VarSet
	Spreadsheet  Spreadsheet
	CopyOnChange CopyOnChange
	Watch        Watch
	Source       string // Path of the loaded config file, empty when defaults are used
}

type Document struct {
	Path    string // Snapshot file (.json or .toml)
	Profile string // "full" or "legacy"
}

type VarSet struct {
	TypeID             string
	DefaultGroup       string   // Group reported when the host has none
	ExcludedProperties []string // Built-in properties that are never variables
}

type Spreadsheet struct {
	TypeID     string
	MaxColumns int // Brute-force scan width
	MaxRows    int // Brute-force scan height
}

// CopyOnChange locates the containers that hold derived clones.
type CopyOnChange struct {
	GroupName   string
	LabelPrefix string
}

type Watch struct {
	Enabled    bool
	DebounceMs int
}

// DefaultExcludedProperties are host properties present on every VarSet.
func DefaultExcludedProperties() []string {
	return []string{
		"ExpressionEngine",
		"Label",
		"Label2",
		"Visibility",
		"Placement",
		"Group",
		"Material",
		"Proxy",
		"Shape",
		"State",
		"ViewObject",
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:  1,
		Document: Document{Profile: "full"},
		VarSet: VarSet{
			TypeID:             "App::VarSet",
			DefaultGroup:       "Base",
			ExcludedProperties: DefaultExcludedProperties(),
		},
		Spreadsheet: Spreadsheet{
			TypeID:     "Spreadsheet::Sheet",
			MaxColumns: DefaultMaxColumns,
			MaxRows:    DefaultMaxRows,
		},
		CopyOnChange: CopyOnChange{
			GroupName:   "CopyOnChangeGroup",
			LabelPrefix: "CopyOnChangeGroup",
		},
		Watch: Watch{DebounceMs: 200},
	}
}

// Load reads an explicit config file, or searches dir when path is empty.
func Load(path, dir string) (*Config, error) {
	if path != "" {
		cfg, err := LoadKDLFile(path)
		if err != nil {
			return nil, err
		}
		return validated(cfg)
	}
	cfg, err := LoadWithRoot(dir)
	if err != nil {
		return nil, err
	}
	return validated(cfg)
}

func validated(cfg *Config) (*Config, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithRoot merges ~/.datamanager.kdl with rootDir/.datamanager.kdl.
// Either may be absent; with neither the defaults are returned.
func LoadWithRoot(rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && filepath.Clean(homeDir) != filepath.Clean(searchDir) {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		return baseConfig, nil
	}
	return Default(), nil
}

// mergeConfigs lets the project config win, but keeps the union of
// excluded properties so a global exclusion cannot be dropped by accident.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	excluded := make([]string, 0, len(base.VarSet.ExcludedProperties)+len(project.VarSet.ExcludedProperties))
	excluded = append(excluded, base.VarSet.ExcludedProperties...)
	for _, name := range project.VarSet.ExcludedProperties {
		if !slices.Contains(excluded, name) {
			excluded = append(excluded, name)
		}
	}
	merged.VarSet.ExcludedProperties = excluded

	if merged.Document.Path == "" {
		merged.Document.Path = base.Document.Path
	}
	return &merged
}
