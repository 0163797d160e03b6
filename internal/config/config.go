package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mfields/critic/internal/redact"
	"github.com/mfields/critic/internal/review"
)

// ProjectFile is the per-repository overlay, looked up in the working
// directory.
const ProjectFile = ".critic.yml"

// Config represents the critic configuration.
type Config struct {
	Provider       string              `json:"provider" yaml:"provider"`
	Model          string              `json:"model" yaml:"model"`
	Forge          string              `json:"forge" yaml:"forge"`
	Repo           string              `json:"repo,omitempty" yaml:"repo,omitempty"`
	Format         string              `json:"format" yaml:"format"`
	IgnorePatterns []string            `json:"ignorePatterns,omitempty" yaml:"ignore_patterns,omitempty"`
	DocsRoot       string              `json:"docsRoot" yaml:"docs_root"`
	Policy         review.PolicyConfig `json:"policy" yaml:"policy"`
	Privacy        PrivacyConfig       `json:"privacy" yaml:"privacy"`
}

// PrivacyConfig controls prompt redaction behavior.
type PrivacyConfig struct {
	RedactPaths []string `json:"redactPaths,omitempty" yaml:"redact_paths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Forge:    "github",
		Format:   "text",
		DocsRoot: ".",
		Policy:   review.DefaultPolicyConfig(),
		Privacy:  PrivacyConfig{RedactPaths: redact.DefaultPathPatterns},
	}
}

// ConfigDir returns the platform-appropriate config directory for critic.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "critic"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "critic"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "critic"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "critic"), nil
	default:
		return filepath.Join(home, ".config", "critic"), nil
	}
}

// ConfigPath returns the full path to the global config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads the global config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadProjectFile loads the repository overlay from dir. Returns zero
// Config and nil error if the file doesn't exist.
func LoadProjectFile(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", ProjectFile, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", ProjectFile, err)
	}
	return cfg, nil
}

// Save writes the config to the global config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging:
// defaults <- global file <- project file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should
// be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	merge(&cfg, fileCfg)

	projCfg, err := LoadProjectFile(".")
	if err != nil {
		return Config{}, err
	}
	merge(&cfg, projCfg)

	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func merge(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Forge != "" {
		dst.Forge = src.Forge
	}
	if src.Repo != "" {
		dst.Repo = src.Repo
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if len(src.IgnorePatterns) > 0 {
		dst.IgnorePatterns = src.IgnorePatterns
	}
	if src.DocsRoot != "" {
		dst.DocsRoot = src.DocsRoot
	}
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
	mergePolicy(&dst.Policy, src.Policy)
}

func mergePolicy(dst *review.PolicyConfig, src review.PolicyConfig) {
	if src.MinConfidenceBlocker > 0 {
		dst.MinConfidenceBlocker = src.MinConfidenceBlocker
	}
	if src.MinConfidenceImportant > 0 {
		dst.MinConfidenceImportant = src.MinConfidenceImportant
	}
	if src.MinConfidenceQuestion > 0 {
		dst.MinConfidenceQuestion = src.MinConfidenceQuestion
	}
	if src.MinConfidenceNit > 0 {
		dst.MinConfidenceNit = src.MinConfidenceNit
	}
	if src.MinSuggestionLength > 0 {
		dst.MinSuggestionLength = src.MinSuggestionLength
	}
	if src.MaxIssuesPerFile > 0 {
		dst.MaxIssuesPerFile = src.MaxIssuesPerFile
	}
	if src.MaxIssuesTotal > 0 {
		dst.MaxIssuesTotal = src.MaxIssuesTotal
	}
	if src.MaxInline > 0 {
		dst.MaxInline = src.MaxInline
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("CRITIC_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CRITIC_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CRITIC_FORGE"); v != "" {
		cfg.Forge = v
	}
	if v := os.Getenv("CRITIC_REPO"); v != "" {
		cfg.Repo = v
	}
	if v := os.Getenv("CRITIC_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("CRITIC_MAX_ISSUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Policy.MaxIssuesTotal = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["forge"]; ok && v != "" {
		cfg.Forge = v
	}
	if v, ok := overrides["repo"]; ok && v != "" {
		cfg.Repo = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["maxIssues"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Policy.MaxIssuesTotal = n
		}
	}
}

// SetField sets a single config field by key name. Returns error if
// key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "forge":
		cfg.Forge = value
	case "repo":
		cfg.Repo = value
	case "format":
		cfg.Format = value
	case "docsRoot":
		cfg.DocsRoot = value
	case "maxIssuesTotal":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxIssuesTotal must be an integer: %w", err)
		}
		cfg.Policy.MaxIssuesTotal = n
	case "maxIssuesPerFile":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxIssuesPerFile must be an integer: %w", err)
		}
		cfg.Policy.MaxIssuesPerFile = n
	case "maxInline":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxInline must be an integer: %w", err)
		}
		cfg.Policy.MaxInline = n
	case "minSuggestionLength":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("minSuggestionLength must be an integer: %w", err)
		}
		cfg.Policy.MinSuggestionLength = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetField reads a single config field by key name.
func GetField(cfg Config, key string) (string, error) {
	switch key {
	case "provider":
		return cfg.Provider, nil
	case "model":
		return cfg.Model, nil
	case "forge":
		return cfg.Forge, nil
	case "repo":
		return cfg.Repo, nil
	case "format":
		return cfg.Format, nil
	case "docsRoot":
		return cfg.DocsRoot, nil
	case "maxIssuesTotal":
		return strconv.Itoa(cfg.Policy.MaxIssuesTotal), nil
	case "maxIssuesPerFile":
		return strconv.Itoa(cfg.Policy.MaxIssuesPerFile), nil
	case "maxInline":
		return strconv.Itoa(cfg.Policy.MaxInline), nil
	case "minSuggestionLength":
		return strconv.Itoa(cfg.Policy.MinSuggestionLength), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
