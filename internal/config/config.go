package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatasetRef is one known dataset entry in bttctl.yaml. ExpectedImages
// is the documented image count, checked by `btt verify`.
type DatasetRef struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name,omitempty"`
	ExpectedImages int    `yaml:"expected_images,omitempty"`
}

// Config is the in-memory representation of ~/.bttctl/bttctl.yaml.
type Config struct {
	DataRoot  string       `yaml:"data_root"`
	OutputDir string       `yaml:"output_dir,omitempty"`
	Datasets  []DatasetRef `yaml:"datasets,omitempty"`
}

// BTTDir returns the absolute path to ~/.bttctl/.
func BTTDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".bttctl"), nil
}

// ConfigPath returns the absolute path to ~/.bttctl/bttctl.yaml.
func ConfigPath() (string, error) {
	dir, err := BTTDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bttctl.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first btt init:
// the two challenge datasets with their documented image counts.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataRoot:  filepath.Join(home, "BTT_Data"),
		OutputDir: filepath.Join(home, "BTT_Data", "clean"),
		Datasets: []DatasetRef{
			{ID: "852a64c6-4bd3-495f-8ff7-f5cc85e34316", Name: "synthetic-train", ExpectedImages: 497},
			{ID: "8e0a5d2d-3ae0-4ff0-b6ee-2d85f7da4fee", Name: "real-eval", ExpectedImages: 496},
		},
	}, nil
}

// Load reads and parses ~/.bttctl/bttctl.yaml. The BTT_DATA_ROOT
// environment variable (process env first, then ~/.bttctl/.env)
// overrides data_root.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if v, err := GetConfigValue("BTT_DATA_ROOT"); err == nil && v != "" {
		cfg.DataRoot = v
	}
	cfg.DataRoot, err = ExpandPath(cfg.DataRoot)
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(cfg.DataRoot, "clean")
	}
	cfg.OutputDir, err = ExpandPath(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.bttctl/bttctl.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Find resolves an argument that may be a dataset ID or a configured
// short name to the matching DatasetRef. Returns (zero, false) when the
// config does not know the dataset; commands still accept raw IDs, they
// just can't check expectations for them.
func (c *Config) Find(idOrName string) (DatasetRef, bool) {
	for _, d := range c.Datasets {
		if d.ID == idOrName || (d.Name != "" && d.Name == idOrName) {
			return d, true
		}
	}
	return DatasetRef{}, false
}
