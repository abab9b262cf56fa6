package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

// Defaults aplicados quando o arquivo de configuração omite os campos.
const (
	DefaultRegion       = "ap-southeast-3"
	DefaultWorkers      = 5
	DefaultJobStorePath = "monitoring-jobs.db"
)

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	applyDefaults(&config)
	return &config, nil
}

// Default devolve uma configuração utilizável sem arquivo.
func Default() *types.Config {
	cfg := &types.Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *types.Config) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.JobStorePath == "" {
		cfg.JobStorePath = DefaultJobStorePath
	}
}
