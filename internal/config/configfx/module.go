package configfx

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/govscout/gov-index/internal/constants"
)

// Config holds the application configuration
type Config struct {
	DBPath      string
	SubgraphURL string
	EmbedURL    string
	Dimension   int
}

// FileConfig is the optional YAML overlay. Values set on the command line
// win over the file; the file wins over built-in defaults.
type FileConfig struct {
	DBPath      string `yaml:"db_path"`
	SubgraphURL string `yaml:"subgraph_url"`
	EmbedURL    string `yaml:"embed_url"`
}

// Params represents the parameters needed to create configuration
type Params struct {
	fx.In

	DBPath      string `name:"dbPath"      optional:"true"`
	SubgraphURL string `name:"subgraphURL" optional:"true"`
	EmbedURL    string `name:"embedURL"    optional:"true"`
	ConfigFile  string `name:"configFile"  optional:"true"`
}

// NewConfig creates a new configuration with defaults
func NewConfig(params Params) (*Config, error) {
	config := &Config{
		DBPath:      params.DBPath,
		SubgraphURL: params.SubgraphURL,
		EmbedURL:    params.EmbedURL,
		Dimension:   constants.VectorDimension,
	}

	if params.ConfigFile != "" {
		file, err := loadFile(params.ConfigFile)
		if err != nil {
			return nil, err
		}
		if config.DBPath == "" {
			config.DBPath = file.DBPath
		}
		if config.SubgraphURL == "" {
			config.SubgraphURL = file.SubgraphURL
		}
		if config.EmbedURL == "" {
			config.EmbedURL = file.EmbedURL
		}
	}

	// Set defaults
	if config.SubgraphURL == "" {
		config.SubgraphURL = constants.DefaultSubgraphURL
	}
	if config.EmbedURL == "" {
		config.EmbedURL = constants.DefaultEmbedURL
	}

	return config, nil
}

func loadFile(path string) (FileConfig, error) {
	var file FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

// Module provides configuration for the application
var Module = fx.Module("config",
	fx.Provide(NewConfig),
)
