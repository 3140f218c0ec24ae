package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. MAGPIE_OUTPUT_FORMAT.
const EnvPrefix = "MAGPIE"

// Formats lists the output formats the generator understands.
var Formats = []string{"html", "dot", "mermaid", "json", "sqlite"}

// Config represents magpie.yaml configuration
type Config struct {
	Project ProjectConfig `yaml:"project" mapstructure:"project"`
	Scan    ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Resolve ResolveConfig `yaml:"resolve" mapstructure:"resolve"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ProjectConfig holds project metadata
type ProjectConfig struct {
	// Title overrides the page title; empty means the detected project name.
	Title string `yaml:"title" mapstructure:"title"`
}

// ScanConfig controls which files are discovered and parsed
type ScanConfig struct {
	Extensions       []string `yaml:"extensions" mapstructure:"extensions"`
	IgnoreDirs       []string `yaml:"ignore_dirs" mapstructure:"ignore_dirs"`
	RootIgnoreDirs   []string `yaml:"root_ignore_dirs" mapstructure:"root_ignore_dirs"`
	IgnorePatterns   []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"`
	IncludeHidden    bool     `yaml:"include_hidden" mapstructure:"include_hidden"`
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
	Workers          int      `yaml:"workers" mapstructure:"workers"`
	MaxFileSize      int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
}

// ResolveConfig controls how module names map onto files
type ResolveConfig struct {
	// Packages lets `import pkg` resolve to pkg/__init__.py.
	Packages bool `yaml:"packages" mapstructure:"packages"`
}

// OutputConfig defines output settings
type OutputConfig struct {
	// Path is the output file; empty means import_graph plus the format's extension.
	Path              string `yaml:"path" mapstructure:"path"`
	Format            string `yaml:"format" mapstructure:"format"`
	Height            string `yaml:"height" mapstructure:"height"`
	Width             string `yaml:"width" mapstructure:"width"`
	NodeColor         string `yaml:"node_color" mapstructure:"node_color"`
	ModuleEdgeColor   string `yaml:"module_edge_color" mapstructure:"module_edge_color"`
	FunctionEdgeColor string `yaml:"function_edge_color" mapstructure:"function_edge_color"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:       []string{".py"},
			IgnoreDirs:       append([]string(nil), filesystem.DefaultIgnoreDirs...),
			RootIgnoreDirs:   append([]string(nil), filesystem.DefaultRootIgnoreDirs...),
			IgnorePatterns:   []string{},
			RespectGitignore: true,
			Workers:          1,
			MaxFileSize:      10 * 1024 * 1024,
		},
		Resolve: ResolveConfig{
			Packages: true,
		},
		Output: OutputConfig{
			Format:            "html",
			Height:            "750px",
			Width:             "100%",
			NodeColor:         "skyblue",
			ModuleEdgeColor:   "gray",
			FunctionEdgeColor: "red",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file and MAGPIE_* environment
// variables. A missing file yields the defaults (still subject to env).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("checking config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.title", d.Project.Title)

	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("scan.ignore_dirs", d.Scan.IgnoreDirs)
	v.SetDefault("scan.root_ignore_dirs", d.Scan.RootIgnoreDirs)
	v.SetDefault("scan.ignore_patterns", d.Scan.IgnorePatterns)
	v.SetDefault("scan.include_hidden", d.Scan.IncludeHidden)
	v.SetDefault("scan.respect_gitignore", d.Scan.RespectGitignore)
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("scan.max_file_size", d.Scan.MaxFileSize)

	v.SetDefault("resolve.packages", d.Resolve.Packages)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.height", d.Output.Height)
	v.SetDefault("output.width", d.Output.Width)
	v.SetDefault("output.node_color", d.Output.NodeColor)
	v.SetDefault("output.module_edge_color", d.Output.ModuleEdgeColor)
	v.SetDefault("output.function_edge_color", d.Output.FunctionEdgeColor)

	v.SetDefault("log.level", d.Log.Level)
}

// Normalize lower-cases the format and gives every extension a leading dot.
func (c *Config) Normalize() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))

	exts := make([]string, 0, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Scan.Extensions = exts
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.Scan.Extensions) == 0 {
		return fmt.Errorf("scan.extensions must list at least one extension")
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", c.Scan.Workers)
	}
	if c.Scan.MaxFileSize <= 0 {
		return fmt.Errorf("scan.max_file_size must be positive, got %d", c.Scan.MaxFileSize)
	}
	if !IsFormat(c.Output.Format) {
		return fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(Formats, ", "))
	}
	return nil
}

// IsFormat reports whether name is a supported output format.
func IsFormat(name string) bool {
	for _, f := range Formats {
		if f == name {
			return true
		}
	}
	return false
}

// SaveConfig writes configuration to a YAML file
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
