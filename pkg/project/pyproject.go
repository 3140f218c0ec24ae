package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Info describes the Python project being graphed
type Info struct {
	Name       string
	Version    string
	ConfigPath string // Path to pyproject.toml, empty when absent
}

// IsPythonProject checks if a directory contains pyproject.toml
func IsPythonProject(rootPath string) bool {
	_, err := os.Stat(filepath.Join(rootPath, "pyproject.toml"))
	return err == nil
}

// Detect reads pyproject.toml from rootPath. The name comes from [project],
// then [tool.poetry], then the directory name.
func Detect(rootPath string) (*Info, error) {
	info := &Info{Name: DirName(rootPath)}

	configPath := filepath.Join(rootPath, "pyproject.toml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return nil, fmt.Errorf("failed to read pyproject.toml: %w", err)
	}

	var config struct {
		Project struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name    string `toml:"name"`
				Version string `toml:"version"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse pyproject.toml: %w", err)
	}

	info.ConfigPath = configPath
	switch {
	case config.Project.Name != "":
		info.Name = config.Project.Name
		info.Version = config.Project.Version
	case config.Tool.Poetry.Name != "":
		info.Name = config.Tool.Poetry.Name
		info.Version = config.Tool.Poetry.Version
	}

	return info, nil
}

// DirName is the fallback project name: the base of the absolute root path,
// or "project" when that is empty or the filesystem root.
func DirName(rootPath string) string {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		abs = rootPath
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) || strings.TrimSpace(name) == "" {
		return "project"
	}
	return name
}
