// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"
)

// LoadFile reads settings from a YAML or TOML file into cfg, a pointer to a
// check configuration or a Connection. Keys absent from the file keep their current values.
func LoadFile(path string, cfg any) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bs, cfg); err != nil {
			return fmt.Errorf("decode '%s': %v", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(bs, cfg); err != nil {
			return fmt.Errorf("decode '%s': %v", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file extension '%s' (want .yaml, .yml or .toml)", ext)
	}

	return nil
}

// LoadEnvFile exports the variables of a dotenv file.
// Variables already present in the environment are not overridden.
func LoadEnvFile(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	return godotenv.Load(path)
}
