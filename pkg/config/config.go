// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"laptudirm.com/x/autopsy/pkg/analysis"
	"laptudirm.com/x/autopsy/pkg/uci"
)

//go:embed config.yaml
var BaseConfigFile []byte

var ErrNoEngine = errors.New("config: no engine command configured")

// Config is the contents of the configuration file.
type Config struct {
	Engine   uci.EngineConfig  `yaml:"engine"`
	Analysis analysis.Settings `yaml:"analysis"`
	Report   Report            `yaml:"report"`
}

// Report configures what is printed after an analysis.
type Report struct {
	// Top is the number of worst moves reported.
	Top int `yaml:"top"`

	// Debug prints the evaluations of every ply.
	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	var config Config
	if err := yaml.Unmarshal(BaseConfigFile, &config); err != nil {
		panic(err)
	}

	return config
}

// Load reads the configuration at the given path. The default file is
// created on first use. Values missing from the file keep their defaults.
func Load(path string) (Config, error) {
	if path == File {
		TryMkdir(filepath.Dir(path))
		TryCreate(path, BaseConfigFile)
	}

	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return config, config.Validate()
}

func (config Config) Validate() error {
	if config.Engine.Cmd == "" {
		return ErrNoEngine
	}

	if err := config.Analysis.Validate(); err != nil {
		return err
	}

	if config.Report.Top < 0 {
		return fmt.Errorf("config: report top must not be negative, got %d", config.Report.Top)
	}

	return nil
}

// String returns the configuration in YAML.
func (config Config) String() string {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err.Error()
	}

	return string(data)
}
