/*
 * Copyright (c) Overlaykit contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

type WalkerConfig struct {
	MaxEntries      int // Safety bound on entries per image
	RecoveryScanKiB int // Forward scan cap for zero-length entries
}

type Config struct {
	Output   string   // Directory extracted files are written under
	Workers  int      // Concurrent extractions in batch mode
	LogLevel string   // zerolog level name
	LogFile  string   // Log destination; empty for pretty stderr
	Walker   WalkerConfig
	Targets  []string // Installer paths for batch mode

	path string
}

func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := new(Config)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	config.path = path
	config.Normalize()
	return config, nil
}

func (config *Config) Normalize() {
	if config.Output == "" {
		config.Output = "."
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
}

func (config *Config) Path() string {
	return config.path
}

func (config *Config) CheckTargets() error {
	if len(config.Targets) == 0 {
		return errors.New("no targets defined in configuration")
	}
	return nil
}
