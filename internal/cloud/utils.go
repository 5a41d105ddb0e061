// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	ConfigFileBaseName  = ".env"               // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"              // The file extension for configuration files.
	ConfigSeparator     = "."                  // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "CLIP_CONFIG_PREFIX" // Directory holding the configuration files.
	EnvConfigRuntime    = "CLIP_RUNTIME"       // Runtime context, e.g. "local", "test" or "prod".
	DefaultRuntime      = "local"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadDotEnv copies KEY=VALUE pairs from the given dotenv files (".env" when
// none are given) into the process environment. Variables that are already
// set win, and missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := make([]string, 0, len(files))
	for _, f := range files {
		if fileExists(f) {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// ConfigFiles returns the base and the runtime specific configuration file
// paths derived from the environment.
func ConfigFiles() (base string, runtime string) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}
	env := os.Getenv(EnvConfigRuntime)
	if env == "" {
		env = DefaultRuntime
	}
	base = prefix + ConfigFileBaseName + ConfigFileExtension
	runtime = prefix + ConfigFileBaseName + ConfigSeparator + env + ConfigFileExtension
	return base, runtime
}

// LoadConfig decodes the base configuration file and then the runtime
// specific one into baseConfig, so values in the second file overwrite the
// first. Missing files are skipped; a file that fails to decode is an error.
// Defaults are applied last when baseConfig is a *Config.
func LoadConfig(baseConfig interface{}) error {
	baseFile, runtimeFile := ConfigFiles()

	for _, name := range []string{baseFile, runtimeFile} {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Info("configuration file loaded", "file", name)
	}

	if c, ok := baseConfig.(*Config); ok {
		c.ApplyDefaults()
	}
	return nil
}
