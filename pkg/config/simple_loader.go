package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/blueprint/pkg/errors"
)

// Load reads a YAML file, or a TOML file when the extension is .toml, into
// config. Fields absent from the file keep the values config already holds.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read config file").
			WithDetail("path", filePath)
	}

	content := substituteEnvVars(string(data))

	if isTOML(filePath) {
		if err := toml.Unmarshal([]byte(content), config); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse TOML").
				WithDetail("path", filePath)
		}
		return nil
	}

	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail("path", filePath)
	}

	return nil
}

// LoadFile reads a YAML file over the defaults and validates the result.
func LoadFile(filePath string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := Load(filePath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves a configuration to a YAML or TOML file, chosen by extension
func Save(filePath string, config interface{}) error {
	var (
		data []byte
		err  error
	)
	if isTOML(filePath) {
		data, err = toml.Marshal(config)
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal config")
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", filePath)
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Substituted values are not expanded again.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}

func isTOML(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".toml")
}
