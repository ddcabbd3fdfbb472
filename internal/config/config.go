// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// EnvConfigJSON is the environment variable holding a JSON override of the config.
const EnvConfigJSON = "STOREHUB_CONFIG_JSON"

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		jsonConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	jsonConfigEnv = os.Getenv(EnvConfigJSON)

	if jsonConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, jsonConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to merge json config from env")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings for storehub.
// Only the parameters the daemon cannot run without are checked here,
// everything else gets a default.
func validate(c Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Auth.Secret == "" {
		return errors.Wrap(ErrEmptyAuthSecret, invalidErrMessage)
	}

	return nil
}
