// pkg/core/load.go
package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	manifest "github.com/joeydtaylor/steeze-rpc/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadConfig decodes path over manifest.Default, applies environment
// overrides and validates. An empty path yields defaults plus environment.
func LoadConfig(path string) (manifest.Config, error) {
	cfg := manifest.Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return manifest.Config{}, err
		}
		if err := decode(path, b, &cfg); err != nil {
			return manifest.Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *manifest.Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return toml.NewDecoder(bytes.NewReader(b)).DisallowUnknownFields().Decode(cfg)
	}
}
