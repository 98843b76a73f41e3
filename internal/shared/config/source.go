package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"skincare-backend/internal/shared/telemetry"
)

// source resolves keys from the environment first, then the optional YAML
// file. The file is a flat mapping of the same keys the environment uses.
type source struct {
	file map[string]string
}

func newSource(path string) source {
	if strings.TrimSpace(path) == "" {
		return source{}
	}
	values, err := readConfigFile(path)
	if err != nil {
		telemetry.Warn("config.file_failed", map[string]any{"path": path, "error": err.Error()})
		return source{}
	}
	return source{file: values}
}

func (s source) get(key, def string) string {
	if val := lookupEnv(key); val != "" {
		return val
	}
	if val, ok := s.file[key]; ok && strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func readConfigFile(path string) (map[string]string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
		default:
			out[strings.ToUpper(k)] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func lookupEnv(key string) string {
	return os.Getenv(key)
}
