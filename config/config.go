// Package config loads the embedded default parameters and merges
// command-line or programmatic overrides on top of them.
package config

import (
	_ "embed"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kataras/golog"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Config holds every tunable of the pipeline. Field names map to the
// keys of default.yaml, which are also the keys accepted on the
// command line as key=value pairs.
type Config struct {
	Question string `yaml:"question"`

	OpenAIModel           string `yaml:"openai_model"`
	OpenAIEmbeddingsModel string `yaml:"openai_embeddings_model"`

	IndexPath    string `yaml:"index_path"`
	DBPath       string `yaml:"db_path"`
	DocumentsDir string `yaml:"documents_dir"`
	ReportPath   string `yaml:"report_path"`
	MappingFile  string `yaml:"mapping_file"`

	ChunkSize     int `yaml:"chunk_size"`
	ChunkOverlap  int `yaml:"chunk_overlap"`
	RetrievalK    int `yaml:"retrieval_k"`
	EntitySearchK int `yaml:"entity_search_k"`
	SQLTopK       int `yaml:"sql_top_k"`
	MaxIterations int `yaml:"max_iterations"`

	RedisAddr string `yaml:"redis_addr"`
	LogLevel  string `yaml:"log_level"`
}

// Default returns the configuration parsed from the embedded
// default.yaml.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	return &cfg, nil
}

// ParseOverrides turns command-line tokens of the form key=value into
// an override map. Malformed tokens are logged and ignored.
func ParseOverrides(args []string) map[string]string {
	overrides := make(map[string]string)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			golog.Warnf("ignored malformed argument: %s", arg)
			continue
		}
		overrides[key] = value
	}
	return overrides
}

// Apply merges overrides on top of the current values. Override keys
// are the yaml key names; values are coerced to the field type. An
// unknown key or an uncoercible value is an error.
func (c *Config) Apply(overrides map[string]string) error {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	fields := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fields[t.Field(i).Tag.Get("yaml")] = v.Field(i)
	}

	for key, value := range overrides {
		field, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown configuration key %q", key)
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Int:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("configuration key %q expects an integer, got %q", key, value)
			}
			field.SetInt(int64(n))
		default:
			return fmt.Errorf("configuration key %q has unsupported type %s", key, field.Kind())
		}
	}
	return nil
}
