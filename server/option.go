package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/goccy/go-yaml"
)

const DefaultOptionFile = "product-catalog.yaml"

type ServerOption struct {
	Endpoint        string               `yaml:"endpoint" default:"/graphql"`
	ServiceName     string               `yaml:"service_name" default:"product-catalog"`
	Port            int                  `yaml:"port" default:"4000"`
	CatalogFile     string               `yaml:"catalog_file"`
	LogLevel        string               `yaml:"log_level" default:"info"`
	TimeoutDuration string               `yaml:"timeout_duration" default:"5s"`
	ShutdownTimeout string               `yaml:"shutdown_timeout" default:"5s"`
	MaxParallelism  int                  `yaml:"max_parallelism" default:"10"`
	Metrics         MetricsSetting       `yaml:"metrics"`
	Opentelemetry   OpentelemetrySetting `yaml:"opentelemetry"`
}

type MetricsSetting struct {
	Enable bool   `yaml:"enable" default:"true"`
	Path   string `yaml:"path" default:"/metrics"`
}

type OpentelemetrySetting struct {
	TracingSetting OpentelemetryTracingSetting `yaml:"tracing"`
}

type OpentelemetryTracingSetting struct {
	Enable bool `yaml:"enable" default:"false"`
	// EndpointURL overrides OTEL_EXPORTER_OTLP_ENDPOINT when set.
	EndpointURL string `yaml:"endpoint_url"`
}

// DefaultOption returns a ServerOption populated from the default tags.
func DefaultOption() ServerOption {
	var opt ServerOption
	if err := defaults.Set(&opt); err != nil {
		// tags are static, so this only fails on a malformed tag
		panic(err)
	}
	return opt
}

// LoadOption reads a YAML option file over the defaults. When allowMissing is set an absent
// file yields the defaults.
func LoadOption(path string, allowMissing bool) (ServerOption, error) {
	opt := DefaultOption()

	src, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			return opt, nil
		}
		return ServerOption{}, fmt.Errorf("failed to read option file: %w", err)
	}

	// an empty or comment-only document would zero opt
	var doc map[string]any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return ServerOption{}, fmt.Errorf("failed to parse option file %s: %w", path, err)
	}
	if len(doc) == 0 {
		return opt, nil
	}

	if err := yaml.Unmarshal(src, &opt); err != nil {
		return ServerOption{}, fmt.Errorf("failed to parse option file %s: %w", path, err)
	}

	if err := opt.Validate(); err != nil {
		return ServerOption{}, fmt.Errorf("invalid option file %s: %w", path, err)
	}

	return opt, nil
}

func (o ServerOption) Validate() error {
	if o.Endpoint == "" || o.Endpoint[0] != '/' {
		return fmt.Errorf("endpoint must start with '/': %q", o.Endpoint)
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("port out of range: %d", o.Port)
	}
	if _, err := o.Timeout(); err != nil {
		return err
	}
	if _, err := o.Shutdown(); err != nil {
		return err
	}
	if _, err := parseLevel(o.LogLevel); err != nil {
		return err
	}
	return nil
}

// Timeout is the per-request execution timeout. Zero disables it.
func (o ServerOption) Timeout() (time.Duration, error) {
	return parseDuration("timeout_duration", o.TimeoutDuration)
}

func (o ServerOption) Shutdown() (time.Duration, error) {
	return parseDuration("shutdown_timeout", o.ShutdownTimeout)
}

func parseDuration(key, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration %s", key, v)
	}

	return d, nil
}

// WriteDefaultOption writes the default options to path. It refuses to overwrite a file.
func WriteDefaultOption(path string) error {
	src, err := yaml.Marshal(DefaultOption())
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(src); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
