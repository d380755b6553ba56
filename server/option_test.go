package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeOption(t *testing.T, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "product-catalog.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("failed to write option file: %v", err)
	}
	return path
}

func TestDefaultOption(t *testing.T) {
	want := ServerOption{
		Endpoint:        "/graphql",
		ServiceName:     "product-catalog",
		Port:            4000,
		LogLevel:        "info",
		TimeoutDuration: "5s",
		ShutdownTimeout: "5s",
		MaxParallelism:  10,
		Metrics:         MetricsSetting{Enable: true, Path: "/metrics"},
	}

	if d := cmp.Diff(DefaultOption(), want); d != "" {
		t.Fatalf("DefaultOption() diff: %s", d)
	}
}

func TestLoadOption(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    func() ServerOption
		wantErr bool
	}{
		{
			name: "overrides defaults",
			src: `endpoint: /query
port: 8080
catalog_file: ./products.json
log_level: debug
metrics:
  enable: false
opentelemetry:
  tracing:
    enable: true
    endpoint_url: http://localhost:4318
`,
			want: func() ServerOption {
				opt := DefaultOption()
				opt.Endpoint = "/query"
				opt.Port = 8080
				opt.CatalogFile = "./products.json"
				opt.LogLevel = "debug"
				opt.Metrics.Enable = false
				opt.Opentelemetry.TracingSetting = OpentelemetryTracingSetting{
					Enable:      true,
					EndpointURL: "http://localhost:4318",
				}
				return opt
			},
		},
		{
			name: "empty file keeps defaults",
			src:  "",
			want: DefaultOption,
		},
		{
			name: "comment only file keeps defaults",
			src:  "# product-catalog options\n# port: 8080\n",
			want: DefaultOption,
		},
		{
			name: "explicit null document keeps defaults",
			src:  "~\n",
			want: DefaultOption,
		},
		{
			name: "single key keeps other defaults",
			src:  "port: 9000\n",
			want: func() ServerOption {
				opt := DefaultOption()
				opt.Port = 9000
				return opt
			},
		},
		{
			name:    "scalar document",
			src:     "products\n",
			wantErr: true,
		},
		{
			name:    "invalid duration",
			src:     "timeout_duration: soon\n",
			wantErr: true,
		},
		{
			name:    "invalid level",
			src:     "log_level: loud\n",
			wantErr: true,
		},
		{
			name:    "endpoint without slash",
			src:     "endpoint: graphql\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			src:     "port: [1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadOption(writeOption(t, tt.src), false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadOption() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if d := cmp.Diff(got, tt.want()); d != "" {
				t.Fatalf("LoadOption() diff: %s", d)
			}
		})
	}
}

func TestLoadOption_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	got, err := LoadOption(path, true)
	if err != nil {
		t.Fatalf("LoadOption() error = %v", err)
	}
	if d := cmp.Diff(got, DefaultOption()); d != "" {
		t.Fatalf("LoadOption() diff: %s", d)
	}

	if _, err := LoadOption(path, false); err == nil {
		t.Fatal("LoadOption() error = nil, want error for explicit missing file")
	}
}

func TestWriteDefaultOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultOptionFile)

	if err := WriteDefaultOption(path); err != nil {
		t.Fatalf("WriteDefaultOption() error = %v", err)
	}

	got, err := LoadOption(path, false)
	if err != nil {
		t.Fatalf("LoadOption() error = %v", err)
	}
	if d := cmp.Diff(got, DefaultOption()); d != "" {
		t.Fatalf("round trip diff: %s", d)
	}

	if err := WriteDefaultOption(path); err == nil {
		t.Fatal("WriteDefaultOption() error = nil, want error when file exists")
	}
}

func TestServerOption_Durations(t *testing.T) {
	opt := DefaultOption()
	opt.TimeoutDuration = ""
	opt.ShutdownTimeout = "250ms"

	timeout, err := opt.Timeout()
	if err != nil || timeout != 0 {
		t.Fatalf("Timeout() = %v, %v, want 0, nil", timeout, err)
	}

	shutdown, err := opt.Shutdown()
	if err != nil || shutdown != 250*time.Millisecond {
		t.Fatalf("Shutdown() = %v, %v, want 250ms, nil", shutdown, err)
	}

	opt.ShutdownTimeout = "-1s"
	if _, err := opt.Shutdown(); err == nil {
		t.Fatal("Shutdown() error = nil, want error for negative duration")
	}
}
