package app

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/agentstation/designlib/pkg/constants"
)

// isolate points HOME at an empty directory so no user config file is read.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

// TestLoadConfig_Defaults verifies the values used when nothing is configured.
func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Root != constants.DefaultRoot {
		t.Errorf("Root = %q, want %q", config.Root, constants.DefaultRoot)
	}
	if config.Codec != "prefix" {
		t.Errorf("Codec = %q, want prefix", config.Codec)
	}
	if config.Store != StoreLocal {
		t.Errorf("Store = %q, want local", config.Store)
	}
	if config.MirrorTimeout != constants.RemoteTimeout {
		t.Errorf("MirrorTimeout = %v, want %v", config.MirrorTimeout, constants.RemoteTimeout)
	}
	if config.ServerPort != constants.DefaultServerPort {
		t.Errorf("ServerPort = %d, want %d", config.ServerPort, constants.DefaultServerPort)
	}
	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %q, want auto", config.LogFormat)
	}
	if config.MirrorEnabled() {
		t.Error("MirrorEnabled() = true without github_repo")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

// TestLoadConfig_EnvironmentVariables verifies DESIGNLIB_* and GITHUB_TOKEN.
func TestLoadConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("DESIGNLIB_ROOT", "/srv/designs")
	t.Setenv("DESIGNLIB_STORE", "S3")
	t.Setenv("DESIGNLIB_S3_BUCKET", "designs")
	t.Setenv("DESIGNLIB_GITHUB_REPO", "acme/designs")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("DESIGNLIB_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DESIGNLIB_MIRROR_TIMEOUT", "3s")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Root != "/srv/designs" {
		t.Errorf("Root = %q", config.Root)
	}
	if config.Store != StoreS3 {
		t.Errorf("Store = %q, want s3", config.Store)
	}
	if config.S3Bucket != "designs" {
		t.Errorf("S3Bucket = %q", config.S3Bucket)
	}
	if config.GitHubToken != "ghp_test" {
		t.Errorf("GitHubToken = %q, want GITHUB_TOKEN value", config.GitHubToken)
	}
	if !config.MirrorEnabled() {
		t.Error("MirrorEnabled() = false with github_repo set")
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(config.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", config.CORSOrigins, want)
	}
	if config.MirrorTimeout != 3*time.Second {
		t.Errorf("MirrorTimeout = %v, want 3s", config.MirrorTimeout)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

// TestLoadConfig_File verifies an explicit config file.
func TestLoadConfig_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "designlib.yaml")
	content := `root: /data/library
codec: sidetable
store: jetstream
nats_bucket: designs
github_repo: acme/designs
cors_origins:
  - https://a.example
  - https://b.example
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
	if config.Root != "/data/library" || config.Codec != "sidetable" || config.Store != StoreJetStream {
		t.Errorf("unexpected config: root=%q codec=%q store=%q", config.Root, config.Codec, config.Store)
	}
	if len(config.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", config.CORSOrigins)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

// TestLoadConfig_MissingFile verifies that an explicit path must exist.
func TestLoadConfig_MissingFile(t *testing.T) {
	isolate(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig() with a missing explicit file should fail")
	}
}

// TestConfig_Validate verifies enumerations and backend requirements.
func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Root:          "/data",
			Codec:         "prefix",
			Store:         StoreLocal,
			GitHubPath:    constants.DefaultMirrorPath,
			MirrorTimeout: time.Second,
			ServerPort:    8080,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown codec", func(c *Config) { c.Codec = "suffix" }, "must be prefix or sidetable"},
		{"unknown store", func(c *Config) { c.Store = "ftp" }, "must be local, s3 or jetstream"},
		{"s3 without bucket", func(c *Config) { c.Store = StoreS3 }, "S3Bucket"},
		{"s3 with bucket", func(c *Config) { c.Store = StoreS3; c.S3Bucket = "b" }, ""},
		{"jetstream without bucket", func(c *Config) { c.Store = StoreJetStream; c.NATSURL = "nats://x" }, "NATSBucket"},
		{"bad repo", func(c *Config) { c.GitHubRepo = "acme" }, "must be owner/name"},
		{"good repo", func(c *Config) { c.GitHubRepo = "acme/designs" }, ""},
		{"bad port", func(c *Config) { c.ServerPort = 70000 }, "ServerPort"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "must be table, json or yaml"},
		{"missing root", func(c *Config) { c.Root = "" }, "Root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_UpdateFromFlags verifies that empty flag values keep loaded ones.
func TestConfig_UpdateFromFlags(t *testing.T) {
	c := &Config{Format: "yaml", Root: "/data", LogLevel: "warn"}
	c.UpdateFromFlags(true, false, true, "", "", "")
	if !c.Verbose || !c.NoColor || c.Quiet {
		t.Errorf("bool flags not applied: %+v", c)
	}
	if c.Format != "yaml" || c.Root != "/data" || c.LogLevel != "warn" {
		t.Errorf("empty flags overwrote loaded values: %+v", c)
	}

	c.UpdateFromFlags(false, false, false, "JSON", "debug", "/other")
	if c.Format != "json" || c.Root != "/other" || c.LogLevel != "debug" {
		t.Errorf("flags not applied: %+v", c)
	}
}
