package app

import (
	"os"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"

	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by the CLI, e.g.
// DESIGNLIB_ROOT or DESIGNLIB_S3_BUCKET.
const EnvPrefix = "DESIGNLIB"

// Store backends.
const (
	StoreLocal     = "local"
	StoreS3        = "s3"
	StoreJetStream = "jetstream"
)

var repoPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Config holds the application configuration loaded from flags, the
// environment, .env files and the config file.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// ConfigFile is the file actually read, if any.
	ConfigFile string

	// Catalog
	Root               string
	Codec              string
	ResetCorruptLedger bool

	// File store
	Store       string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3AccessKey string
	S3SecretKey string
	NATSURL     string
	NATSBucket  string

	// Mirror
	GitHubToken   string
	GitHubRepo    string
	GitHubBranch  string
	GitHubPath    string
	GitHubAPIURL  string
	MirrorTimeout time.Duration

	// Server
	ServerHost     string
	ServerPort     int
	CORSOrigins    []string
	MaxUploadBytes int64

	// Logging
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables (DESIGNLIB_*, plus GITHUB_TOKEN)
//  3. .env.local, then .env
//  4. Config file (explicit path, else ~/.designlib.yaml or ./.designlib.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github_token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, errors.NewConfigError("config", "bind github_token", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".designlib")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "read config file", err)
			}
		}
	}

	config := &Config{
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),

		Root:               v.GetString("root"),
		Codec:              strings.ToLower(v.GetString("codec")),
		ResetCorruptLedger: v.GetBool("reset_corrupt_ledger"),

		Store:       strings.ToLower(v.GetString("store")),
		S3Bucket:    v.GetString("s3_bucket"),
		S3Region:    v.GetString("s3_region"),
		S3Endpoint:  v.GetString("s3_endpoint"),
		S3Prefix:    v.GetString("s3_prefix"),
		S3AccessKey: v.GetString("s3_access_key"),
		S3SecretKey: v.GetString("s3_secret_key"),
		NATSURL:     v.GetString("nats_url"),
		NATSBucket:  v.GetString("nats_bucket"),

		GitHubToken:   v.GetString("github_token"),
		GitHubRepo:    v.GetString("github_repo"),
		GitHubBranch:  v.GetString("github_branch"),
		GitHubPath:    v.GetString("github_path"),
		GitHubAPIURL:  v.GetString("github_api_url"),
		MirrorTimeout: v.GetDuration("mirror_timeout"),

		ServerHost:     v.GetString("server_host"),
		ServerPort:     v.GetInt("server_port"),
		CORSOrigins:    splitList(v.GetStringSlice("cors_origins")),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", constants.DefaultRoot)
	v.SetDefault("codec", string(category.PolicyPrefix))
	v.SetDefault("store", StoreLocal)
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("nats_url", nats.DefaultURL)
	v.SetDefault("github_branch", constants.DefaultGitHubBranch)
	v.SetDefault("github_path", constants.DefaultMirrorPath)
	v.SetDefault("github_api_url", constants.DefaultGitHubAPIURL)
	v.SetDefault("mirror_timeout", constants.RemoteTimeout)
	v.SetDefault("server_host", constants.DefaultServerHost)
	v.SetDefault("server_port", constants.DefaultServerPort)
	v.SetDefault("max_upload_bytes", constants.DefaultMaxUploadBytes)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks enumerations and the settings each backend requires.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Codec, validation.In(string(category.PolicyPrefix), string(category.PolicySideTable)).
			Error("must be prefix or sidetable")),
		validation.Field(&c.Store, validation.In(StoreLocal, StoreS3, StoreJetStream).
			Error("must be local, s3 or jetstream")),
		validation.Field(&c.S3Bucket, validation.When(c.Store == StoreS3, validation.Required)),
		validation.Field(&c.NATSURL, validation.When(c.Store == StoreJetStream, validation.Required)),
		validation.Field(&c.NATSBucket, validation.When(c.Store == StoreJetStream, validation.Required)),
		validation.Field(&c.GitHubRepo, validation.Match(repoPattern).Error("must be owner/name")),
		validation.Field(&c.GitHubPath, validation.When(c.GitHubRepo != "", validation.Required)),
		validation.Field(&c.MirrorTimeout, validation.Min(time.Millisecond)),
		validation.Field(&c.ServerPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(0))),
		validation.Field(&c.Format, validation.In("table", "json", "yaml").Error("must be table, json or yaml")),
	)
	if err != nil {
		return errors.NewConfigError("config", err.Error(), err)
	}
	return nil
}

// MirrorEnabled reports whether a GitHub mirror is configured.
func (c *Config) MirrorEnabled() bool {
	return c.GitHubRepo != ""
}

// UpdateFromFlags applies parsed global flags over loaded values. Empty
// strings leave the loaded value in place.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, root string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = strings.ToLower(format)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if root != "" {
		c.Root = root
	}
}

// loadEnvFiles loads .env.local, then .env. godotenv never overrides a
// variable that is already set, so .env.local wins over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
