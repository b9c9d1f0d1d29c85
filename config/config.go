package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database"
	snapvaulthttp "github.com/sagarc03/snapvault/http"
	"github.com/sagarc03/snapvault/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for snapvault.
type Config struct {
	Env      string                   `mapstructure:"env" validate:"oneof=dev development prod production"`
	Server   ServerConfig             `mapstructure:"server"`
	Service  ServiceConfig            `mapstructure:"service"`
	Database database.Config          `mapstructure:"database"`
	Storage  StorageConfig            `mapstructure:"storage"`
	Identity IdentityConfig           `mapstructure:"identity"`
	CORS     snapvaulthttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig                `mapstructure:"log"`
}

// IsProd reports whether the config targets a production deployment.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	// PublicURL is the externally reachable base URL used in presigned
	// URLs of the filesystem store.
	PublicURL     string `mapstructure:"public_url" validate:"required,url"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=0"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	CredentialTTL int `mapstructure:"credential_ttl" validate:"min=1,max=604800"` // seconds
}

// TTL returns the credential lifetime as a duration.
func (s ServiceConfig) TTL() time.Duration {
	return time.Duration(s.CredentialTTL) * time.Second
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	Type       string            `mapstructure:"type" validate:"required,oneof=filesystem s3 minio"`
	Buckets    snapvault.Buckets `mapstructure:"buckets"`
	Filesystem FilesystemConfig  `mapstructure:"filesystem"`
	S3         S3Config          `mapstructure:"s3"`
	Minio      MinioConfig       `mapstructure:"minio"`
}

// FilesystemConfig configures the local object store and the keys that
// sign its presigned URLs.
type FilesystemConfig struct {
	Path    string                `mapstructure:"path" validate:"required"`
	Region  string                `mapstructure:"region" validate:"required"`
	Service string                `mapstructure:"service" validate:"required"`
	Keys    keybackend.KeysConfig `mapstructure:"keys"`
}

type S3Config struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// IdentityConfig selects how the caller identity is read from requests.
type IdentityConfig struct {
	Mode   string    `mapstructure:"mode" validate:"required,oneof=header jwt"`
	Header string    `mapstructure:"header"`
	JWT    JWTConfig `mapstructure:"jwt"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-type": "storage.type",
	"storage-path": "storage.filesystem.path",
	"port":         "server.port",
	"public-url":   "server.public_url",
	"identity":     "identity.mode",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.public_url", "http://localhost:5708")
	v.SetDefault("server.max_upload_size", snapvault.MaxFileSize)

	v.SetDefault("service.credential_ttl", int(snapvault.DefaultCredentialTTL/time.Second))

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "snapvault.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.tables.photos", "snapvault_photos")
	v.SetDefault("database.dynamodb.region", "us-east-1")
	v.SetDefault("database.mongo.database", "snapvault")

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.buckets.originals", "photos-originals")
	v.SetDefault("storage.buckets.edited", "photos-edited")
	v.SetDefault("storage.filesystem.path", "./data")
	v.SetDefault("storage.filesystem.region", "us-east-1")
	v.SetDefault("storage.filesystem.service", "s3")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.minio.region", "us-east-1")

	v.SetDefault("identity.mode", "header")
	v.SetDefault("identity.header", "X-User-Id")

	v.SetDefault("log.level", "")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SNAPVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// validate checks the rules that span several fields.
func (c *Config) validate() error {
	if err := c.Database.Tables.Validate(); err != nil {
		return err
	}

	if c.Database.Type == "mongo" && c.Database.Mongo.Database == "" {
		return errors.New("database.mongo.database is required for mongo")
	}

	if c.Storage.Buckets.Originals == c.Storage.Buckets.Edited {
		return fmt.Errorf("storage buckets must differ: %s", c.Storage.Buckets.Originals)
	}

	if c.Storage.Type == "minio" && c.Storage.Minio.Endpoint == "" {
		return errors.New("storage.minio.endpoint is required for minio")
	}

	if c.Identity.Mode == "jwt" && c.Identity.JWT.Secret == "" {
		return errors.New("identity.jwt.secret is required for jwt mode")
	}

	return nil
}
