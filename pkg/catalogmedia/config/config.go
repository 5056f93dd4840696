package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
	repomemory "github.com/mercaba/catalog-media/pkg/catalogmedia/repo/memory"
	repopg "github.com/mercaba/catalog-media/pkg/catalogmedia/repo/postgres"
	fsstorage "github.com/mercaba/catalog-media/pkg/catalogmedia/storage/fs"
	memorystorage "github.com/mercaba/catalog-media/pkg/catalogmedia/storage/memory"
	s3storage "github.com/mercaba/catalog-media/pkg/catalogmedia/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on
// top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		UploadsDir:   "./data/uploads",

		PrimaryBackend: "memory",
		StorageBackends: []StorageBackendConfig{
			{
				Name:   "memory",
				Type:   "memory",
				Config: map[string]interface{}{},
			},
		},

		ProbeRetries:  3,
		ProbeDelay:    time.Second,
		RemoteDomains: catalogmedia.DefaultRemoteDomains,
	}
}

// ServerConfig represents server configuration for the catalog media
// service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use

	// Storage configuration
	UploadsDir      string // local uploads dir: static route + fallback store
	PrimaryBackend  string
	FallbackBackend string
	StorageBackends []StorageBackendConfig

	// Existence-check retry policy
	ProbeRetries int
	ProbeDelay   time.Duration

	// Remote-store domains whose external URLs get proxy-rewritten
	RemoteDomains []string

	// Legacy-compatible ownership matching on display name
	DisplayNameOwnership bool
}

// StorageBackendConfig represents configuration for a storage backend
type StorageBackendConfig struct {
	Name   string
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.UploadsDir == "" {
		return errors.New("uploads directory is required")
	}

	if !c.hasBackend(c.PrimaryBackend) {
		return fmt.Errorf("primary backend '%s' not found in configured backends", c.PrimaryBackend)
	}
	if c.FallbackBackend != "" && !c.hasBackend(c.FallbackBackend) {
		return fmt.Errorf("fallback backend '%s' not found in configured backends", c.FallbackBackend)
	}

	return nil
}

func (c *ServerConfig) hasBackend(name string) bool {
	for _, backend := range c.StorageBackends {
		if backend.Name == name {
			return true
		}
	}
	return false
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (catalogmedia.Service, error) {
	var options []catalogmedia.Option

	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, catalogmedia.WithRepository(repo))

	for _, backendConfig := range c.StorageBackends {
		store, err := c.buildStorageBackend(backendConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build storage backend %s: %w", backendConfig.Name, err)
		}
		options = append(options, catalogmedia.WithBlobStore(backendConfig.Name, store))
	}

	options = append(options,
		catalogmedia.WithPrimaryBackend(c.PrimaryBackend),
		catalogmedia.WithProbePolicy(catalogmedia.ProbePolicy{
			Retries: c.ProbeRetries,
			Delay:   c.ProbeDelay,
		}),
		catalogmedia.WithRemoteDomains(c.RemoteDomains...),
	)
	if c.FallbackBackend != "" {
		options = append(options, catalogmedia.WithFallbackBackend(c.FallbackBackend))
	}
	if c.DisplayNameOwnership {
		options = append(options, catalogmedia.WithDisplayNameOwnership())
	}

	return catalogmedia.New(options...)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (catalogmedia.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildStorageBackend creates a BlobStore based on the backend
// configuration
func (c *ServerConfig) buildStorageBackend(config StorageBackendConfig) (catalogmedia.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		fsConfig := fsstorage.Config{
			BaseDir: getString(config.Config, "base_dir", c.UploadsDir),
		}
		return fsstorage.New(fsConfig)

	case "s3":
		s3Config := s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		}
		return s3storage.New(s3Config)

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
