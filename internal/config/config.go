package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	ObjectStorage ObjectStorageConfig `toml:"object_storage"`
}

type ServerConfig struct {
	ListenAddr  string   `toml:"listen_addr"`
	RootPath    string   `toml:"root_path"`
	CORSOrigins []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver      string `toml:"driver"`
	User        string `toml:"user"`
	Password    string `toml:"password"`
	Host        string `toml:"host"`
	Port        string `toml:"port"`
	Name        string `toml:"name"`
	SQLitePath  string `toml:"sqlite_path"`
	Echo        bool   `toml:"echo"`
	SkipMigrate bool   `toml:"skip_migrate"`
}

type ObjectStorageConfig struct {
	Bucket             string `toml:"bucket"`
	BucketType         string `toml:"bucket_type"`
	S3Region           string `toml:"s3_region"`
	S3Endpoint         string `toml:"s3_endpoint"`
	GCSCredentialsFile string `toml:"gcs_credentials_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:  "127.0.0.1:8000",
			RootPath:    "",
			CORSOrigins: []string{"http://localhost", "http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Driver:     DriverMySQL,
			Host:       "localhost",
			Port:       "3306",
			SQLitePath: "pantry.db",
		},
		ObjectStorage: ObjectStorageConfig{
			BucketType: string(BucketTypeS3),
		},
	}
}

// Load reads the TOML file at path (a missing file yields the defaults) and
// overlays the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(lookup)
	cfg.ApplyDefaults()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = defaults.Server.ListenAddr
	}
	if c.Server.CORSOrigins == nil {
		c.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if c.Database.Driver == "" {
		c.Database.Driver = defaults.Database.Driver
	}
	if c.Database.Port == "" {
		c.Database.Port = defaults.Database.Port
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = defaults.Database.SQLitePath
	}
	if c.ObjectStorage.BucketType == "" {
		c.ObjectStorage.BucketType = defaults.ObjectStorage.BucketType
	}
}

func (c *Config) Normalize() {
	c.Server.ListenAddr = strings.TrimSpace(c.Server.ListenAddr)
	c.Server.RootPath = normalizeRootPath(c.Server.RootPath)

	origins := make([]string, 0, len(c.Server.CORSOrigins))
	for _, origin := range c.Server.CORSOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		origins = append(origins, strings.TrimSuffix(origin, "/"))
	}
	c.Server.CORSOrigins = origins

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.ObjectStorage.S3Endpoint = strings.TrimSpace(c.ObjectStorage.S3Endpoint)
}

func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen_addr %q: %w", c.Server.ListenAddr, err)
	}

	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return errors.New("database driver must be mysql or sqlite")
	}

	if endpoint := c.ObjectStorage.S3Endpoint; endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || u.Host == "" {
			return fmt.Errorf("s3_endpoint %q must be a valid http(s) URL", endpoint)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("s3_endpoint %q must use http or https", endpoint)
		}
	}
	return nil
}

// DSN renders the MySQL data source name for the configured connection.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

func normalizeRootPath(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}
