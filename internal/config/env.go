package config

import (
	"strconv"
	"strings"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

const (
	EnvObjectBucket     = "OBJECT_BUCKET"
	EnvObjectBucketType = "OBJECT_BUCKET_TYPE"
)

// ApplyEnv overlays environment overrides onto c. Unset variables leave the
// file value untouched; a variable set to the empty string clears it.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		return
	}

	setString(lookup, "PANTRY_LISTEN_ADDR", &c.Server.ListenAddr)
	// FASTAPI_ROOT_PATH is honoured for existing deployments; ROOT_PATH wins.
	setString(lookup, "FASTAPI_ROOT_PATH", &c.Server.RootPath)
	setString(lookup, "ROOT_PATH", &c.Server.RootPath)
	if v, ok := lookup("CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}

	setString(lookup, "DATABASE_DRIVER", &c.Database.Driver)
	setString(lookup, "MYSQL_USER", &c.Database.User)
	setString(lookup, "MYSQL_PASSWORD", &c.Database.Password)
	setString(lookup, "MYSQL_HOST", &c.Database.Host)
	setString(lookup, "MYSQL_PORT", &c.Database.Port)
	setString(lookup, "MYSQL_DB", &c.Database.Name)
	setString(lookup, "SQLITE_PATH", &c.Database.SQLitePath)
	setBool(lookup, "DATABASE_ECHO", &c.Database.Echo)
	setBool(lookup, "TESTING", &c.Database.SkipMigrate)

	c.ObjectStorage = c.ObjectStorage.WithEnv(lookup)
	setString(lookup, "S3_REGION", &c.ObjectStorage.S3Region)
	setString(lookup, "S3_ENDPOINT", &c.ObjectStorage.S3Endpoint)
	setString(lookup, "GCS_CREDENTIALS_FILE", &c.ObjectStorage.GCSCredentialsFile)
}

// WithEnv returns a copy of o with the bucket name and bucket type taken from
// the environment when set. It is called on every gateway operation, so the
// backend can change while the process runs.
func (o ObjectStorageConfig) WithEnv(lookup LookupFunc) ObjectStorageConfig {
	if lookup == nil {
		return o
	}
	setString(lookup, EnvObjectBucket, &o.Bucket)
	setString(lookup, EnvObjectBucketType, &o.BucketType)
	return o
}

func setString(lookup LookupFunc, key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setBool(lookup LookupFunc, key string, dst *bool) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return
	}
	*dst = parsed
}
