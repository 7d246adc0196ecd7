package config

import "strings"

// BucketType names the object storage backend.
type BucketType string

const (
	BucketTypeS3  BucketType = "S3"
	BucketTypeGCS BucketType = "GCS"
)

// ParseBucketType maps a configured value onto a backend. Only "GCS"
// (case-insensitive) selects GCS; everything else, including empty, is S3.
// The result is canonical, so "gcs" is reported as "GCS" by /bucket-type.
func ParseBucketType(raw string) BucketType {
	if strings.EqualFold(strings.TrimSpace(raw), string(BucketTypeGCS)) {
		return BucketTypeGCS
	}
	return BucketTypeS3
}

// Scheme is the URL scheme used in object paths for this backend.
func (t BucketType) Scheme() string {
	if t == BucketTypeGCS {
		return "gs"
	}
	return "s3"
}

// Type is the parsed bucket type of o.
func (o ObjectStorageConfig) Type() BucketType {
	return ParseBucketType(o.BucketType)
}
