// Package storage opens the byte streams tidify reads from and writes to:
// local files, stdin/stdout ("-"), Amazon S3 (s3://bucket/key) and Google
// Cloud Storage (gs://bucket/object).
package storage

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// Scheme identifies the kind of location.
type Scheme string

const (
	// SchemeStdio is "-": stdin when reading, stdout when writing
	SchemeStdio Scheme = "stdio"
	// SchemeFile is a local file path or file:// URL
	SchemeFile Scheme = "file"
	// SchemeS3 is an s3://bucket/key URL
	SchemeS3 Scheme = "s3"
	// SchemeGCS is a gs://bucket/object URL
	SchemeGCS Scheme = "gs"
)

// Location is a parsed input or output path.
type Location struct {
	Scheme Scheme
	// Bucket is set for object storage
	Bucket string
	// Key is the object key for object storage, or the local file path
	Key string
}

// ParseLocation parses "-", a local path, file://path, s3://bucket/key or
// gs://bucket/object.
func ParseLocation(raw string) (Location, error) {
	if raw == "-" {
		return Location{Scheme: SchemeStdio}, nil
	}
	if raw == "" {
		return Location{}, invalidLocation(raw, "empty location")
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Key: raw}, nil
	}

	switch Scheme(strings.ToLower(scheme)) {
	case SchemeFile:
		if rest == "" {
			return Location{}, invalidLocation(raw, "missing file path")
		}
		return Location{Scheme: SchemeFile, Key: rest}, nil
	case SchemeS3, SchemeGCS:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, invalidLocation(raw, "bucket and key are required")
		}
		return Location{Scheme: Scheme(strings.ToLower(scheme)), Bucket: bucket, Key: key}, nil
	default:
		return Location{}, tidyerrors.New(tidyerrors.ErrorTypeCapability, "unsupported storage scheme").
			WithDetail("scheme", scheme)
	}
}

// String renders the location back as a path or URL.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeStdio:
		return "-"
	case SchemeS3, SchemeGCS:
		return string(l.Scheme) + "://" + l.Bucket + "/" + l.Key
	default:
		return l.Key
	}
}

// Ext returns the lower-cased extension of the key, with the dot.
func (l Location) Ext() string {
	if l.Scheme == SchemeFile {
		return strings.ToLower(filepath.Ext(l.Key))
	}
	return strings.ToLower(path.Ext(l.Key))
}

// IsRemote reports whether the location is in object storage.
func (l Location) IsRemote() bool {
	return l.Scheme == SchemeS3 || l.Scheme == SchemeGCS
}

func invalidLocation(raw, msg string) error {
	return tidyerrors.New(tidyerrors.ErrorTypeValidation, msg).WithDetail("location", raw)
}

var contentTypes = map[string]string{
	".csv":     "text/csv",
	".json":    "application/json",
	".jsonl":   "application/x-ndjson",
	".ndjson":  "application/x-ndjson",
	".yaml":    "application/yaml",
	".yml":     "application/yaml",
	".parquet": "application/vnd.apache.parquet",
	".arrow":   "application/vnd.apache.arrow.file",
	".ipc":     "application/vnd.apache.arrow.file",
	".avro":    "application/avro",
	".gz":      "application/gzip",
	".zst":     "application/zstd",
}

// ContentType guesses a MIME type from the location's extension.
func (l Location) ContentType() string {
	if ct, ok := contentTypes[l.Ext()]; ok {
		return ct
	}
	return "application/octet-stream"
}
