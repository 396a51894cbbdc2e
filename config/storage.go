package config

import "github.com/spf13/viper"

// Storage attachment storage config struct
type Storage struct {
	// Provider is one of filesystem, minio, s3.
	Provider string
	// Path is the root directory of the filesystem provider.
	Path          string
	ID            string
	Secret        string
	Region        string
	Bucket        string
	Endpoint      string
	UseSSL        bool
	MaxUploadSize int64
}

// getStorageConfig get storage config
func getStorageConfig(v *viper.Viper) *Storage {
	return &Storage{
		Provider:      getStringOrDefault(v, "storage.provider", "filesystem"),
		Path:          getStringOrDefault(v, "storage.path", "./uploads"),
		ID:            v.GetString("storage.id"),
		Secret:        v.GetString("storage.secret"),
		Region:        getStringOrDefault(v, "storage.region", "us-east-1"),
		Bucket:        getStringOrDefault(v, "storage.bucket", "taskhive"),
		Endpoint:      v.GetString("storage.endpoint"),
		UseSSL:        getBoolOrDefault(v, "storage.use_ssl", true),
		MaxUploadSize: getInt64OrDefault(v, "storage.max_upload_size", 10<<20),
	}
}
