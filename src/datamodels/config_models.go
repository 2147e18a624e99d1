package datamodels

// WalkforwardConfig is the top-level service configuration, loaded from YAML
// by the config package.
type WalkforwardConfig struct {
	ServerConfig   ServerConfig    `mapstructure:"server"`
	DatabaseConfig *PostgresConfig `mapstructure:"postgres"`
	StorageConfig  StorageConfig   `mapstructure:"storage"`
	DataConfig     DataConfig      `mapstructure:"data"`
	RunsConfig     RunsConfig      `mapstructure:"runs"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	HealthEndpoint string `mapstructure:"health_endpoint"`
}

type PostgresConfig struct {
	Database string `mapstructure:"database"`
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	Port     int    `mapstructure:"port"`
	SSLMode  string `mapstructure:"ssl_mode"`
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
}

// StorageConfig points at an optional GCS bucket that fetched market data is
// mirrored to.
type StorageConfig struct {
	Bucket     string `mapstructure:"bucket"`
	Region     string `mapstructure:"region"`
	DataPrefix string `mapstructure:"data_prefix"`
}

// DataConfig locates the per-symbol daily price CSVs.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// RunsConfig locates the run manifest and artifact directory.
type RunsConfig struct {
	Dir string `mapstructure:"dir"`
}
