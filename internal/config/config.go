package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	OSMDB    DatabaseConfig
	Log      LogConfig
	Pipeline PipelineConfig
}

// PipelineConfig is the enrichment pipeline's configuration surface, spec
// §6 "Configuration surface (enumerated)".
type PipelineConfig struct {
	BoundingBox             *BoundingBox
	Langs                   []string
	SkipReverse             bool
	ConcurrentBlocks        int
	MaxQueryBatchSize       int
	LogIndexedCountInterval int64
	SearchableDataset       string
	HiddenDataset           string
	DatasetPrefix           string
	Denylist                []DenyPair
	FeedPath                string
	BackendURL              string
	AdminIndex              string
}

// BoundingBox limits source rows to a (lon1,lat1,lon2,lat2) rectangle.
type BoundingBox struct {
	Lon1, Lat1, Lon2, Lat2 float64
}

// DenyPair is one (mapping_key, subclass) pair in the searchability
// deny-list (spec §4.F); kept as plain config data here, converted into
// locator.Pair by cmd/indexer so this package doesn't import the core.
type DenyPair struct {
	MappingKey string
	Subclass   string
}

// DatabaseConfig is a Postgres connection surface; OSMDB is the only
// database cmd/indexer talks to (the planet_osm_* tables loaded by
// osm2pgsql).
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		OSMDB: DatabaseConfig{
			Host:            viper.GetString("OSMDB_HOST"),
			Port:            viper.GetInt("OSMDB_PORT"),
			User:            viper.GetString("OSMDB_USER"),
			Password:        viper.GetString("OSMDB_PASSWORD"),
			DBName:          viper.GetString("OSMDB_NAME"),
			SSLMode:         viper.GetString("OSMDB_SSLMODE"),
			MaxConns:        viper.GetInt("OSMDB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("OSMDB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("OSMDB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("OSMDB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Pipeline: PipelineConfig{
			BoundingBox:             parseBoundingBox(viper.GetString("PIPELINE_BOUNDING_BOX")),
			Langs:                   parseCSV(viper.GetString("PIPELINE_LANGS")),
			SkipReverse:             viper.GetBool("PIPELINE_SKIP_REVERSE"),
			ConcurrentBlocks:        viper.GetInt("PIPELINE_CONCURRENT_BLOCKS"),
			MaxQueryBatchSize:       viper.GetInt("PIPELINE_MAX_QUERY_BATCH_SIZE"),
			LogIndexedCountInterval: viper.GetInt64("PIPELINE_LOG_INDEXED_COUNT_INTERVAL"),
			SearchableDataset:       viper.GetString("PIPELINE_SEARCHABLE_DATASET"),
			HiddenDataset:           viper.GetString("PIPELINE_HIDDEN_DATASET"),
			DatasetPrefix:           viper.GetString("PIPELINE_DATASET_PREFIX"),
			FeedPath:                viper.GetString("PIPELINE_FEED_PATH"),
			BackendURL:              viper.GetString("PIPELINE_BACKEND_URL"),
			AdminIndex:              viper.GetString("PIPELINE_ADMIN_INDEX"),
		},
	}

	// Set default values if not provided
	if cfg.Pipeline.ConcurrentBlocks == 0 {
		cfg.Pipeline.ConcurrentBlocks = runtime.NumCPU()
	}
	if cfg.Pipeline.MaxQueryBatchSize == 0 {
		cfg.Pipeline.MaxQueryBatchSize = 600
	}
	if cfg.Pipeline.LogIndexedCountInterval == 0 {
		cfg.Pipeline.LogIndexedCountInterval = 10000
	}
	if cfg.Pipeline.SearchableDataset == "" {
		cfg.Pipeline.SearchableDataset = "fr"
	}
	if cfg.Pipeline.HiddenDataset == "" {
		cfg.Pipeline.HiddenDataset = cfg.Pipeline.SearchableDataset + "_nosearch"
	}
	if cfg.Pipeline.DatasetPrefix == "" {
		cfg.Pipeline.DatasetPrefix = "munin"
	}
	if len(cfg.Pipeline.Langs) == 0 {
		cfg.Pipeline.Langs = []string{"en"}
	}
	if cfg.Pipeline.BackendURL == "" {
		cfg.Pipeline.BackendURL = "http://localhost:9200"
	}
	if cfg.Pipeline.AdminIndex == "" {
		cfg.Pipeline.AdminIndex = cfg.Pipeline.DatasetPrefix + "_admin"
	}

	return cfg, nil
}

// parseBoundingBox parses "lon1,lat1,lon2,lat2"; an empty or malformed
// string yields no bounding box (unrestricted source rows).
func parseBoundingBox(s string) *BoundingBox {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil
		}
		vals[i] = v
	}
	return &BoundingBox{Lon1: vals[0], Lat1: vals[1], Lon2: vals[2], Lat2: vals[3]}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
