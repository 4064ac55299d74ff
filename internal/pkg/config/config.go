package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/spf13/viper"
)

const envPrefix = "AIRQ"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Clean     CleanConfig     `mapstructure:"clean"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Charts    ChartsConfig    `mapstructure:"charts"`
	Map       MapConfig       `mapstructure:"map"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Server    ServerConfig    `mapstructure:"server"`
	Schedule  string          `mapstructure:"schedule"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"`
}

type FetchConfig struct {
	URL        string        `mapstructure:"url"`
	RawDir     string        `mapstructure:"raw_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type CleanConfig struct {
	RawDir     string `mapstructure:"raw_dir"`
	OutputPath string `mapstructure:"output_path"`
	XLSXPath   string `mapstructure:"xlsx_path"`
	Encoding   string `mapstructure:"encoding"`
	HeaderSkip int    `mapstructure:"header_skip"`
	Dedup      string `mapstructure:"dedup"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

type ChartsConfig struct {
	ReferenceFile string   `mapstructure:"reference_file"`
	HistogramDir  string   `mapstructure:"histogram_dir"`
	ScatterDir    string   `mapstructure:"scatter_dir"`
	Pollutants    []string `mapstructure:"pollutants"`
	Naming        string   `mapstructure:"naming"`
}

type MapConfig struct {
	GeoFile    string `mapstructure:"geo_file"`
	Delimiter  string `mapstructure:"delimiter"`
	OutputPath string `mapstructure:"output_path"`
}

type DashboardConfig struct {
	StaticDir  string `mapstructure:"static_dir"`
	ReadmePath string `mapstructure:"readme_path"`
}

type ServerConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(constants.ViperLogLevelKey, "info")
	v.SetDefault(constants.ViperLogModeKey, "production")

	v.SetDefault(constants.ViperFetchURLKey, "https://zenodo.org/record/5043645/files/INERIS_Pollution_Air_2000-2015.zip?download=1")
	v.SetDefault(constants.ViperFetchRawDirKey, "data/raw")
	v.SetDefault(constants.ViperFetchTimeoutKey, 5*time.Minute)
	v.SetDefault(constants.ViperFetchMaxRetriesKey, 3)
	v.SetDefault(constants.ViperFetchRetryDelayKey, 2*time.Second)

	v.SetDefault(constants.ViperCleanRawDirKey, "data/raw")
	v.SetDefault(constants.ViperCleanOutputPathKey, "data/cleaned/cleaned_air_quality_with_year.csv")
	v.SetDefault(constants.ViperCleanXLSXPathKey, "")
	v.SetDefault(constants.ViperCleanEncodingKey, "windows-1252")
	v.SetDefault(constants.ViperCleanHeaderSkipKey, 1)
	v.SetDefault(constants.ViperCleanDedupKey, "report")

	v.SetDefault(constants.ViperDBDriverKey, "pgx")
	v.SetDefault(constants.ViperDBHostKey, "postgres-service")
	v.SetDefault(constants.ViperDBPortKey, 5432)
	v.SetDefault(constants.ViperDBNameKey, "postgres")
	v.SetDefault(constants.ViperDBUserKey, "postgres")
	v.SetDefault(constants.ViperDBPasswordKey, "password")
	v.SetDefault(constants.ViperDBSSLModeKey, "disable")
	v.SetDefault(constants.ViperDBPathKey, "data/air_quality.db")

	v.SetDefault(constants.ViperChartsReferenceFileKey, "")
	v.SetDefault(constants.ViperChartsHistogramDirKey, "assets/html_histograms")
	v.SetDefault(constants.ViperChartsScatterDirKey, "assets/scatter")
	v.SetDefault(constants.ViperChartsPollutantsKey, []string{"NO2", "PM10", "O3", "PM25"})
	v.SetDefault(constants.ViperChartsNamingKey, "kind")

	v.SetDefault(constants.ViperMapGeoFileKey, "data/cleaned/base-officielle-codes-postaux.csv")
	v.SetDefault(constants.ViperMapDelimiterKey, ",")
	v.SetDefault(constants.ViperMapOutputPathKey, "assets/maps/interactive_pollution_map.html")

	v.SetDefault(constants.ViperDashboardStaticDirKey, "static")
	v.SetDefault(constants.ViperDashboardReadmePathKey, "README.md")

	v.SetDefault(constants.ViperServerAddrKey, ":8080")
	v.SetDefault(constants.ViperServerAllowOriginsKey, []string{"*"})

	v.SetDefault(constants.ViperScheduleKey, "")
}

// Load собирает конфиг: дефолты, опциональный yaml файл, переменные окружения.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	binds := map[string]string{
		constants.ViperDBHostKey:     constants.EnvDBHost,
		constants.ViperDBPortKey:     constants.EnvDBPort,
		constants.ViperDBNameKey:     constants.EnvDBName,
		constants.ViperDBUserKey:     constants.EnvDBUser,
		constants.ViperDBPasswordKey: constants.EnvDBPassword,
		constants.ViperDBDriverKey:   constants.EnvDBDriver,
		constants.ViperDBPathKey:     constants.EnvDBPath,
		constants.ViperDBSSLModeKey:  constants.EnvDBSSLMode,
	}
	for key, env := range binds {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ReplaceAll(strings.ToUpper(key), ".", "_"), env); err != nil {
			return nil, fmt.Errorf("v.BindEnv %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("database.driver %q: %w", c.Database.Driver, constants.ErrUnknownDriver)
	}
	switch c.Clean.Dedup {
	case "report", "drop":
	default:
		return fmt.Errorf("clean.dedup must be report or drop, got %q", c.Clean.Dedup)
	}
	switch c.Charts.Naming {
	case "kind", "annual":
	default:
		return fmt.Errorf("charts.naming must be kind or annual, got %q", c.Charts.Naming)
	}
	if c.Clean.HeaderSkip < 0 {
		return errors.New("clean.header_skip must not be negative")
	}
	return nil
}
