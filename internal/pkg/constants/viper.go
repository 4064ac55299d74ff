package constants

const (
	ViperLogLevelKey = "log.level"
	ViperLogModeKey  = "log.mode"

	ViperFetchURLKey        = "fetch.url"
	ViperFetchRawDirKey     = "fetch.raw_dir"
	ViperFetchTimeoutKey    = "fetch.timeout"
	ViperFetchMaxRetriesKey = "fetch.max_retries"
	ViperFetchRetryDelayKey = "fetch.retry_delay"

	ViperCleanRawDirKey     = "clean.raw_dir"
	ViperCleanOutputPathKey = "clean.output_path"
	ViperCleanXLSXPathKey   = "clean.xlsx_path"
	ViperCleanEncodingKey   = "clean.encoding"
	ViperCleanHeaderSkipKey = "clean.header_skip"
	ViperCleanDedupKey      = "clean.dedup"

	ViperDBDriverKey   = "database.driver"
	ViperDBHostKey     = "database.host"
	ViperDBPortKey     = "database.port"
	ViperDBNameKey     = "database.name"
	ViperDBUserKey     = "database.user"
	ViperDBPasswordKey = "database.password"
	ViperDBSSLModeKey  = "database.sslmode"
	ViperDBPathKey     = "database.path"

	ViperChartsReferenceFileKey = "charts.reference_file"
	ViperChartsHistogramDirKey  = "charts.histogram_dir"
	ViperChartsScatterDirKey    = "charts.scatter_dir"
	ViperChartsPollutantsKey    = "charts.pollutants"
	ViperChartsNamingKey        = "charts.naming"

	ViperMapGeoFileKey    = "map.geo_file"
	ViperMapDelimiterKey  = "map.delimiter"
	ViperMapOutputPathKey = "map.output_path"

	ViperDashboardStaticDirKey  = "dashboard.static_dir"
	ViperDashboardReadmePathKey = "dashboard.readme_path"

	ViperServerAddrKey         = "server.addr"
	ViperServerAllowOriginsKey = "server.allow_origins"

	ViperScheduleKey = "schedule"
)

// Переменные окружения, которые читал исходный деплой (k8s манифесты).
const (
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBName     = "DB_NAME"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBDriver   = "DB_DRIVER"
	EnvDBPath     = "DB_PATH"
	EnvDBSSLMode  = "DB_SSLMODE"
)

const (
	FormKeyVisitorName = "nom"
)
