package types

// Config is a struct to hold the configuration data
type Config struct {
	Logging struct {
		OutputLevel  string `yaml:"outputLevel" envconfig:"LOGGING_OUTPUT_LEVEL"`
		OutputStderr bool   `yaml:"outputStderr" envconfig:"LOGGING_OUTPUT_STDERR"`
	} `yaml:"logging"`

	Database struct {
		Engine string `yaml:"engine" envconfig:"DATABASE_ENGINE"`
		Sqlite struct {
			File string `yaml:"file" envconfig:"DATABASE_SQLITE_FILE"`
		} `yaml:"sqlite"`
		Pgsql struct {
			Username string `yaml:"user" envconfig:"DATABASE_PGSQL_USERNAME"`
			Password string `yaml:"password" envconfig:"DATABASE_PGSQL_PASSWORD"`
			Name     string `yaml:"name" envconfig:"DATABASE_PGSQL_NAME"`
			Host     string `yaml:"host" envconfig:"DATABASE_PGSQL_HOST"`
			Port     string `yaml:"port" envconfig:"DATABASE_PGSQL_PORT"`
		} `yaml:"pgsql"`
		MaxOpenConns int `yaml:"maxOpenConns" envconfig:"DATABASE_MAX_OPEN_CONNS"`
		MaxIdleConns int `yaml:"maxIdleConns" envconfig:"DATABASE_MAX_IDLE_CONNS"`
	} `yaml:"database"`

	LogDecoder struct {
		LogAlias LogAliasConfig `yaml:"logAlias"`
	} `yaml:"logDecoder"`

	TraceDecoder struct {
		TraceAlias TraceAliasConfig `yaml:"traceAlias"`
	} `yaml:"traceDecoder"`
}

// LogAliasConfig maps the logical log fields to the physical column names of the log relation
type LogAliasConfig struct {
	Topic0  string `yaml:"topic0" envconfig:"LOG_ALIAS_TOPIC0"`
	Address string `yaml:"address" envconfig:"LOG_ALIAS_ADDRESS"`
}

// TraceAliasConfig maps the logical trace fields to the physical column names of the trace relation
type TraceAliasConfig struct {
	Selector string `yaml:"selector" envconfig:"TRACE_ALIAS_SELECTOR"`
	ActionTo string `yaml:"actionTo" envconfig:"TRACE_ALIAS_ACTION_TO"`
}
