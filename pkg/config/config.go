package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	NatsURL            string // URL of the NATS server used for sample emission
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules (optional)
	MigrationSourceURL string // location of migration files
	ServerAddr         string // listen addr for the http api server
	ProfilingPort      int    // port for profiling
	AdminToken         string // token for admin access (dyno submission)
)
