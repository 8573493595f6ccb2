package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env       string `env:"ENV" env-required:"true"`
	LogLevel  string `env:"LOG_LEVEL"`
	HTTP      HTTPConfig
	Postgres  PostgresConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Generator GeneratorConfig
	Scheduler SchedulerConfig
	Stats     StatsConfig
}

type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" env-default:"10"`
	LogQueries     bool          `env:"POSTGRES_LOG_QUERIES" env-default:"false"`
}

type JWTConfig struct {
	Issuer          string        `env:"JWT_ISSUER" env-default:"studyboard"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"720h"`
}

type AuthConfig struct {
	CodeTTL     time.Duration `env:"AUTH_CODE_TTL" env-default:"5m"`
	RedirectURL string        `env:"AUTH_REDIRECT_URL" env-default:"/"`
}

// GeneratorConfig points at the completion API behind task suggestions.
// Suggestions are disabled while the key or the model is empty.
type GeneratorConfig struct {
	APIURL    string        `env:"GENERATOR_API_URL" env-default:"https://api.anthropic.com/v1/messages"`
	APIKey    string        `env:"GENERATOR_API_KEY"`
	Model     string        `env:"GENERATOR_MODEL"`
	MaxTokens int           `env:"GENERATOR_MAX_TOKENS" env-default:"1024"`
	Timeout   time.Duration `env:"GENERATOR_TIMEOUT" env-default:"60s"`
}

type SchedulerConfig struct {
	Enabled    bool   `env:"SCHEDULER_ENABLED" env-default:"true"`
	Timezone   string `env:"SCHEDULER_TIMEZONE" env-default:"UTC"`
	DigestTime string `env:"SCHEDULER_DIGEST_TIME" env-default:"08:00"`
}

type StatsConfig struct {
	MonthlyGoalMinutes int `env:"STATS_MONTHLY_GOAL_MINUTES" env-default:"1200"`
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL             string        `yaml:"api_url" env:"STUDYBOARD_API_URL" env-default:"http://localhost:8080"`
	Token              string        `yaml:"token" env:"STUDYBOARD_TOKEN"`
	StatePath          string        `yaml:"state_path" env:"STUDYBOARD_STATE_PATH" env-default:"studyboard.db"`
	Workspace          string        `yaml:"workspace" env:"STUDYBOARD_WORKSPACE"`
	Timeout            time.Duration `yaml:"timeout" env:"STUDYBOARD_TIMEOUT" env-default:"10s"`
	MonthlyGoalMinutes int           `yaml:"monthly_goal_minutes" env:"STATS_MONTHLY_GOAL_MINUTES" env-default:"1200"`
}
