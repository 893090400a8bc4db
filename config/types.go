package config

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Email          EmailConfig          `mapstructure:"email"`
	SMS            SMSConfig            `mapstructure:"sms"`
	OTP            OTPConfig            `mapstructure:"otp"`
	Notifications  NotificationsConfig  `mapstructure:"notifications"`
	Reviews        ReviewsConfig        `mapstructure:"reviews"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	S3             S3Config             `mapstructure:"s3"`
	Nats           NatsConfig           `mapstructure:"nats"`
}

type NatsConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type DatabaseConfig struct {
	Host       string                  `mapstructure:"host"`
	Port       int                     `mapstructure:"port"`
	User       string                  `mapstructure:"user"`
	Password   string                  `mapstructure:"password"`
	DBName     string                  `mapstructure:"dbname"`
	SSLMode    string                  `mapstructure:"sslmode"`
	Pool       DatabasePoolConfig      `mapstructure:"pool"`
	Migrations DatabaseMigrationConfig `mapstructure:"migrations"`
	Logging    DatabaseLoggingConfig   `mapstructure:"logging"`
}

type DatabasePoolConfig struct {
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

type DatabaseMigrationConfig struct {
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type DatabaseLoggingConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	SlowQueryThresholdMs int  `mapstructure:"slow_query_threshold_ms"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	TimeoutSeconds int        `mapstructure:"timeout_seconds"`
	Environment    string     `mapstructure:"environment"`
	Domain         string     `mapstructure:"domain"`
	CORS           CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	Paseto            PasetoConfig `mapstructure:"paseto"`
	SessionTTLMinutes int          `mapstructure:"session_ttl_minutes"`
	OTPTTLMinutes     int          `mapstructure:"otp_ttl_minutes"`
}

type PasetoConfig struct {
	Mode             string `mapstructure:"mode"`
	LocalKeyHex      string `mapstructure:"local_key_hex"`
	SecretKeyHex     string `mapstructure:"secret_key_hex"`
	PublicKeyHex     string `mapstructure:"public_key_hex"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	UseTLS         bool   `mapstructure:"use_tls"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SMSConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	SMSIR   SMSIRConfig `mapstructure:"smsir"`
}

type SMSIRConfig struct {
	APIKey     string `mapstructure:"api_key"`
	SecretKey  string `mapstructure:"secret_key"`
	TemplateID string `mapstructure:"template_id"`
}

type OTPConfig struct {
	DefaultLength int `mapstructure:"default_length"`
	MinLength     int `mapstructure:"min_length"`
	MaxLength     int `mapstructure:"max_length"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

type NotificationsConfig struct {
	// DispatchIntervalSeconds controls how often the dispatcher worker sweeps
	// due scheduled notifications. Zero disables the worker.
	DispatchIntervalSeconds int `mapstructure:"dispatch_interval_seconds"`
	// DefaultBalance is the push credit balance assigned to newly seeded clinics.
	DefaultBalance int `mapstructure:"default_balance"`
	// TopUpURL is linked from the low-balance warning email. The link block is
	// omitted when empty.
	TopUpURL string `mapstructure:"top_up_url"`
}

type ReviewsConfig struct {
	// LinkBaseURL is the public page a review request email points the patient
	// to, e.g. "https://reviews.example.com/r". The review ID is appended.
	LinkBaseURL string `mapstructure:"link_base_url"`
	// DedupWindowDays is the rolling window in which at most one active review
	// request may exist per patient.
	DedupWindowDays int `mapstructure:"dedup_window_days"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PresignTTLSec   int    `mapstructure:"presign_ttl_sec"`
}

// IsDevelopment reports whether the server runs in the development
// environment. Development relaxes OTP verification and skips outbound SMS.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) Validate() error {

	return nil
}
