package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AWS       AWSConfig
	Cookies   CookiesConfig
	Extractor ExtractorConfig
	Cache     CacheConfig
	Stream    StreamConfig
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Auth      AuthConfig
}

type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`       // e.g., "debug", "release"
	PublicURL string `mapstructure:"public_url"` // optional, overrides request host in stream_url
}

type DatabaseConfig struct {
	DSN string
}

// RedisConfig selects the shared cache. An empty Addr keeps everything in process.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string `mapstructure:"key_prefix"`
}

type JWTConfig struct {
	Secret     string
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type AWSConfig struct {
	Region         string
	Bucket         string
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	Endpoint       string // Optional: for MinIO or other S3 compatible
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

type CookiesConfig struct {
	Path            string
	MaxAge          time.Duration `mapstructure:"max_age"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	ObjectKey       string        `mapstructure:"object_key"`
	Backups         int
}

type ExtractorConfig struct {
	Backend       string // "ytdlp" or "kkdai"
	YtdlpPath     string `mapstructure:"ytdlp_path"`
	Timeout       time.Duration
	MaxConcurrent int64 `mapstructure:"max_concurrent"`
	Retries       int
	SearchBackend string `mapstructure:"search_backend"` // "ytsearch", "ytdlp" or "fallback"
}

type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type StreamConfig struct {
	TTL             time.Duration
	ChunkSize       int           `mapstructure:"chunk_size"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
}

type RateLimitConfig struct {
	PerMinute      int `mapstructure:"per_minute"`
	YoutubePerHour int `mapstructure:"youtube_per_hour"`
}

type AuthConfig struct {
	AdminKey          string `mapstructure:"admin_key"`
	DefaultDailyLimit int    `mapstructure:"default_daily_limit"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file settings (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found is fine, we rely on env vars or defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_url", "")

	v.SetDefault("database.dsn", "sqlite://youtube_api.db")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "ytstream:")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.session_ttl", 12*time.Hour)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.bucket", "")
	v.SetDefault("aws.access_key", "")
	v.SetDefault("aws.secret_key", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.force_path_style", false)

	v.SetDefault("cookies.path", "cookies.txt")
	v.SetDefault("cookies.max_age", 24*time.Hour)
	v.SetDefault("cookies.refresh_interval", 12*time.Hour)
	v.SetDefault("cookies.object_key", "cookies.txt")
	v.SetDefault("cookies.backups", 5)

	v.SetDefault("extractor.backend", "ytdlp")
	v.SetDefault("extractor.ytdlp_path", "yt-dlp")
	v.SetDefault("extractor.timeout", 30*time.Second)
	v.SetDefault("extractor.max_concurrent", 10)
	v.SetDefault("extractor.retries", 2)
	v.SetDefault("extractor.search_backend", "fallback")

	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.sweep_interval", 5*time.Minute)

	v.SetDefault("stream.ttl", time.Hour)
	v.SetDefault("stream.chunk_size", 1024*1024)
	v.SetDefault("stream.upstream_timeout", 30*time.Second)

	v.SetDefault("ratelimit.per_minute", 100)
	v.SetDefault("ratelimit.youtube_per_hour", 500)

	v.SetDefault("auth.admin_key", "")
	v.SetDefault("auth.default_daily_limit", 100)
}
