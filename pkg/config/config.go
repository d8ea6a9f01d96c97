package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Search    SearchConfig
	Providers ProvidersConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

// SearchConfig holds the pipeline knobs: fan-out deadlines, the mandatory
// provider gate, cache bounds, and pagination defaults.
type SearchConfig struct {
	AdapterTimeoutSec   int
	GlobalTimeoutSec    int
	MaxConcurrency      int
	MandatoryProvider   string
	MaxQueryLength      int
	DefaultLimit        int
	MaxLimit            int
	QueryCacheSize      int
	QueryCacheTTLSec    int
	ResponseCacheTTLSec int
	ResponseCacheOn     bool
}

type ProvidersConfig struct {
	Gmail      ProviderConfig
	Drive      ProviderConfig
	Calendar   ProviderConfig
	Slack      ProviderConfig
	Dropbox    ProviderConfig
	Asana      ProviderConfig
	QuickBooks ProviderConfig
	Procore    ProviderConfig
}

type ProviderConfig struct {
	Enabled bool
	BaseURL string
}

type AuthConfig struct {
	Enabled       bool
	SessionHeader string
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/omnisearch")

	viper.SetEnvPrefix("OMNISEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 1024)
	viper.SetDefault("llm.timeoutSec", 15)

	viper.SetDefault("search.adapterTimeoutSec", 10)
	viper.SetDefault("search.globalTimeoutSec", 25)
	viper.SetDefault("search.maxConcurrency", 32)
	viper.SetDefault("search.mandatoryProvider", "google")
	viper.SetDefault("search.maxQueryLength", 500)
	viper.SetDefault("search.defaultLimit", 20)
	viper.SetDefault("search.maxLimit", 100)
	viper.SetDefault("search.queryCacheSize", 1000)
	viper.SetDefault("search.queryCacheTTLSec", 300)
	viper.SetDefault("search.responseCacheTTLSec", 60)
	viper.SetDefault("search.responseCacheOn", false)

	viper.SetDefault("providers.gmail.enabled", true)
	viper.SetDefault("providers.gmail.baseURL", "https://gmail.googleapis.com")
	viper.SetDefault("providers.drive.enabled", true)
	viper.SetDefault("providers.drive.baseURL", "https://www.googleapis.com/drive/v3")
	viper.SetDefault("providers.calendar.enabled", true)
	viper.SetDefault("providers.calendar.baseURL", "https://www.googleapis.com/calendar/v3")
	viper.SetDefault("providers.slack.enabled", true)
	viper.SetDefault("providers.slack.baseURL", "https://slack.com/api")
	viper.SetDefault("providers.dropbox.enabled", true)
	viper.SetDefault("providers.dropbox.baseURL", "https://api.dropboxapi.com/2")
	viper.SetDefault("providers.asana.enabled", true)
	viper.SetDefault("providers.asana.baseURL", "https://app.asana.com/api/1.0")
	viper.SetDefault("providers.quickbooks.enabled", false)
	viper.SetDefault("providers.quickbooks.baseURL", "https://quickbooks.api.intuit.com/v3")
	viper.SetDefault("providers.procore.enabled", false)
	viper.SetDefault("providers.procore.baseURL", "https://api.procore.com/rest/v1.0")

	viper.SetDefault("auth.enabled", true)
	viper.SetDefault("auth.sessionHeader", "Authorization")

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 60)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
