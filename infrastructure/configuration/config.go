package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"video-fetcher/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Cache       Cache       `json:"cache"`
	YouTube     YouTube     `json:"youtube"`
	Analytics   Analytics   `json:"analytics"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Logger      Logger      `json:"logger"`
	RateLimit   RateLimit   `json:"rateLimit"`
}

type App struct {
	Port        int      `json:"port"`
	TLSEnabled  bool     `json:"tlsEnabled"`
	TLSCertFile string   `json:"tlsCertFile"`
	TLSKeyFile  string   `json:"tlsKeyFile"`
	CorsOrigins []string `json:"corsOrigins"`
}

// Database selects the record store. Vendor is one of mongo, postgres or memory.
type Database struct {
	Vendor string `json:"vendor"`
	Psql   Db     `json:"psql"`
	Mongo  Db     `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	URI      string `json:"uri"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
	KeyPrefix    string `json:"keyPrefix"`
}

// Cache configures the result cache. Backend is memory or redis.
type Cache struct {
	Backend            string `json:"backend"`
	DefaultTTLSeconds  int    `json:"defaultTTLSeconds"`
	ListTTLSeconds     int    `json:"listTTLSeconds"`
	SearchTTLSeconds   int    `json:"searchTTLSeconds"`
	StatsTTLSeconds    int    `json:"statsTTLSeconds"`
	CheckPeriodSeconds int    `json:"checkPeriodSeconds"`
	InvalidateOnIngest bool   `json:"invalidateOnIngest"`
}

type YouTube struct {
	APIKeys               []string `json:"apiKeys"`
	SearchQuery           string   `json:"searchQuery"`
	MaxResults            int      `json:"maxResults"`
	FetchIntervalSeconds  int      `json:"fetchIntervalSeconds"`
	RequestTimeoutSeconds int      `json:"requestTimeoutSeconds"`
	Endpoint              string   `json:"endpoint"`
}

type Analytics struct {
	StopWords        []string `json:"stopWords"`
	TrendingLimit    int      `json:"trendingLimit"`
	TopChannelsLimit int      `json:"topChannelsLimit"`
	TrendDays        int      `json:"trendDays"`
	BatchSize        int      `json:"batchSize"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Logger struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type RateLimit struct {
	Enabled bool          `json:"enabled"`
	General RateLimitRule `json:"general"`
	Videos  RateLimitRule `json:"videos"`
	Search  RateLimitRule `json:"search"`
	Stats   RateLimitRule `json:"stats"`
}

// RateLimitRule allows Requests per WindowSeconds for each client.
type RateLimitRule struct {
	Requests      int `json:"requests"`
	WindowSeconds int `json:"windowSeconds"`
}

func (r RateLimitRule) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

func (c Cache) DefaultTTL() time.Duration  { return seconds(c.DefaultTTLSeconds) }
func (c Cache) ListTTL() time.Duration     { return seconds(c.ListTTLSeconds) }
func (c Cache) SearchTTL() time.Duration   { return seconds(c.SearchTTLSeconds) }
func (c Cache) StatsTTL() time.Duration    { return seconds(c.StatsTTLSeconds) }
func (c Cache) CheckPeriod() time.Duration { return seconds(c.CheckPeriodSeconds) }

func (y YouTube) FetchInterval() time.Duration  { return seconds(y.FetchIntervalSeconds) }
func (y YouTube) RequestTimeout() time.Duration { return seconds(y.RequestTimeoutSeconds) }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initRedis(&C)
	initCache(&C)
	initYouTube(&C)
	initAnalytics(&C)
	initMessaging(&C)
	initLogger(&C)
	initRateLimit(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.GetLogger().Warn("Config file not found, using defaults and environment")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func setDefaults() {
	viper.SetDefault("app.port", 5000)
	viper.SetDefault("app.corsOrigins", []string{"http://localhost:3000"})
	viper.SetDefault("database.vendor", "mongo")
	viper.SetDefault("database.mongo.name", "youtube_videos")
	viper.SetDefault("database.psql.sslMode", "disable")
	viper.SetDefault("redisClient.keyPrefix", "video-fetcher:")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.defaultTTLSeconds", 300)
	viper.SetDefault("cache.listTTLSeconds", 120)
	viper.SetDefault("cache.searchTTLSeconds", 120)
	viper.SetDefault("cache.statsTTLSeconds", 300)
	viper.SetDefault("cache.checkPeriodSeconds", 60)
	viper.SetDefault("cache.invalidateOnIngest", true)
	viper.SetDefault("youtube.searchQuery", "cricket")
	viper.SetDefault("youtube.maxResults", 50)
	viper.SetDefault("youtube.fetchIntervalSeconds", 10)
	viper.SetDefault("youtube.requestTimeoutSeconds", 15)
	viper.SetDefault("analytics.stopWords", DefaultStopWords)
	viper.SetDefault("analytics.trendingLimit", 10)
	viper.SetDefault("analytics.topChannelsLimit", 10)
	viper.SetDefault("analytics.trendDays", 7)
	viper.SetDefault("pubsub.topic", "video-ingest")
	viper.SetDefault("serviceBus.queue", "video-ingest")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("rateLimit.enabled", true)
	viper.SetDefault("rateLimit.general", map[string]int{"requests": 100, "windowSeconds": 900})
	viper.SetDefault("rateLimit.videos", map[string]int{"requests": 50, "windowSeconds": 300})
	viper.SetDefault("rateLimit.search", map[string]int{"requests": 20, "windowSeconds": 300})
	viper.SetDefault("rateLimit.stats", map[string]int{"requests": 10, "windowSeconds": 600})
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if v := os.Getenv("DB_VENDOR"); v != "" {
		C.Database.Vendor = v
	}
	switch C.Database.Vendor {
	case "mongo", "postgres", "memory":
	default:
		logger.GetLogger().WithField("vendor", C.Database.Vendor).Warn("Unknown database vendor, using mongo")
		C.Database.Vendor = "mongo"
	}

	C.Database.Mongo.URI = getConfigValue(C.Database.Mongo.URI, "MONGODB_URI", "")
	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "localhost")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")
	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "youtube_videos")

	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "videos")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")

	logger.GetLogger().WithField("vendor", C.Database.Vendor).Info("Database configuration")
}

func initApp(C *Config) {
	// Port resolution order: APP_PORT -> PORT -> config -> default 5000
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 5000
	}
	envBool("TLS_ENABLED", &C.App.TLSEnabled)
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		C.App.CorsOrigins = splitList(v)
	}
	if C.App.TLSEnabled {
		logger.GetLogger().WithFields(map[string]interface{}{"cert": C.App.TLSCertFile, "key": C.App.TLSKeyFile}).Info("TLS enabled via configuration")
	}
}

func initRedis(C *Config) {
	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "localhost")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Username = getConfigValue(C.RedisClient.Username, "REDIS_USERNAME", "")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
	C.RedisClient.KeyPrefix = getConfigValue(C.RedisClient.KeyPrefix, "REDIS_KEY_PREFIX", "video-fetcher:")
}

func initCache(C *Config) {
	C.Cache.Backend = getConfigValue(C.Cache.Backend, "CACHE_BACKEND", "memory")
	if C.Cache.Backend != "redis" {
		C.Cache.Backend = "memory"
	}
	envInt("CACHE_TTL", &C.Cache.DefaultTTLSeconds)
	envInt("CACHE_CHECK_PERIOD", &C.Cache.CheckPeriodSeconds)
	envBool("CACHE_INVALIDATE_ON_INGEST", &C.Cache.InvalidateOnIngest)
	defaultInt(&C.Cache.DefaultTTLSeconds, 300)
	defaultInt(&C.Cache.ListTTLSeconds, 120)
	defaultInt(&C.Cache.SearchTTLSeconds, 120)
	defaultInt(&C.Cache.StatsTTLSeconds, 300)
	defaultInt(&C.Cache.CheckPeriodSeconds, 60)
}

func initMessaging(C *Config) {
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.Pubsub.Topic = getConfigValue(C.Pubsub.Topic, "PUBSUB_TOPIC", "video-ingest")
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	C.ServiceBus.Queue = getConfigValue(C.ServiceBus.Queue, "SERVICEBUS_QUEUE", "video-ingest")
}

func initLogger(C *Config) {
	C.Logger.Level = getConfigValue(C.Logger.Level, "LOG_LEVEL", "info")
	C.Logger.Format = getConfigValue(C.Logger.Format, "LOG_FORMAT", "json")
	logger.Configure(C.Logger.Level, C.Logger.Format)
}

func initRateLimit(C *Config) {
	envBool("RATE_LIMIT_ENABLED", &C.RateLimit.Enabled)
	defaultRule(&C.RateLimit.General, 100, 900)
	defaultRule(&C.RateLimit.Videos, 50, 300)
	defaultRule(&C.RateLimit.Search, 20, 300)
	defaultRule(&C.RateLimit.Stats, 10, 600)
}

func defaultRule(r *RateLimitRule, requests, windowSeconds int) {
	defaultInt(&r.Requests, requests)
	defaultInt(&r.WindowSeconds, windowSeconds)
}

func defaultInt(target *int, value int) {
	if *target <= 0 {
		*target = value
	}
}
