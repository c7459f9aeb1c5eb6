package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tourplanner/internal/itinerary"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		Port         string        `mapstructure:"port"`
		ReadTimeout  time.Duration `mapstructure:"readTimeout"`
		WriteTimeout time.Duration `mapstructure:"writeTimeout"`
		CORSOrigins  []string      `mapstructure:"corsOrigins"`
	} `mapstructure:"server"`
	Postgres struct {
		URL         string `mapstructure:"url"`
		AutoMigrate bool   `mapstructure:"autoMigrate"`
	} `mapstructure:"postgres"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Mongo struct {
		URI        string `mapstructure:"uri"`
		Database   string `mapstructure:"database"`
		Collection string `mapstructure:"collection"`
	} `mapstructure:"mongo"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Provider  ProviderConfig           `mapstructure:"provider"`
	Catalog   CatalogConfig            `mapstructure:"catalog"`
	Fallback  itinerary.FallbackPrices `mapstructure:"fallback"`
	TripState struct {
		Backend string        `mapstructure:"backend"`
		TTL     time.Duration `mapstructure:"ttl"`
	} `mapstructure:"tripState"`
	RateLimit struct {
		SchedulePerMinute int `mapstructure:"schedulePerMinute"`
		Burst             int `mapstructure:"burst"`
	} `mapstructure:"rateLimit"`
	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	Telemetry struct {
		ServiceName  string `mapstructure:"serviceName"`
		OTLPEndpoint string `mapstructure:"otlpEndpoint"`
	} `mapstructure:"telemetry"`
}

type ProviderConfig struct {
	BaseURL       string        `mapstructure:"baseUrl"`
	APIKey        string        `mapstructure:"apiKey"`
	Timeout       time.Duration `mapstructure:"timeout"`
	HealthTimeout time.Duration `mapstructure:"healthTimeout"`
	BudgetFloor   float64       `mapstructure:"budgetFloor"`
}

type CatalogConfig struct {
	CacheTTL     time.Duration `mapstructure:"cacheTtl"`
	CityCacheTTL time.Duration `mapstructure:"cityCacheTtl"`
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Mode, "production")
}

// legacyEnv maps config keys to the plain environment names deployments already use.
var legacyEnv = map[string]string{
	"server.port":      "PORT",
	"postgres.url":     "POSTGRES_URL",
	"redis.addr":       "REDIS_ADDR",
	"redis.password":   "REDIS_PASSWORD",
	"mongo.uri":        "MONGO_URI",
	"kafka.brokers":    "KAFKA_BROKERS",
	"provider.baseUrl": "RECOMMENDER_URL",
	"provider.apiKey":  "RECOMMENDER_API_KEY",
	"jwt.secret":       "JWT_SECRET",
}

// Load reads config.yml from the working directory or config/, falling back to the
// embedded defaults. TOURPLANNER_* variables and the legacy names override the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.SetConfigName("config")
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	v.SetEnvPrefix("TOURPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "TOURPLANNER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Provider.BudgetFloor <= 0 {
		cfg.Provider.BudgetFloor = itinerary.DefaultBudgetFloor
	}
	return cfg, nil
}
