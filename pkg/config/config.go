package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimit       struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type string `yaml:"type"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Market struct {
		BaseURL  string        `yaml:"base_url"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
		Lookback int           `yaml:"lookback"`
	} `yaml:"market"`
	Model struct {
		Kind         string  `yaml:"kind"`
		Seed         int64   `yaml:"seed"`
		Estimators   int     `yaml:"estimators"`
		LearningRate float64 `yaml:"learning_rate"`
		MaxDepth     int     `yaml:"max_depth"`
		Subsample    float64 `yaml:"subsample"`
		ColSample    float64 `yaml:"colsample"`
		Split        string  `yaml:"split"`
		TestFraction float64 `yaml:"test_fraction"`
	} `yaml:"model"`
	Simulation struct {
		Symbols        []string `yaml:"symbols"`
		DefaultDays    int      `yaml:"default_days"`
		DefaultBalance float64  `yaml:"default_balance"`
		Workers        int      `yaml:"workers"`
	} `yaml:"simulation"`
	Retrain struct {
		Enabled  bool          `yaml:"enabled"`
		Symbols  []string      `yaml:"symbols"`
		Interval time.Duration `yaml:"interval"`
		Workers  int           `yaml:"workers"`
		Lookback int           `yaml:"lookback"`
		LockTTL  time.Duration `yaml:"lock_ttl"`
		Queue    struct {
			Enabled    bool          `yaml:"enabled"`
			Workers    int           `yaml:"workers"`
			RetryLimit int           `yaml:"retry_limit"`
			RetryDelay time.Duration `yaml:"retry_delay"`
		} `yaml:"queue"`
	} `yaml:"retrain"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SYMBOLS"); v != "" {
		c.Simulation.Symbols = splitList(v)
	}
	if v := getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Enabled = true
		c.Redis.Host = host
		if p, err := strconv.Atoi(port); ok && err == nil {
			c.Redis.Port = p
		}
	}
	if v := getenv("MODEL_KIND"); v != "" {
		c.Model.Kind = v
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "walksim"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "walksim.results"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "walksim"
	}
	if c.Market.Timeout == 0 {
		c.Market.Timeout = 10 * time.Second
	}
	if c.Market.Lookback == 0 {
		c.Market.Lookback = 504
	}
	if c.Model.Kind == "" {
		c.Model.Kind = "gbdt"
	}
	if c.Model.Split == "" {
		c.Model.Split = "chronological"
	}
	if c.Model.TestFraction == 0 {
		c.Model.TestFraction = 0.2
	}
	if c.Model.Seed == 0 {
		c.Model.Seed = 42
	}
	if c.Simulation.DefaultDays == 0 {
		c.Simulation.DefaultDays = 90
	}
	if c.Simulation.DefaultBalance == 0 {
		c.Simulation.DefaultBalance = 10000
	}
	if c.Simulation.Workers == 0 {
		c.Simulation.Workers = 4
	}
	if c.Retrain.Interval == 0 {
		c.Retrain.Interval = 24 * time.Hour
	}
	if c.Retrain.Workers == 0 {
		c.Retrain.Workers = 2
	}
	if c.Retrain.Lookback == 0 {
		c.Retrain.Lookback = 504
	}
	if c.Retrain.LockTTL == 0 {
		c.Retrain.LockTTL = 10 * time.Minute
	}
	if len(c.Retrain.Symbols) == 0 && len(c.Simulation.Symbols) > 0 {
		n := 5
		if len(c.Simulation.Symbols) < n {
			n = len(c.Simulation.Symbols)
		}
		c.Retrain.Symbols = append([]string(nil), c.Simulation.Symbols[:n]...)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when backend.type is kafka")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if len(c.Simulation.Symbols) == 0 {
		return fmt.Errorf("simulation.symbols cannot be empty")
	}
	if c.Model.Kind != "gbdt" && c.Model.Kind != "logreg" {
		return fmt.Errorf("model.kind must be 'gbdt' or 'logreg', got '%s'", c.Model.Kind)
	}
	if c.Model.Split != "chronological" && c.Model.Split != "random" {
		return fmt.Errorf("model.split must be 'chronological' or 'random', got '%s'", c.Model.Split)
	}
	if c.Model.TestFraction <= 0 || c.Model.TestFraction >= 1 {
		return fmt.Errorf("model.test_fraction must be in (0,1), got %v", c.Model.TestFraction)
	}
	if c.Simulation.DefaultDays < 30 || c.Simulation.DefaultDays > 365 {
		return fmt.Errorf("simulation.default_days must be in [30,365], got %d", c.Simulation.DefaultDays)
	}
	if c.Retrain.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("retrain.queue requires redis.enabled")
	}
	return nil
}

// SupportsSymbol reports whether symbol is in the configured universe.
func (c *Config) SupportsSymbol(symbol string) bool {
	for _, s := range c.Simulation.Symbols {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
