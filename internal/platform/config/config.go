package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config agrupa a configuração do serviço de vendas
type Config struct {
	ServiceName string    `yaml:"serviceName"`
	Version     string    `yaml:"version"`
	Server      Server    `yaml:"server"`
	Mongo       Mongo     `yaml:"mongo"`
	Postgres    Postgres  `yaml:"postgres"`
	Redis       Redis     `yaml:"redis"`
	Kafka       Kafka     `yaml:"kafka"`
	Telemetry   Telemetry `yaml:"telemetry"`
	Auth        Auth      `yaml:"auth"`
	Mail        Mail      `yaml:"mail"`
	Inventory   Inventory `yaml:"inventory"`
	Log         Log       `yaml:"log"`
}

type Server struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type Mongo struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	// WriteConcurrency limita as escritas guardadas simultâneas de um lote
	WriteConcurrency int `yaml:"writeConcurrency"`
}

// Postgres configura o ledger de movimentações. Host vazio desabilita o ledger.
type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int32  `yaml:"maxConns"`
}

// DSN monta a connection string no formato aceito pelo pgxpool
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database,
	)
}

func (p Postgres) Enabled() bool { return p.Host != "" }

type Redis struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	IdempotencyTTL time.Duration `yaml:"idempotencyTTL"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type Kafka struct {
	Brokers             []string `yaml:"brokers"`
	OrdersTopic         string   `yaml:"ordersTopic"`
	ReconciliationTopic string   `yaml:"reconciliationTopic"`
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Telemetry struct {
	// Endpoint do collector OTLP/HTTP (host:porta). Vazio desabilita a exportação.
	Endpoint       string        `yaml:"endpoint"`
	Insecure       bool          `yaml:"insecure"`
	MetricInterval time.Duration `yaml:"metricInterval"`
}

func (t Telemetry) Enabled() bool { return t.Endpoint != "" }

type Auth struct {
	JWTSecret string        `yaml:"jwtSecret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type Mail struct {
	RelayURL string        `yaml:"relayURL"`
	APIKey   string        `yaml:"apiKey"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
	// ConfirmURL é a base do link de confirmação enviado ao vendedor
	ConfirmURL string `yaml:"confirmURL"`
}

func (m Mail) Enabled() bool { return m.RelayURL != "" }

type Inventory struct {
	CompensationTimeout time.Duration `yaml:"compensationTimeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default retorna a configuração usada quando nenhum arquivo ou variável de ambiente é informado
func Default() *Config {
	return &Config{
		ServiceName: "sales-service",
		Version:     "1.0.0",
		Server: Server{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: Mongo{
			URI:              "mongodb://localhost:27017",
			Database:         "sales",
			ConnectTimeout:   10 * time.Second,
			WriteConcurrency: 8,
		},
		Postgres: Postgres{
			Port:     "5432",
			User:     "root",
			Password: "pass",
			Database: "inventory_ledger",
			MaxConns: 10,
		},
		Redis:     Redis{IdempotencyTTL: 24 * time.Hour},
		Kafka:     Kafka{OrdersTopic: "sales.orders", ReconciliationTopic: "sales.stock-reconciliation"},
		Telemetry: Telemetry{Insecure: true, MetricInterval: 15 * time.Second},
		Auth:      Auth{Issuer: "sales-service", TokenTTL: 12 * time.Hour},
		Mail:      Mail{From: "no-reply@sales.local", Timeout: 5 * time.Second},
		Inventory: Inventory{CompensationTimeout: 5 * time.Second},
		Log:       Log{Level: "info"},
	}
}

// Load lê .env (opcional), o arquivo YAML em path (opcional) e aplica as variáveis de ambiente por cima
func Load(path string) (*Config, error) {
	// o .env é opcional; variáveis já definidas no ambiente têm precedência
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = getEnv("CONFIG_FILE", "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.Server.Port = getEnv("PORT", c.Server.Port)

	c.Mongo.URI = getEnv("MONGODB_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGODB_DATABASE", c.Mongo.Database)

	c.Postgres.Host = getEnv("DATABASE_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnv("DATABASE_PORT", c.Postgres.Port)
	c.Postgres.User = getEnv("DATABASE_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("DATABASE_PASSWORD", c.Postgres.Password)
	c.Postgres.Database = getEnv("DATABASE_NAME", c.Postgres.Database)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}

	c.Telemetry.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.Endpoint)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.Mail.RelayURL = getEnv("MAIL_RELAY_URL", c.Mail.RelayURL)
	c.Mail.APIKey = getEnv("MAIL_API_KEY", c.Mail.APIKey)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	if pretty := getEnv("LOG_PRETTY", ""); pretty != "" {
		v, err := strconv.ParseBool(pretty)
		if err != nil {
			return errors.Wrap(err, "LOG_PRETTY")
		}
		c.Log.Pretty = v
	}

	if timeout := getEnv("COMPENSATION_TIMEOUT", ""); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return errors.Wrap(err, "COMPENSATION_TIMEOUT")
		}
		c.Inventory.CompensationTimeout = d
	}
	return nil
}

// Validate verifica os campos obrigatórios
func (c *Config) Validate() error {
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return errors.New("mongo.uri and mongo.database are required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret (JWT_SECRET) is required")
	}
	if c.Mongo.WriteConcurrency <= 0 {
		c.Mongo.WriteConcurrency = 1
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
