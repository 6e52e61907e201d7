package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Reference data sources
const (
	SourcePostgres = "postgres"
	SourceWorkbook = "workbook"
	SourceS3       = "s3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Reference   ReferenceConfig   `json:"reference"`
	Calculation CalculationConfig `json:"calculation"`
	Cache       CacheConfig       `json:"cache"`
	Logging     LoggingConfig     `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
	AutoMigrate    bool          `json:"auto_migrate"`
}

// ReferenceConfig selects where reference tables and geography are read from
type ReferenceConfig struct {
	Source       string   `json:"source"`
	WorkbookPath string   `json:"workbook_path"`
	S3           S3Config `json:"s3"`
}

// S3Config locates the reference workbook in object storage
type S3Config struct {
	Bucket          string `json:"bucket"`
	Key             string `json:"key"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// CalculationConfig holds the option defaults of the engines
type CalculationConfig struct {
	ProportionSolsImpermeables float64 `json:"proportion_sols_impermeables"`
	WoodCalculation            string  `json:"wood_calculation"`
}

// CacheConfig configures the result cache and its warmer
type CacheConfig struct {
	TTLSeconds   int      `json:"ttl_seconds"`
	WarmSchedule string   `json:"warm_schedule"`
	WarmEpcis    []string `json:"warm_epcis"`
}

// LoggingConfig
type LoggingConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// TTL returns the cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Default returns the configuration used when no file or variable is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "aldo",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    5 * time.Minute,
		},
		Reference: ReferenceConfig{
			Source: SourcePostgres,
		},
		Calculation: CalculationConfig{
			ProportionSolsImpermeables: 0.8,
			WoodCalculation:            "harvest",
		},
		Cache: CacheConfig{
			TTLSeconds:   3600,
			WarmSchedule: "0 3 * * *",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file and environment variables. A .env
// file in the working directory is loaded first when present.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := Default()

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		config.Database.SSLMode = sslMode
	}

	if source := os.Getenv("REFERENCE_SOURCE"); source != "" {
		config.Reference.Source = source
	}
	if path := os.Getenv("REFERENCE_WORKBOOK"); path != "" {
		config.Reference.WorkbookPath = path
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.Reference.S3.Bucket = bucket
	}
	if key := os.Getenv("S3_KEY"); key != "" {
		config.Reference.S3.Key = key
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.Reference.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.Reference.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("AWS_ACCESS_KEY_ID"); accessKey != "" {
		config.Reference.S3.AccessKeyID = accessKey
	}
	if secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY"); secretKey != "" {
		config.Reference.S3.SecretAccessKey = secretKey
	}

	if proportion := os.Getenv("PROPORTION_SOLS_IMPERMEABLES"); proportion != "" {
		if p, err := strconv.ParseFloat(proportion, 64); err == nil {
			config.Calculation.ProportionSolsImpermeables = p
		}
	}
	if method := os.Getenv("WOOD_CALCULATION"); method != "" {
		config.Calculation.WoodCalculation = method
	}

	if ttl := os.Getenv("CACHE_TTL_SECONDS"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			config.Cache.TTLSeconds = t
		}
	}
	if schedule := os.Getenv("CACHE_WARM_SCHEDULE"); schedule != "" {
		config.Cache.WarmSchedule = schedule
	}
	if epcis := os.Getenv("CACHE_WARM_EPCIS"); epcis != "" {
		config.Cache.WarmEpcis = splitList(epcis)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if dev := os.Getenv("LOG_DEVELOPMENT"); dev != "" {
		if d, err := strconv.ParseBool(dev); err == nil {
			config.Logging.Development = d
		}
	}
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

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	switch c.Reference.Source {
	case SourcePostgres:
	case SourceWorkbook:
		if c.Reference.WorkbookPath == "" {
			return fmt.Errorf("reference source %q requires a workbook path", c.Reference.Source)
		}
	case SourceS3:
		if c.Reference.S3.Bucket == "" || c.Reference.S3.Key == "" {
			return fmt.Errorf("reference source %q requires a bucket and a key", c.Reference.Source)
		}
	default:
		return fmt.Errorf("unknown reference source %q", c.Reference.Source)
	}
	if p := c.Calculation.ProportionSolsImpermeables; p < 0 || p > 1 {
		return fmt.Errorf("proportion_sols_impermeables must be between 0 and 1, got %v", p)
	}
	switch c.Calculation.WoodCalculation {
	case "harvest", "consumption", "consommation":
	default:
		return fmt.Errorf("unknown wood calculation %q", c.Calculation.WoodCalculation)
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
