package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"FCCMonitorAPI/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MQTT     MQTTConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Alarm    AlarmConfig
	Plant    PlantConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type MQTTConfig struct {
	Broker         string
	Port           int
	ClientID       string
	Username       string
	Password       string
	TagTopic       string
	SnapshotTopic  string
	EventTopic     string
	QoS            byte
	RetainMessages bool
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AutoReconnect  bool
}

type SecurityConfig struct {
	AuthEnabled        bool
	JWTSecret          string
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerMinute int
	EnableRateLimit    bool
}

type LoggingConfig struct {
	Level     logger.Level
	Mode      logger.Mode
	FilePath  string
	UseColors bool
}

type AlarmConfig struct {
	RecomputeInterval time.Duration
	ListLimit         int
	Retention         time.Duration
	CleanupInterval   time.Duration
}

type PlantConfig struct {
	CatalogPath       string
	SimulatorEnabled  bool
	SimulatorInterval time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

var requiredEnvVars = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"MQTT_BROKER",
	"MQTT_PORT",
}

const defaultJWTSecret = "fcc_monitor_secret_change_in_production"

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	if err := validateRequired(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		MQTT:     loadMQTTConfig(),
		Security: loadSecurityConfig(),
		Logging:  loadLoggingConfig(),
		Alarm:    loadAlarmConfig(),
		Plant:    loadPlantConfig(),
		Metrics:  loadMetricsConfig(),
	}

	return cfg, nil
}

func validateRequired() error {
	var missing []string

	for _, key := range requiredEnvVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Port:            getEnvAsInt("SERVER_PORT", 8080),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", "10s"),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", "10s"),
		MaxHeaderBytes:  getEnvAsInt("MAX_HEADER_BYTES", 1048576),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "fcc_monitor"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "fcc_monitor"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "5m"),
	}
}

func loadMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:         getEnv("MQTT_BROKER", "localhost"),
		Port:           getEnvAsInt("MQTT_PORT", 1883),
		ClientID:       getEnv("MQTT_CLIENT_ID", "fcc-monitor"),
		Username:       getEnv("MQTT_USERNAME", ""),
		Password:       getEnv("MQTT_PASSWORD", ""),
		TagTopic:       getEnv("MQTT_TAG_TOPIC", "fcc/tags/+/value"),
		SnapshotTopic:  getEnv("MQTT_SNAPSHOT_TOPIC", "fcc/tags/snapshot"),
		EventTopic:     getEnv("MQTT_EVENT_TOPIC", "fcc/alarms"),
		QoS:            byte(getEnvAsInt("MQTT_QOS", 1)),
		RetainMessages: getEnvAsBool("MQTT_RETAIN", false),
		KeepAlive:      getEnvAsDuration("MQTT_KEEP_ALIVE", "60s"),
		ConnectTimeout: getEnvAsDuration("MQTT_CONNECT_TIMEOUT", "10s"),
		AutoReconnect:  getEnvAsBool("MQTT_AUTO_RECONNECT", true),
	}
}

func loadSecurityConfig() SecurityConfig {
	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	methods := getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")

	return SecurityConfig{
		AuthEnabled:        getEnvAsBool("AUTH_ENABLED", true),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		CORSAllowedOrigins: strings.Split(origins, ","),
		CORSAllowedMethods: strings.Split(methods, ","),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
		EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
		Mode:      logger.ParseMode(getEnv("LOG_MODE", "normal")),
		FilePath:  getEnv("LOG_FILE_PATH", ""),
		UseColors: getEnvAsBool("LOG_USE_COLORS", true),
	}
}

func loadAlarmConfig() AlarmConfig {
	return AlarmConfig{
		RecomputeInterval: getEnvAsDuration("ALARM_RECOMPUTE_INTERVAL", "10s"),
		ListLimit:         getEnvAsInt("ALARM_LIST_LIMIT", 200),
		// 0 keeps every alarm; cleanup only runs when an operator sets a retention.
		Retention:         getEnvAsDuration("ALARM_RETENTION", "0"),
		CleanupInterval:   getEnvAsDuration("ALARM_CLEANUP_INTERVAL", "1h"),
	}
}

func loadPlantConfig() PlantConfig {
	return PlantConfig{
		CatalogPath:       getEnv("TAG_CATALOG_PATH", ""),
		SimulatorEnabled:  getEnvAsBool("SIMULATOR_ENABLED", false),
		SimulatorInterval: getEnvAsDuration("SIMULATOR_INTERVAL", "2s"),
	}
}

func loadMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: getEnvAsBool("METRICS_ENABLED", true),
		Path:    getEnv("METRICS_PATH", "/metrics"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

func (c *Config) GetMQTTBroker() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTT.Broker, c.MQTT.Port)
}

func (c *Config) Validate() error {
	var errors []string

	if c.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD cannot be empty")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}

	if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
		errors = append(errors, "MQTT_PORT must be between 1 and 65535")
	}

	if c.Alarm.RecomputeInterval <= 0 {
		errors = append(errors, "ALARM_RECOMPUTE_INTERVAL must be positive")
	}

	if c.Alarm.ListLimit < 1 {
		errors = append(errors, "ALARM_LIST_LIMIT must be at least 1")
	}

	if c.Plant.SimulatorEnabled && c.Plant.SimulatorInterval <= 0 {
		errors = append(errors, "SIMULATOR_INTERVAL must be positive when the simulator is enabled")
	}

	if c.Security.AuthEnabled && c.Server.Environment == "production" && c.Security.JWTSecret == defaultJWTSecret {
		errors = append(errors, "JWT_SECRET must be changed in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║              FCC Monitor - Configuration                 ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Printf("Environment:     %s\n", c.Server.Environment)
	fmt.Printf("Server:          %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Database:        %s:%d/%s\n", c.Database.Host, c.Database.Port, c.Database.Database)
	fmt.Printf("MQTT Broker:     %s:%d (%s)\n", c.MQTT.Broker, c.MQTT.Port, c.MQTT.TagTopic)
	fmt.Printf("Auth:            %v\n", c.Security.AuthEnabled)
	fmt.Printf("Recompute:       every %s\n", c.Alarm.RecomputeInterval)
	fmt.Printf("Simulator:       %v\n", c.Plant.SimulatorEnabled)
	fmt.Println("──────────────────────────────────────────────────────────")
}
