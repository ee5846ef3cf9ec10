package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Mail       MailConfig       `mapstructure:"mail"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// MailConfig holds mail provider configuration. Provider selects the
// implementation: "smtp" or "gmail".
type MailConfig struct {
	Provider string `mapstructure:"provider"`
	From     string `mapstructure:"from"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`

	GmailClientID     string `mapstructure:"gmail_client_id"`
	GmailClientSecret string `mapstructure:"gmail_client_secret"`
	GmailRefreshToken string `mapstructure:"gmail_refresh_token"`
	GmailUserEmail    string `mapstructure:"gmail_user_email"`
}

// DispatcherConfig holds dispatch worker configuration
type DispatcherConfig struct {
	IntervalSeconds int           `mapstructure:"interval_seconds"`
	BatchSize       int           `mapstructure:"batch_size"`
	SendTimeout     time.Duration `mapstructure:"send_timeout"`
	SendsPerSecond  int           `mapstructure:"sends_per_second"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("mail.provider", "smtp")
	viper.SetDefault("mail.smtp_host", "localhost")
	viper.SetDefault("mail.smtp_port", 587)

	viper.SetDefault("dispatcher.interval_seconds", 30)
	viper.SetDefault("dispatcher.batch_size", 10)
	viper.SetDefault("dispatcher.send_timeout", "15s")
	viper.SetDefault("dispatcher.sends_per_second", 10)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Mail
	viper.BindEnv("mail.provider", "MAIL_PROVIDER")
	viper.BindEnv("mail.from", "MAIL_FROM")
	viper.BindEnv("mail.smtp_host", "SMTP_HOST")
	viper.BindEnv("mail.smtp_port", "SMTP_PORT")
	viper.BindEnv("mail.smtp_user", "SMTP_USER")
	viper.BindEnv("mail.smtp_password", "SMTP_PASSWORD")
	viper.BindEnv("mail.gmail_client_id", "GMAIL_CLIENT_ID")
	viper.BindEnv("mail.gmail_client_secret", "GMAIL_CLIENT_SECRET")
	viper.BindEnv("mail.gmail_refresh_token", "GMAIL_REFRESH_TOKEN")
	viper.BindEnv("mail.gmail_user_email", "GMAIL_USER_EMAIL")

	// Dispatcher
	viper.BindEnv("dispatcher.interval_seconds", "DISPATCHER_INTERVAL_SECONDS")
	viper.BindEnv("dispatcher.batch_size", "DISPATCHER_BATCH_SIZE")
	viper.BindEnv("dispatcher.send_timeout", "DISPATCHER_SEND_TIMEOUT")
	viper.BindEnv("dispatcher.sends_per_second", "DISPATCHER_SENDS_PER_SECOND")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.Mail.From == "" {
		return fmt.Errorf("mail from address is required")
	}

	switch c.Mail.Provider {
	case "smtp":
		if c.Mail.SMTPHost == "" || c.Mail.SMTPPort == 0 {
			return fmt.Errorf("SMTP host and port are required when provider is smtp")
		}
	case "gmail":
		if c.Mail.GmailClientID == "" || c.Mail.GmailClientSecret == "" || c.Mail.GmailRefreshToken == "" {
			return fmt.Errorf("Gmail OAuth2 credentials are required when provider is gmail")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}

	if c.Dispatcher.IntervalSeconds <= 0 {
		return fmt.Errorf("dispatcher interval must be greater than 0")
	}
	if c.Dispatcher.BatchSize <= 0 {
		return fmt.Errorf("dispatcher batch size must be greater than 0")
	}

	return nil
}
