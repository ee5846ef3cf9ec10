package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
		Mail: MailConfig{
			Provider: "smtp",
			From:     "noreply@school.test",
			SMTPHost: "localhost",
			SMTPPort: 587,
		},
		Dispatcher: DispatcherConfig{
			IntervalSeconds: 30,
			BatchSize:       10,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	config := validConfig()
	assert.NoError(t, config.Validate())

	invalidConfig := &Config{
		Server: ServerConfig{
			Port: "",
		},
	}
	assert.Error(t, invalidConfig.Validate())
}

func TestConfigValidationMailProvider(t *testing.T) {
	config := validConfig()
	config.Mail.Provider = "carrier-pigeon"
	assert.Error(t, config.Validate())

	config = validConfig()
	config.Mail.Provider = "gmail"
	assert.Error(t, config.Validate(), "gmail provider without credentials must fail")

	config.Mail.GmailClientID = "id"
	config.Mail.GmailClientSecret = "secret"
	config.Mail.GmailRefreshToken = "token"
	assert.NoError(t, config.Validate())
}

func TestConfigValidationDispatcher(t *testing.T) {
	config := validConfig()
	config.Dispatcher.IntervalSeconds = 0
	assert.Error(t, config.Validate())

	config = validConfig()
	config.Dispatcher.BatchSize = 0
	assert.Error(t, config.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	config := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := config.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}
