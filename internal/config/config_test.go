// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSNIncludesConnectTimeout(t *testing.T) {
	d := DatabaseConfig{
		Host:           "db.internal",
		Port:           "5432",
		User:           "mediakart",
		Password:       "s3cret",
		Database:       "mediakart",
		SSLMode:        "disable",
		ConnectTimeout: 5,
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=mediakart")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "connect_timeout=5")
}

func TestDSNOmitsUnsetConnectTimeout(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Database: "mediakart",
		SSLMode:  "disable",
	}

	assert.NotContains(t, d.DSN(), "connect_timeout")
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT: JWTConfig{
			SecretKey: "your-secret-key-change-in-production",
			TokenTTL:  24,
		},
		Database: DatabaseConfig{Password: "s3cret"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsEmptyDBPasswordInProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT: JWTConfig{
			SecretKey: "a-real-secret",
			TokenTTL:  24,
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveTokenTTL(t *testing.T) {
	cfg := &Config{
		Environment: "development",
		JWT:         JWTConfig{SecretKey: "a-real-secret", TokenTTL: 0},
	}
	assert.Error(t, cfg.Validate())
}
