package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"project-analyzer-web/config"
)

func TestBuildConnectionString(t *testing.T) {
	dsn := BuildConnectionString(&config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Database: "analyzer",
		User:     "web",
		Password: "secret",
		SSLMode:  "require",
	})

	assert.Equal(t, "host=db.internal port=5433 dbname=analyzer user=web password=secret sslmode=require", dsn)
}
