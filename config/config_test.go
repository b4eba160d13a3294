package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MONGO_DB_NAME", "")
	t.Setenv("OPEN_TASK_READ", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "project_management", cfg.MongoDBName)
	assert.True(t, cfg.OpenTaskRead)
}

func TestLoadRequiredValues(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingMongoURI)

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadOpenTaskReadFlag(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OPEN_TASK_READ", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.OpenTaskRead)
}
