package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/music-school-api/pkg/config"
	"github.com/noah-isme/music-school-api/pkg/database"
)

func TestLogSchemaVersion(t *testing.T) {
	db, err := database.NewSQLite(config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(context.Background(), db))

	core, logs := observer.New(zapcore.InfoLevel)
	logSchemaVersion(context.Background(), db, zap.New(core))

	entries := logs.FilterMessage("database migrated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["version"])
}

func TestLogSchemaVersionWarnsOnFailure(t *testing.T) {
	db, err := database.NewSQLite(config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	core, logs := observer.New(zapcore.InfoLevel)
	logSchemaVersion(context.Background(), db, zap.New(core))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "failed to read schema version", entry.Message)
	assert.Contains(t, entry.ContextMap(), "error")
}
