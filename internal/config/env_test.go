package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	// An empty value reads as unset for the numeric and duration keys.
	t.Setenv("DEFAULT_MAX_WORKERS", "")
	t.Setenv("QUEUE_WORKERS", "")
	t.Setenv("ITEM_TIMEOUT", "")
	t.Setenv("JOB_RETENTION", "")
	t.Setenv("REAPER_INTERVAL", "")

	cfg := LoadConfig()
	assert.Equal(t, 3, cfg.DefaultWorkers)
	assert.Equal(t, 2, cfg.QueueWorkers)
	assert.Equal(t, time.Duration(0), cfg.ItemTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JobRetention)
	assert.Equal(t, 10*time.Minute, cfg.ReaperInterval)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("API_SECRET_KEY", "shh")
	t.Setenv("DEFAULT_MAX_WORKERS", "7")
	t.Setenv("QUEUE_WORKERS", "4")
	t.Setenv("ITEM_TIMEOUT", "45s")
	t.Setenv("JOB_RETENTION", "2h")
	t.Setenv("REAPER_INTERVAL", "1m")
	t.Setenv("APP_ENV", "development")

	cfg := LoadConfig()
	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, "shh", cfg.APISecretKey)
	assert.Equal(t, 7, cfg.DefaultWorkers)
	assert.Equal(t, 4, cfg.QueueWorkers)
	assert.Equal(t, 45*time.Second, cfg.ItemTimeout)
	assert.Equal(t, 2*time.Hour, cfg.JobRetention)
	assert.Equal(t, time.Minute, cfg.ReaperInterval)
	assert.True(t, cfg.Development)
}

func TestLoadConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("DEFAULT_MAX_WORKERS", "lots")
	t.Setenv("ITEM_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 3, cfg.DefaultWorkers)
	assert.Equal(t, time.Duration(0), cfg.ItemTimeout)
}
