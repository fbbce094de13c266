package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "UTC", cfg.Display.Timezone)
	assert.Equal(t, int64(2*1024*1024), cfg.Uploads.MaxFileBytes)
	assert.Equal(t, 5, cfg.Uploads.MaxFiles)
	assert.Equal(t, 5, cfg.Dashboard.RecentLimit)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("UPSTREAM_BASE_URL", "https://backend.example.com/")
	v.Set("UPSTREAM_TIMEOUT", "not-a-duration")
	v.Set("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	v.Set("UPLOAD_MAX_BYTES", 0)

	cfg := fromViper(v)

	assert.Equal(t, "https://backend.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(2*1024*1024), cfg.Uploads.MaxFileBytes)
}
