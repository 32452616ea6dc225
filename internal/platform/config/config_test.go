package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, AIProviderStatic, cfg.AIProvider)
	require.Equal(t, 5, cfg.CarePlanRateLimit)
	require.Equal(t, 60*time.Second, cfg.CarePlanRateWindow)
	require.Equal(t, 20*time.Second, cfg.AITimeout)
	require.False(t, cfg.AuthEnabled())
}

func TestFromEnv_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
}

func TestLocation(t *testing.T) {
	cfg := Config{Timezone: "America/Lima"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "America/Lima", loc.String())

	cfg.Timezone = "Not/AZone"
	_, err = cfg.Location()
	require.Error(t, err)

	cfg.Timezone = "Local"
	loc, err = cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)
}
