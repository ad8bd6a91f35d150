package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvStringOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", GetEnvStringOrDefault("ENV_TEST_MISSING", "fallback"))

	t.Setenv("ENV_TEST_STRING", "  value  ")
	assert.Equal(t, "value", GetEnvStringOrDefault("ENV_TEST_STRING", "fallback"))

	t.Setenv("ENV_TEST_STRING", "   ")
	assert.Equal(t, "fallback", GetEnvStringOrDefault("ENV_TEST_STRING", "fallback"),
		"whitespace-only values fall back to the default")
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	assert.True(t, GetEnvBoolOrDefault("ENV_TEST_MISSING", true))

	t.Setenv("ENV_TEST_BOOL", "false")
	assert.False(t, GetEnvBoolOrDefault("ENV_TEST_BOOL", true))

	t.Setenv("ENV_TEST_BOOL", "not-a-bool")
	assert.True(t, GetEnvBoolOrDefault("ENV_TEST_BOOL", true))
}

func TestGetEnvIntOrDefault(t *testing.T) {
	assert.Equal(t, 7, GetEnvIntOrDefault("ENV_TEST_MISSING", 7))

	t.Setenv("ENV_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvIntOrDefault("ENV_TEST_INT", 7))
}

func TestGetEnvFloat64OrDefault(t *testing.T) {
	assert.Equal(t, 0.5, GetEnvFloat64OrDefault("ENV_TEST_MISSING", 0.5))

	t.Setenv("ENV_TEST_FLOAT", "0.75")
	assert.Equal(t, 0.75, GetEnvFloat64OrDefault("ENV_TEST_FLOAT", 0.5))
}

func TestGetEnvDurationOrDefault(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetEnvDurationOrDefault("ENV_TEST_MISSING", 30*time.Second))

	t.Setenv("ENV_TEST_DURATION", "2m")
	assert.Equal(t, 2*time.Minute, GetEnvDurationOrDefault("ENV_TEST_DURATION", 30*time.Second))

	t.Setenv("ENV_TEST_DURATION", "nonsense")
	assert.Equal(t, 30*time.Second, GetEnvDurationOrDefault("ENV_TEST_DURATION", 30*time.Second))
}
