package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "trims and skips blanks", in: " a:1 , ,b:2,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("BS_TEST_STR", "value")
	t.Setenv("BS_TEST_INT", "42")
	t.Setenv("BS_TEST_BAD_INT", "forty")
	t.Setenv("BS_TEST_BOOL", "false")
	t.Setenv("BS_TEST_SECONDS", "7")
	t.Setenv("BS_TEST_DECIMAL", "50.5")

	assert.Equal(t, "value", EnvDefault("BS_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("BS_TEST_MISSING", "def"))
	assert.Equal(t, 42, EnvIntDefault("BS_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("BS_TEST_BAD_INT", 1))
	assert.False(t, EnvBoolDefault("BS_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("BS_TEST_MISSING", true))
	assert.Equal(t, 7*time.Second, EnvSecondsDefault("BS_TEST_SECONDS", time.Second))
	assert.Equal(t, time.Second, EnvSecondsDefault("BS_TEST_MISSING", time.Second))
	assert.True(t, decimal.RequireFromString("50.5").Equal(EnvDecimalDefault("BS_TEST_DECIMAL", decimal.Zero)))
}

func TestMustEnv(t *testing.T) {
	t.Setenv("BS_TEST_SECRET", "s3cret")

	assert.Equal(t, "s3cret", MustEnv("BS_TEST_SECRET"))
	assert.Equal(t, []byte("s3cret"), MustEnvBytes("BS_TEST_SECRET"))
}
