package config

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
)

func TestLookupEnv(t *testing.T) {
	t.Setenv("TEST_STRING", "postgres:5432")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT64", "-7")
	t.Setenv("TEST_UINT64", "10000000000")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "150ms")

	check.Equal(t, "postgres:5432", LookupEnvString("TEST_STRING", "fallback"))
	check.Equal(t, 42, LookupEnvInt("TEST_INT", 0))
	check.Equal(t, int64(-7), LookupEnvInt64("TEST_INT64", 0))
	check.Equal(t, uint64(10_000_000_000), LookupEnvUint64("TEST_UINT64", 0))
	check.Equal(t, true, LookupEnvBool("TEST_BOOL", false))
	check.Equal(t, 150*time.Millisecond, LookupEnvDuration("TEST_DURATION", time.Second))
}

func TestLookupEnvDefaults(t *testing.T) {
	check.Equal(t, "fallback", LookupEnvString("TEST_UNSET", "fallback"))
	check.Equal(t, 5, LookupEnvInt("TEST_UNSET", 5))
	check.Equal(t, time.Second, LookupEnvDuration("TEST_UNSET", time.Second))
}

func TestLookupEnvMalformed(t *testing.T) {
	t.Setenv("TEST_MALFORMED", "not-a-number")

	// unparseable values fall back to the default instead of failing startup
	check.Equal(t, 5, LookupEnvInt("TEST_MALFORMED", 5))
	check.Equal(t, uint64(5), LookupEnvUint64("TEST_MALFORMED", 5))
	check.Equal(t, false, LookupEnvBool("TEST_MALFORMED", false))
	check.Equal(t, time.Second, LookupEnvDuration("TEST_MALFORMED", time.Second))
}
