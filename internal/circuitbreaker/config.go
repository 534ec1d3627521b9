package circuitbreaker

import (
	"os"
	"strconv"
	"time"
)

// BreakerConfig is the environment-tunable shape behind Config, kept
// separate so the zero-dependency env parsing lives apart from the
// breaker's own state machine.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// GetKVStoreConfig returns the circuit breaker configuration guarding the
// KV store client, overridable via environment variables.
func GetKVStoreConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      getEnvUint32("CB_KV_MAX_REQUESTS", 5),
		Interval:         getEnvDuration("CB_KV_INTERVAL", 30*time.Second),
		Timeout:          getEnvDuration("CB_KV_TIMEOUT", 15*time.Second),
		FailureThreshold: getEnvUint32("CB_KV_FAILURE_THRESHOLD", 3),
		SuccessThreshold: getEnvUint32("CB_KV_SUCCESS_THRESHOLD", 2),
	}
}

// GetHTTPConfig returns the circuit breaker configuration guarding outbound
// HTTP calls to the embedding provider and the vector index.
func GetHTTPConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      getEnvUint32("CB_HTTP_MAX_REQUESTS", 5),
		Interval:         getEnvDuration("CB_HTTP_INTERVAL", 30*time.Second),
		Timeout:          getEnvDuration("CB_HTTP_TIMEOUT", 15*time.Second),
		FailureThreshold: getEnvUint32("CB_HTTP_FAILURE_THRESHOLD", 3),
		SuccessThreshold: getEnvUint32("CB_HTTP_SUCCESS_THRESHOLD", 2),
	}
}

// ToConfig converts a BreakerConfig into the breaker's runtime Config.
func (bc BreakerConfig) ToConfig() Config {
	return Config{
		MaxRequests:      bc.MaxRequests,
		Interval:         bc.Interval,
		Timeout:          bc.Timeout,
		FailureThreshold: bc.FailureThreshold,
		SuccessThreshold: bc.SuccessThreshold,
		OnStateChange:    nil, // set by the wrapper that owns metrics
	}
}

func getEnvUint32(key string, defaultValue uint32) uint32 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 32); err == nil {
			return uint32(parsed)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}
