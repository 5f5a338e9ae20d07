package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// MalformedPolicy controls what the consumer does with a queue message
// whose envelope cannot be decoded.
type MalformedPolicy string

const (
	// MalformedDrop consumes the message without retry. Avoids poison-message
	// redelivery loops at the cost of silently losing the message.
	MalformedDrop MalformedPolicy = "drop"
	// MalformedRetry leaves the message unacknowledged so the queue
	// redelivers it and eventually dead-letters it.
	MalformedRetry MalformedPolicy = "retry"
)

// Config holds pipeline configuration.
type Config struct {
	AWSRegion         string
	Bucket            string
	TableName         string
	QueueURL          string
	SNSTopicARN       string
	SNSRoleARN        string
	MalformedPolicy   MalformedPolicy
	WorkerConcurrency int
	VisibilitySeconds int
	ShutdownSeconds   int
	OpsPort           string
	Env               string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		Bucket:            getEnv("RP_BUCKET", ""),
		TableName:         getEnv("RP_TABLE_NAME", ""),
		QueueURL:          getEnv("RP_SQS_QUEUE_URL", ""),
		SNSTopicARN:       getEnv("RP_SNS_TOPIC_ARN", ""),
		SNSRoleARN:        getEnv("RP_SNS_ROLE_ARN", ""),
		MalformedPolicy:   normalizePolicy(getEnv("RP_MALFORMED_POLICY", string(MalformedDrop))),
		WorkerConcurrency: getEnvInt("RP_WORKER_CONCURRENCY", 4),
		VisibilitySeconds: getEnvInt("RP_SQS_VISIBILITY_TIMEOUT_SECONDS", 300),
		ShutdownSeconds:   getEnvInt("RP_SHUTDOWN_TIMEOUT_SECONDS", 30),
		OpsPort:           getEnv("RP_OPS_PORT", "8081"),
		Env:               getEnv("ENV", "dev"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func normalizePolicy(raw string) MalformedPolicy {
	switch MalformedPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case MalformedRetry:
		return MalformedRetry
	default:
		return MalformedDrop
	}
}

// loadEnvFiles loads simple KEY=VALUE pairs from the given files if they
// exist. Best-effort for local development; errors are ignored.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, val, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			val = strings.Trim(strings.TrimSpace(val), `"`)
			if key != "" {
				os.Setenv(key, val)
			}
		}
		_ = f.Close()
	}
}
