package config

import (
	"log"
	"os"
	"slices"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	CORSMaxAge      time.Duration

	DocStoreType       string
	DatabaseURL        string
	FirestoreProjectID string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	GCSBucket       string
	GCSPrefix       string

	SyncQueueURL string

	Flash FlashConfig
}

// FlashConfig holds the handoff timings and the agent socket location.
type FlashConfig struct {
	AgentSocket     string
	ProbeTimeout    time.Duration
	DispatchTimeout time.Duration
	UploadDeadline  time.Duration
}

// DefaultFlashConfig returns the timings used when nothing is configured.
func DefaultFlashConfig() FlashConfig {
	return FlashConfig{
		AgentSocket:     defaultAgentSocket(),
		ProbeTimeout:    1500 * time.Millisecond,
		DispatchTimeout: 5 * time.Second,
		UploadDeadline:  10 * time.Second,
	}
}

// Load reads configuration from environment variables with sensible defaults.
// CONFIG_FILE may point at a YAML file whose flash section sits underneath
// the environment: env vars always win.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	docStore := normalizeDocStoreType(getEnv("DOC_STORE", ""), dbURL)

	if env == "production" && docStore == "memory" {
		log.Printf("DOC_STORE=memory in production; sessions will not survive a restart")
	}

	corsOrigins := splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"))
	if env == "production" && slices.Contains(corsOrigins, "*") {
		log.Printf("CORS_ALLOW_ORIGINS=* in production; any site may call the API without credentials")
	}

	flash := DefaultFlashConfig()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		overlay, err := loadFile(path)
		if err != nil {
			log.Printf("config file %s ignored: %v", path, err)
		} else {
			flash = overlay.Flash.over(flash)
		}
	}
	flash.AgentSocket = getEnv("AGENT_SOCKET", flash.AgentSocket)
	flash.ProbeTimeout = getDuration("FLASH_PROBE_TIMEOUT", flash.ProbeTimeout)
	flash.DispatchTimeout = getDuration("FLASH_DISPATCH_TIMEOUT", flash.DispatchTimeout)
	flash.UploadDeadline = getDuration("FLASH_UPLOAD_DEADLINE", flash.UploadDeadline)

	return Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		CORSAllowOrigin:    corsOrigins,
		CORSMaxAge:         getDuration("CORS_MAX_AGE", 10*time.Minute),
		DocStoreType:       docStore,
		DatabaseURL:        dbURL,
		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSPrefix:          getEnv("GCS_PREFIX", ""),
		SyncQueueURL:       getEnv("FLASH_SQS_QUEUE_URL", ""),
		Flash:              flash,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s=%q is not a positive duration; using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "gcs":
		return "gcs"
	default:
		return "local"
	}
}

// normalizeDocStoreType defaults to postgres when a DATABASE_URL is set.
func normalizeDocStoreType(raw, databaseURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "firestore":
		return "firestore"
	case "memory":
		return "memory"
	}
	if strings.TrimSpace(databaseURL) != "" {
		return "postgres"
	}
	return "memory"
}

func defaultAgentSocket() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return strings.TrimRight(dir, "/") + "/flash-agent.sock"
	}
	return os.TempDir() + "/flash-agent.sock"
}
