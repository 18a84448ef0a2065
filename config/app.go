package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// App holds the settings that are not tied to a backing store.
type App struct {
	Port string

	JWTSecret string
	JWTTTL    time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OracleTimeout time.Duration

	VertexProject  string
	VertexLocation string

	GCSBucket string
	GCSPrefix string
	UploadDir string

	RecaptchaSecret string
	SpeechEnabled   bool

	SessionTTL time.Duration

	AdminEmail    string
	AdminPassword string

	CORSOrigins []string
	SeedFile    string

	ChatLogWorkers int
}

func LoadApp() App {
	return App{
		Port: env("PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    envDuration("JWT_TTL", 24*time.Hour),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		OracleTimeout: envDuration("ORACLE_TIMEOUT", 30*time.Second),

		VertexProject:  os.Getenv("VERTEX_PROJECT"),
		VertexLocation: env("VERTEX_LOCATION", "us-central1"),

		GCSBucket: os.Getenv("GCS_BUCKET"),
		GCSPrefix: env("GCS_PREFIX", "uploads/"),
		UploadDir: env("UPLOAD_DIR", "uploads"),

		RecaptchaSecret: os.Getenv("RECAPTCHA_SECRET"),
		SpeechEnabled:   envBool("SPEECH_ENABLED"),

		SessionTTL: envDuration("SESSION_TTL", 24*time.Hour),

		AdminEmail:    os.Getenv("ADMIN_BOOTSTRAP_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"),

		CORSOrigins: envList("CORS_ORIGINS"),
		SeedFile:    os.Getenv("SEED_FILE"),

		ChatLogWorkers: envInt("CHATLOG_WORKERS", 2),
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

func envList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
