package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	TLS        TLSConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	CORSOrigin string
	Storage    StorageConfig
	Mail       MailConfig
}

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type DatabaseConfig struct {
	Host string
	Port int
	Name string
}

type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	CookieName     string
	CookieSecure   bool
	GoogleClientID string
}

type StorageConfig struct {
	// Backend selects the object store: "minio", "gcs" or "" (uploads disabled).
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

type MailConfig struct {
	// Backend selects the broker: "rabbitmq", "pubsub" or "" (mail disabled).
	Backend  string
	Queue    string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL           string
	QueueDurable  bool
	PrefetchCount int
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("PORT", 3001),
		TLS: TLSConfig{
			Enabled:  getEnv("SSL", "0") == "1",
			CertFile: getEnv("CERT_LOCATION", ""),
			KeyFile:  getEnv("CERT_KEY_LOCATION", ""),
		},
		Database: DatabaseConfig{
			Host: getEnv("DB_HOST", "localhost"),
			Port: getEnvInt("DB_PORT", 27017),
			Name: getEnv("DB_NAME", "pantrypal"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			TokenTTL:       time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
			CookieName:     getEnv("TOKEN_COOKIE_NAME", "token"),
			CookieSecure:   getEnv("SSL", "0") == "1",
			GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", ""),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "pantrypal-images"),
				UseSSL:    getEnv("MINIO_USE_SSL", "0") == "1",
			},
			GCS: GCSConfig{
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				Bucket:          getEnv("GCS_BUCKET", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		Mail: MailConfig{
			Backend: getEnv("MAIL_BACKEND", ""),
			Queue:   getEnv("MAIL_QUEUE", "account-mail"),
			RabbitMQ: RabbitMQConfig{
				URL:           getEnv("RABBITMQ_URL", ""),
				QueueDurable:  getEnv("RABBITMQ_QUEUE_DURABLE", "1") == "1",
				PrefetchCount: getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}
