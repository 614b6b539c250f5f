package config

import (
	"crypto/rand"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CommonConfig содержит общую конфигурацию, используемую во всех сервисах
type CommonConfig struct {
	HTTP     HTTPConfig
	Postgres PostgresConfig
	RabbitMQ RabbitMQConfig
	Saga     SagaConfig
}

// HTTPConfig содержит настройки HTTP сервера
type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig содержит настройки базы данных PostgreSQL
type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RabbitMQConfig содержит настройки RabbitMQ
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
	Prefetch int
}

// SagaConfig настройки топологии саги
type SagaConfig struct {
	// Exchange topic-exchange, через который ходят все события саги
	Exchange string
	// Pipeline порядок участников, например PRODUCT_VALIDATION,PAYMENT,INVENTORY
	Pipeline string
	// PublishRetries количество повторов публикации события
	PublishRetries int
}

// JWTConfig содержит настройки для JWT
type JWTConfig struct {
	SigningKey     string
	TokenTTL       time.Duration
	TokenIssuer    string
	TokenAudiences []string
}

// InternalAPIConfig настройки доступа к внутренним эндпоинтам
type InternalAPIConfig struct {
	TrustedNetworks []string
	APIKey          string
	HeaderName      string
}

// LoadCommonConfig загружает общую конфигурацию из переменных окружения
func LoadCommonConfig(serviceName string, port string) *CommonConfig {
	// Загружаем переменные окружения из .env файла, если он существует
	godotenv.Load()

	return &CommonConfig{
		HTTP: HTTPConfig{
			Port:         GetEnv("HTTP_PORT", port),
			ReadTimeout:  GetEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: GetEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            GetEnv("POSTGRES_HOST", "localhost"),
			Port:            GetEnv("POSTGRES_PORT", "5432"),
			User:            GetEnv("POSTGRES_USER", "postgres"),
			Password:        GetEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:          GetEnv("POSTGRES_DB", serviceName),
			SSLMode:         GetEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    GetEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    GetEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: GetEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     GetEnv("RABBITMQ_HOST", "localhost"),
			Port:     GetEnv("RABBITMQ_PORT", "5672"),
			User:     GetEnv("RABBITMQ_USER", "guest"),
			Password: GetEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    GetEnv("RABBITMQ_VHOST", "/"),
			Prefetch: GetEnvAsInt("RABBITMQ_PREFETCH", 1),
		},
		Saga: SagaConfig{
			Exchange:       GetEnv("SAGA_EXCHANGE", "saga_exchange"),
			Pipeline:       GetEnv("SAGA_PIPELINE", "PRODUCT_VALIDATION,PAYMENT,INVENTORY"),
			PublishRetries: GetEnvAsInt("SAGA_PUBLISH_RETRIES", 3),
		},
	}
}

// LoadJWTConfig загружает конфигурацию JWT из переменных окружения
func LoadJWTConfig(serviceName string) *JWTConfig {
	signingKey := GetEnv("JWT_SIGNING_KEY", "")
	if signingKey == "" {
		signingKey = GenerateRandomKey(32)
		log.Println("ВНИМАНИЕ: JWT_SIGNING_KEY не задан! Сгенерирован случайный ключ, токены других сервисов не будут приниматься.")
	}

	return &JWTConfig{
		SigningKey:     signingKey,
		TokenTTL:       GetEnvAsDuration("JWT_TOKEN_TTL", 24*time.Hour),
		TokenIssuer:    GetEnv("JWT_TOKEN_ISSUER", serviceName),
		TokenAudiences: GetEnvAsSlice("JWT_TOKEN_AUDIENCES", []string{"order-saga"}),
	}
}

// LoadInternalAPIConfig загружает настройки внутреннего API.
// Без INTERNAL_API_KEY доступ разрешается только из доверенных сетей.
func LoadInternalAPIConfig() InternalAPIConfig {
	return InternalAPIConfig{
		TrustedNetworks: GetEnvAsSlice("INTERNAL_TRUSTED_NETWORKS", []string{
			"10.0.0.0/8",     // Внутренняя сеть Kubernetes
			"172.16.0.0/12",  // Docker сеть по умолчанию
			"192.168.0.0/16", // Локальная сеть
			"127.0.0.0/8",    // Локальный хост
		}),
		APIKey:     GetEnv("INTERNAL_API_KEY", ""),
		HeaderName: GetEnv("INTERNAL_API_HEADER", "X-Internal-API-Key"),
	}
}

// GenerateRandomKey генерирует случайный ключ заданной длины
func GenerateRandomKey(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	limit := big.NewInt(int64(len(charset)))

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			n = big.NewInt(int64(time.Now().UnixNano() % int64(len(charset))))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// GetEnvAsSlice читает список значений, разделённых запятыми
func GetEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := strings.TrimSpace(GetEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
