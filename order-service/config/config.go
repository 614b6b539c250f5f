package config

import (
	"github.com/director74/order_saga/pkg/config"
)

// Config содержит конфигурацию сервиса заказов
type Config struct {
	HTTP        config.HTTPConfig
	Postgres    config.PostgresConfig
	RabbitMQ    config.RabbitMQConfig
	Saga        config.SagaConfig
	JWT         config.JWTConfig
	InternalAPI config.InternalAPIConfig
}

func NewConfig() (*Config, error) {
	// Загружаем общую конфигурацию
	commonConfig := config.LoadCommonConfig("orders", "8080")
	jwtConfig := config.LoadJWTConfig("order-service")

	return &Config{
		HTTP:        commonConfig.HTTP,
		Postgres:    commonConfig.Postgres,
		RabbitMQ:    commonConfig.RabbitMQ,
		Saga:        commonConfig.Saga,
		JWT:         *jwtConfig,
		InternalAPI: config.LoadInternalAPIConfig(),
	}, nil
}
