package config

import (
	"github.com/director74/order_saga/pkg/config"
)

// Config содержит конфигурацию платежного сервиса
type Config struct {
	HTTP     config.HTTPConfig
	Postgres config.PostgresConfig
	RabbitMQ config.RabbitMQConfig
	Saga     config.SagaConfig
	JWT      config.JWTConfig
	// MinAmount минимальная сумма заказа, которую можно оплатить
	MinAmount float64
}

// NewConfig создает новую конфигурацию платежного сервиса
func NewConfig() (*Config, error) {
	commonConfig := config.LoadCommonConfig("payments", "8091")
	jwtConfig := config.LoadJWTConfig("order-service")

	return &Config{
		HTTP:      commonConfig.HTTP,
		Postgres:  commonConfig.Postgres,
		RabbitMQ:  commonConfig.RabbitMQ,
		Saga:      commonConfig.Saga,
		JWT:       *jwtConfig,
		MinAmount: config.GetEnvAsFloat("PAYMENT_MIN_AMOUNT", 0.1),
	}, nil
}
