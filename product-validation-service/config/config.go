package config

import (
	"github.com/director74/order_saga/pkg/config"
)

// Config содержит конфигурацию сервиса проверки товаров
type Config struct {
	HTTP        config.HTTPConfig
	Postgres    config.PostgresConfig
	RabbitMQ    config.RabbitMQConfig
	Saga        config.SagaConfig
	InternalAPI config.InternalAPIConfig
	// SeedProducts коды товаров, которые добавляются в каталог при старте
	SeedProducts []string
}

func NewConfig() (*Config, error) {
	commonConfig := config.LoadCommonConfig("product_validation", "8090")

	return &Config{
		HTTP:         commonConfig.HTTP,
		Postgres:     commonConfig.Postgres,
		RabbitMQ:     commonConfig.RabbitMQ,
		Saga:         commonConfig.Saga,
		InternalAPI:  config.LoadInternalAPIConfig(),
		SeedProducts: config.GetEnvAsSlice("SEED_PRODUCTS", []string{"COMIC_BOOKS", "BOOKS", "MOVIES", "MUSIC"}),
	}, nil
}
