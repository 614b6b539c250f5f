package config

import (
	"fmt"

	"github.com/director74/order_saga/pkg/config"
	"github.com/director74/order_saga/pkg/saga"
)

// Config содержит конфигурацию оркестратора саги
type Config struct {
	HTTP        config.HTTPConfig
	RabbitMQ    config.RabbitMQConfig
	Saga        config.SagaConfig
	InternalAPI config.InternalAPIConfig
	// Pipeline разобранный порядок участников саги
	Pipeline []saga.Source
}

func NewConfig() (*Config, error) {
	commonConfig := config.LoadCommonConfig("orchestrator", "8080")

	pipeline, err := saga.ParsePipeline(commonConfig.Saga.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("некорректный SAGA_PIPELINE: %w", err)
	}

	return &Config{
		HTTP:        commonConfig.HTTP,
		RabbitMQ:    commonConfig.RabbitMQ,
		Saga:        commonConfig.Saga,
		InternalAPI: config.LoadInternalAPIConfig(),
		Pipeline:    pipeline,
	}, nil
}
