package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/director74/order_saga/pkg/config"
)

// Config содержит конфигурацию сервиса склада
type Config struct {
	HTTP        config.HTTPConfig
	Postgres    config.PostgresConfig
	RabbitMQ    config.RabbitMQConfig
	Saga        config.SagaConfig
	InternalAPI config.InternalAPIConfig
	Inventory   InventoryConfig
}

// InventoryConfig содержит специфичные настройки склада
type InventoryConfig struct {
	// SeedStock начальные остатки, код товара -> количество
	SeedStock map[string]int
}

// NewConfig создает новую конфигурацию сервиса склада
func NewConfig() (*Config, error) {
	commonConfig := config.LoadCommonConfig("inventory", "8092")

	inventoryConfig, err := loadInventoryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTP:        commonConfig.HTTP,
		Postgres:    commonConfig.Postgres,
		RabbitMQ:    commonConfig.RabbitMQ,
		Saga:        commonConfig.Saga,
		InternalAPI: config.LoadInternalAPIConfig(),
		Inventory:   inventoryConfig,
	}, nil
}

// loadInventoryConfig загружает начальные остатки из SEED_STOCK в формате CODE=QTY,CODE=QTY
func loadInventoryConfig() (InventoryConfig, error) {
	entries := config.GetEnvAsSlice("SEED_STOCK", []string{"COMIC_BOOKS=10", "BOOKS=10", "MOVIES=10", "MUSIC=10"})
	stock, err := ParseSeedStock(entries)
	if err != nil {
		return InventoryConfig{}, err
	}
	return InventoryConfig{SeedStock: stock}, nil
}

// ParseSeedStock разбирает записи вида CODE=QTY
func ParseSeedStock(entries []string) (map[string]int, error) {
	stock := make(map[string]int, len(entries))
	for _, entry := range entries {
		code, qty, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || code == "" {
			return nil, fmt.Errorf("неверная запись SEED_STOCK: %q", entry)
		}
		available, err := strconv.Atoi(qty)
		if err != nil || available < 0 {
			return nil, fmt.Errorf("неверное количество в записи SEED_STOCK: %q", entry)
		}
		stock[code] = available
	}
	return stock, nil
}
