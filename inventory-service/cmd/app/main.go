package main

import (
	"log"

	"github.com/director74/order_saga/inventory-service/config"
	"github.com/director74/order_saga/inventory-service/internal/app"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	inventoryApp, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Ошибка создания приложения: %v", err)
	}

	if err := inventoryApp.Run(); err != nil {
		log.Fatalf("Ошибка запуска приложения: %v", err)
	}
}
