package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/director74/order_saga/inventory-service/config"
	httpController "github.com/director74/order_saga/inventory-service/internal/controller/http"
	rabbitmqController "github.com/director74/order_saga/inventory-service/internal/controller/rabbitmq"
	"github.com/director74/order_saga/inventory-service/internal/entity"
	"github.com/director74/order_saga/inventory-service/internal/repo"
	"github.com/director74/order_saga/inventory-service/internal/usecase"
	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/middleware"
	"github.com/director74/order_saga/pkg/rabbitmq"
)

// App представляет приложение сервиса склада
type App struct {
	config     *config.Config
	httpServer *http.Server
	db         *gorm.DB
	rabbitMQ   *rabbitmq.RabbitMQ
}

// NewApp создает новое приложение сервиса склада
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось подключиться к базе данных")
	}

	if err := database.AutoMigrateWithCleanup(db, &entity.Inventory{}, &entity.OrderInventory{}); err != nil {
		return nil, errors.AppendPrefix(err, "не удалось выполнить миграцию")
	}

	rmq, err := messaging.InitRabbitMQ(cfg.RabbitMQ)
	if err != nil {
		database.CloseDB(db)
		return nil, errors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	inventoryRepo := repo.NewInventoryRepo(db)
	inventoryUseCase := usecase.NewInventoryUseCase(inventoryRepo, nil)

	if err := inventoryUseCase.SeedStock(context.Background(), cfg.Inventory.SeedStock); err != nil {
		log.Printf("ВНИМАНИЕ: %v", err)
	}

	publisher := messaging.NewEventPublisher(rmq, cfg.Saga.Exchange, cfg.Saga.PublishRetries, nil)
	sagaConsumer := rabbitmqController.NewSagaConsumer(inventoryUseCase, rmq, publisher, cfg.Saga.Exchange)
	if err := sagaConsumer.Setup(); err != nil {
		database.CloseDB(db)
		rmq.Close()
		return nil, errors.AppendPrefix(err, "ошибка при настройке обработчиков саги")
	}

	internalAuth := middleware.NewInternalAuthMiddleware(cfg.InternalAPI)

	router := errors.NewRouter()
	inventoryHandler := httpController.NewInventoryHandler(inventoryUseCase, func(c *gin.Context) error {
		return database.Ping(c.Request.Context(), db)
	})
	inventoryHandler.RegisterRoutes(router, internalAuth.Required())

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		config:     cfg,
		httpServer: httpServer,
		db:         db,
		rabbitMQ:   rmq,
	}, nil
}

// Run запускает приложение
func (a *App) Run() error {
	go func() {
		log.Printf("Сервис склада запущен на порту %s", a.config.HTTP.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Ошибка запуска HTTP сервера: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Получен сигнал завершения, закрываем приложение...")
	return a.Shutdown()
}

// Shutdown корректно завершает работу приложения
func (a *App) Shutdown() error {
	errGroup := errors.NewErrorGroup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errGroup.AddPrefix(a.httpServer.Shutdown(ctx), "ошибка при закрытии HTTP сервера")
	errGroup.AddPrefix(a.rabbitMQ.Close(), "ошибка при закрытии соединения с RabbitMQ")
	errGroup.AddPrefix(database.CloseDB(a.db), "ошибка при закрытии соединения с базой данных")

	if err := errGroup.Err(); err != nil {
		errors.LogError(err, "Shutdown")
		return err
	}

	log.Println("Сервис склада успешно завершен")
	return nil
}
