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

	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/middleware"
	"github.com/director74/order_saga/pkg/rabbitmq"
	"github.com/director74/order_saga/product-validation-service/config"
	httpController "github.com/director74/order_saga/product-validation-service/internal/controller/http"
	rabbitmqController "github.com/director74/order_saga/product-validation-service/internal/controller/rabbitmq"
	"github.com/director74/order_saga/product-validation-service/internal/entity"
	"github.com/director74/order_saga/product-validation-service/internal/repo"
	"github.com/director74/order_saga/product-validation-service/internal/usecase"
)

// App представляет приложение сервиса проверки товаров
type App struct {
	config     *config.Config
	httpServer *http.Server
	db         *gorm.DB
	rabbitMQ   *rabbitmq.RabbitMQ
}

func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось подключиться к базе данных")
	}

	if err := database.AutoMigrateWithCleanup(db, &entity.Product{}, &entity.Validation{}); err != nil {
		return nil, errors.AppendPrefix(err, "не удалось выполнить миграцию")
	}

	rmq, err := messaging.InitRabbitMQ(cfg.RabbitMQ)
	if err != nil {
		database.CloseDB(db)
		return nil, errors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	validationRepo := repo.NewValidationRepo(db)
	validationUseCase := usecase.NewValidationUseCase(validationRepo, nil)

	if err := validationUseCase.SeedCatalog(context.Background(), cfg.SeedProducts); err != nil {
		log.Printf("ВНИМАНИЕ: %v", err)
	}

	publisher := messaging.NewEventPublisher(rmq, cfg.Saga.Exchange, cfg.Saga.PublishRetries, nil)
	sagaConsumer := rabbitmqController.NewSagaConsumer(validationUseCase, rmq, publisher, cfg.Saga.Exchange)
	if err := sagaConsumer.Setup(); err != nil {
		database.CloseDB(db)
		rmq.Close()
		return nil, errors.AppendPrefix(err, "ошибка при настройке обработчиков саги")
	}

	internalAuth := middleware.NewInternalAuthMiddleware(cfg.InternalAPI)

	router := errors.NewRouter()
	productHandler := httpController.NewProductHandler(validationUseCase, func(c *gin.Context) error {
		return database.Ping(c.Request.Context(), db)
	})
	productHandler.RegisterRoutes(router, internalAuth.Required())

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
		log.Printf("Сервис проверки товаров запущен на порту %s", a.config.HTTP.Port)
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

	log.Println("Сервис проверки товаров успешно завершен")
	return nil
}
