package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/director74/order_saga/payment-service/config"
	httpController "github.com/director74/order_saga/payment-service/internal/controller/http"
	rmqController "github.com/director74/order_saga/payment-service/internal/controller/rabbitmq"
	"github.com/director74/order_saga/payment-service/internal/entity"
	"github.com/director74/order_saga/payment-service/internal/repo"
	"github.com/director74/order_saga/payment-service/internal/usecase"
	"github.com/director74/order_saga/pkg/auth"
	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/rabbitmq"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App представляет основное приложение платежного сервиса
type App struct {
	config   *config.Config
	db       *gorm.DB
	rabbitMQ *rabbitmq.RabbitMQ
	server   *http.Server
}

// NewApp создает новое приложение с указанной конфигурацией
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось подключиться к базе данных")
	}

	if err := database.AutoMigrateWithCleanup(db, &entity.Payment{}); err != nil {
		return nil, errors.AppendPrefix(err, "не удалось выполнить миграцию")
	}

	rmq, err := messaging.InitRabbitMQ(cfg.RabbitMQ)
	if err != nil {
		database.CloseDB(db)
		return nil, errors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	paymentRepo := repo.NewPaymentRepository(db)
	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, cfg.MinAmount, nil)

	publisher := messaging.NewEventPublisher(rmq, cfg.Saga.Exchange, cfg.Saga.PublishRetries, nil)
	sagaConsumer := rmqController.NewSagaConsumer(paymentUseCase, rmq, publisher, cfg.Saga.Exchange)
	if err := sagaConsumer.Setup(); err != nil {
		database.CloseDB(db)
		rmq.Close()
		return nil, errors.AppendPrefix(err, "ошибка при настройке обработчиков саги")
	}

	jwtManager := auth.NewJWTManager(auth.NewConfig(cfg.JWT))
	authMiddleware := auth.NewAuthMiddleware(jwtManager)

	router := errors.NewRouter()
	paymentHandler := httpController.NewPaymentHandler(paymentUseCase, authMiddleware, func(c *gin.Context) error {
		return database.Ping(c.Request.Context(), db)
	})
	paymentHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		config:   cfg,
		db:       db,
		rabbitMQ: rmq,
		server:   server,
	}, nil
}

// Run запускает приложение
func (a *App) Run() error {
	go func() {
		log.Printf("Платежный сервис запущен на порту %s", a.config.HTTP.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	errGroup.AddPrefix(a.server.Shutdown(ctx), "ошибка при закрытии HTTP сервера")
	errGroup.AddPrefix(a.rabbitMQ.Close(), "ошибка при закрытии соединения с RabbitMQ")
	errGroup.AddPrefix(database.CloseDB(a.db), "ошибка при закрытии соединения с базой данных")

	if err := errGroup.Err(); err != nil {
		errors.LogError(err, "Shutdown")
		return err
	}

	log.Println("Платежный сервис успешно завершен")
	return nil
}
