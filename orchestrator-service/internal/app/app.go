package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/director74/order_saga/orchestrator-service/config"
	httpController "github.com/director74/order_saga/orchestrator-service/internal/controller/http"
	rabbitmqController "github.com/director74/order_saga/orchestrator-service/internal/controller/rabbitmq"
	"github.com/director74/order_saga/orchestrator-service/internal/usecase"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/metrics"
	"github.com/director74/order_saga/pkg/middleware"
	"github.com/director74/order_saga/pkg/rabbitmq"
	"github.com/director74/order_saga/pkg/saga"
)

// App представляет приложение оркестратора
type App struct {
	config     *config.Config
	httpServer *http.Server
	rabbitMQ   *rabbitmq.RabbitMQ
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := log.New(os.Stdout, "[Orchestrator] [Saga] ", log.LstdFlags)

	// Таблица маршрутов строится один раз и проверяется на полноту
	routeTable, err := saga.NewRouteTable(cfg.Pipeline, log.New(os.Stdout, "[SagaRouter] ", log.LstdFlags))
	if err != nil {
		return nil, errors.AppendPrefix(err, "некорректная таблица маршрутов саги")
	}

	rmq, err := messaging.InitRabbitMQ(cfg.RabbitMQ)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	publisher := messaging.NewEventPublisher(rmq, cfg.Saga.Exchange, cfg.Saga.PublishRetries, logger)
	orchestrator := usecase.NewSagaOrchestrator(routeTable, publisher, logger, metrics.Saga())

	sagaConsumer := rabbitmqController.NewSagaConsumer(orchestrator, rmq, cfg.Saga.Exchange, logger)
	if err := sagaConsumer.Setup(); err != nil {
		rmq.Close()
		return nil, errors.AppendPrefix(err, "ошибка при настройке обработчиков саги")
	}

	internalAuth := middleware.NewInternalAuthMiddleware(cfg.InternalAPI)

	router := errors.NewRouter()
	httpController.NewSagaHandler(routeTable).RegisterRoutes(router, internalAuth.Required())

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		config:     cfg,
		httpServer: httpServer,
		rabbitMQ:   rmq,
	}, nil
}

// Run запускает приложение
func (a *App) Run() error {
	go func() {
		log.Printf("Оркестратор саги запущен на порту %s", a.config.HTTP.Port)
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

	if err := a.httpServer.Shutdown(ctx); err != nil {
		errGroup.AddPrefix(err, "ошибка при закрытии HTTP сервера")
	}

	if a.rabbitMQ != nil {
		errGroup.AddPrefix(a.rabbitMQ.Close(), "ошибка при закрытии соединения с RabbitMQ")
	}

	if err := errGroup.Err(); err != nil {
		errors.LogError(err, "Shutdown")
		return err
	}

	log.Println("Оркестратор успешно завершен")
	return nil
}
