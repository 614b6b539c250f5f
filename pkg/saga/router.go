package saga

import (
	"fmt"
	"log"
	"os"
	"sort"
)

// Direction классификация перехода саги
type Direction string

const (
	DirectionForward          Direction = "forward"
	DirectionSelfRollback     Direction = "self-rollback"
	DirectionBackwardRollback Direction = "backward-rollback"
	// DirectionFinish завершение саги оркестратором без отката участников
	DirectionFinish Direction = "finish"
)

// Route строка таблицы маршрутов
type Route struct {
	Source    Source    `json:"source"`
	Status    Status    `json:"status"`
	Topic     Topic     `json:"topic"`
	Direction Direction `json:"direction"`
}

type routeKey struct {
	source Source
	status Status
}

// DefaultPipeline порядок участников по умолчанию
func DefaultPipeline() []Source {
	return []Source{SourceProductValidation, SourcePayment, SourceInventory}
}

// RouteTable отображение (source, status) на следующий топик.
// Строится один раз при старте и дальше только читается.
type RouteTable struct {
	pipeline []Source
	routes   map[routeKey]Route
	logger   *log.Logger
}

// NewRouteTable строит таблицу маршрутов по порядку участников и проверяет её полноту
func NewRouteTable(pipeline []Source, logger *log.Logger) (*RouteTable, error) {
	if logger == nil {
		logger = log.New(os.Stdout, "[SagaRouter] ", log.LstdFlags)
	}

	if err := validatePipeline(pipeline); err != nil {
		return nil, err
	}

	t := &RouteTable{
		pipeline: append([]Source(nil), pipeline...),
		routes:   make(map[routeKey]Route),
		logger:   logger,
	}

	first, _ := ExecuteTopic(pipeline[0])
	t.add(SourceOrchestrator, StatusSuccess, first, DirectionForward)
	t.add(SourceOrchestrator, StatusFail, TopicFinishFail, DirectionFinish)
	t.add(SourceOrchestrator, StatusRollbackPending, TopicFinishFail, DirectionFinish)

	for i, source := range pipeline {
		next := TopicFinishSuccess
		if i+1 < len(pipeline) {
			next, _ = ExecuteTopic(pipeline[i+1])
		}
		previous := TopicFinishFail
		if i > 0 {
			previous, _ = CompensateTopic(pipeline[i-1])
		}
		own, _ := CompensateTopic(source)

		t.add(source, StatusSuccess, next, DirectionForward)
		t.add(source, StatusRollbackPending, own, DirectionSelfRollback)
		t.add(source, StatusFail, previous, DirectionBackwardRollback)
	}

	if err := t.validateTotality(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *RouteTable) add(source Source, status Status, topic Topic, direction Direction) {
	t.routes[routeKey{source, status}] = Route{
		Source:    source,
		Status:    status,
		Topic:     topic,
		Direction: direction,
	}
}

func validatePipeline(pipeline []Source) error {
	if len(pipeline) == 0 {
		return fmt.Errorf("порядок участников саги не задан")
	}

	seen := make(map[Source]bool, len(pipeline))
	for _, s := range pipeline {
		if !s.IsParticipant() {
			return fmt.Errorf("источник %s не является участником саги", s)
		}
		if seen[s] {
			return fmt.Errorf("участник %s указан в порядке саги дважды", s)
		}
		seen[s] = true
	}
	return nil
}

// validateTotality проверяет, что для каждого объявленного источника и каждого статуса
// существует ровно один маршрут
func (t *RouteTable) validateTotality() error {
	declared := append([]Source{SourceOrchestrator}, t.pipeline...)
	expected := len(declared) * len(Statuses())

	for _, source := range declared {
		for _, status := range Statuses() {
			route, ok := t.routes[routeKey{source, status}]
			if !ok || route.Topic == "" {
				return &RouteNotFoundError{Source: source, Status: status}
			}
		}
	}

	if len(t.routes) != expected {
		return fmt.Errorf("таблица маршрутов содержит %d строк, ожидалось %d", len(t.routes), expected)
	}
	return nil
}

// Resolve определяет следующий топик для события
func (t *RouteTable) Resolve(event Event) (Route, error) {
	if event.Source == "" || event.Status == "" {
		return Route{}, &InvalidEventError{Reason: "source and status must be informed"}
	}

	route, ok := t.routes[routeKey{event.Source, event.Status}]
	if !ok {
		return Route{}, &RouteNotFoundError{Source: event.Source, Status: event.Status}
	}

	switch route.Direction {
	case DirectionForward:
		t.logger.Printf("CURRENT SAGA: %s | SUCCESS | NEXT TOPIC: %s | TRANSACTION ID: %s",
			event.Source, route.Topic, event.TransactionID)
	case DirectionSelfRollback:
		t.logger.Printf("CURRENT SAGA: %s | SENDING TO ROLLBACK CURRENT SERVICE | NEXT TOPIC: %s | TRANSACTION ID: %s",
			event.Source, route.Topic, event.TransactionID)
	case DirectionBackwardRollback:
		t.logger.Printf("CURRENT SAGA: %s | SENDING TO ROLLBACK PREVIOUS SERVICE | NEXT TOPIC: %s | TRANSACTION ID: %s",
			event.Source, route.Topic, event.TransactionID)
	case DirectionFinish:
		t.logger.Printf("CURRENT SAGA: %s | %s | FINISHING SAGA | NEXT TOPIC: %s | TRANSACTION ID: %s",
			event.Source, event.Status, route.Topic, event.TransactionID)
	}

	return route, nil
}

// Pipeline порядок участников
func (t *RouteTable) Pipeline() []Source {
	return append([]Source(nil), t.pipeline...)
}

// Routes возвращает копию таблицы, отсортированную по источнику и статусу
func (t *RouteTable) Routes() []Route {
	routes := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Source != routes[j].Source {
			return routes[i].Source < routes[j].Source
		}
		return routes[i].Status < routes[j].Status
	})
	return routes
}
