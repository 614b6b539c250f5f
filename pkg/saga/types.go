package saga

import (
	"fmt"
	"strings"
)

// Source идентифицирует участника, который последним обработал событие
type Source string

// Status результат последнего действия источника события
type Status string

// Topic идентификатор топика (ключа маршрутизации) шины сообщений
type Topic string

const (
	SourceOrchestrator      Source = "ORCHESTRATOR"
	SourceProductValidation Source = "PRODUCT_VALIDATION"
	SourcePayment           Source = "PAYMENT"
	SourceInventory         Source = "INVENTORY"
)

const (
	StatusSuccess         Status = "SUCCESS"
	StatusFail            Status = "FAIL"
	StatusRollbackPending Status = "ROLLBACK_PENDING"
)

const (
	TopicStartSaga                Topic = "start-saga"
	TopicOrchestrator             Topic = "orchestrator"
	TopicFinishSuccess            Topic = "finish-success"
	TopicFinishFail               Topic = "finish-fail"
	TopicProductValidationSuccess Topic = "product-validation-success"
	TopicProductValidationFail    Topic = "product-validation-fail"
	TopicPaymentSuccess           Topic = "payment-success"
	TopicPaymentFail              Topic = "payment-fail"
	TopicInventorySuccess         Topic = "inventory-success"
	TopicInventoryFail            Topic = "inventory-fail"
	TopicNotifyEnding             Topic = "notify-ending"
)

// participantTopics топики выполнения и компенсации для каждого участника
var participantTopics = map[Source][2]Topic{
	SourceProductValidation: {TopicProductValidationSuccess, TopicProductValidationFail},
	SourcePayment:           {TopicPaymentSuccess, TopicPaymentFail},
	SourceInventory:         {TopicInventorySuccess, TopicInventoryFail},
}

// Sources возвращает все объявленные источники
func Sources() []Source {
	return []Source{SourceOrchestrator, SourceProductValidation, SourcePayment, SourceInventory}
}

// Statuses возвращает все объявленные статусы
func Statuses() []Status {
	return []Status{StatusSuccess, StatusFail, StatusRollbackPending}
}

// Topics возвращает все топики, которые использует сага
func Topics() []Topic {
	return []Topic{
		TopicStartSaga, TopicOrchestrator, TopicFinishSuccess, TopicFinishFail,
		TopicProductValidationSuccess, TopicProductValidationFail,
		TopicPaymentSuccess, TopicPaymentFail,
		TopicInventorySuccess, TopicInventoryFail,
		TopicNotifyEnding,
	}
}

// IsParticipant сообщает, является ли источник участником саги (а не оркестратором)
func (s Source) IsParticipant() bool {
	_, ok := participantTopics[s]
	return ok
}

// ExecuteTopic топик, по которому участник получает команду на выполнение
func ExecuteTopic(s Source) (Topic, bool) {
	t, ok := participantTopics[s]
	return t[0], ok
}

// CompensateTopic топик, по которому участник получает команду на компенсацию
func CompensateTopic(s Source) (Topic, bool) {
	t, ok := participantTopics[s]
	return t[1], ok
}

// ParseSource разбирает имя источника, допускается суффикс _SERVICE
func ParseSource(value string) (Source, error) {
	name := strings.ToUpper(strings.TrimSpace(value))
	name = strings.TrimSuffix(name, "_SERVICE")
	for _, s := range Sources() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("неизвестный источник саги: %q", value)
}

// ParsePipeline разбирает список участников, разделённых запятыми
func ParsePipeline(value string) ([]Source, error) {
	var pipeline []Source
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := ParseSource(part)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, s)
	}
	return pipeline, nil
}
