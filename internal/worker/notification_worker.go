package worker

import (
	"go.uber.org/zap"

	"github.com/participa-df/ouvidoria-service/internal/events"
	"github.com/participa-df/ouvidoria-service/internal/service"
)

// RegisterNotificationWorker subscribes the notifier to every event type
// that should fan out to citizens or ombudsman staff.
func RegisterNotificationWorker(dispatcher events.Dispatcher, notifier *service.Notifier, logger *zap.Logger) {
	for _, eventType := range []events.EventType{
		events.EventComplaintSubmitted,
		events.EventComplaintStatusChanged,
		events.EventMessagePosted,
	} {
		dispatcher.Subscribe(eventType, notifier.HandleEvent)
	}
	logger.Info("notification worker registered")
}
