package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Notification is a message the notifier delivers for a domain event.
// An empty RecipientID addresses every member of the course.
type Notification struct {
	EventID     string    `json:"event_id"`
	Type        EventType `json:"type"`
	CourseID    uint      `json:"course_id"`
	RecipientID string    `json:"recipient_id,omitempty"`
	Subject     string    `json:"subject"`
}

// NotificationSink delivers notifications (mail, push, in-app...).
type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}

// LogSink writes notifications to the log; used until a delivery channel exists.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(ctx context.Context, n Notification) error {
	s.Logger.InfoContext(ctx, "Notification",
		"event_id", n.EventID,
		"event_type", n.Type,
		"course_id", n.CourseID,
		"recipient_id", n.RecipientID,
		"subject", n.Subject)
	return nil
}

// Dispatcher turns course events consumed from the broker into notifications.
type Dispatcher struct {
	sink   NotificationSink
	logger *slog.Logger
}

func NewDispatcher(sink NotificationSink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, logger: logger}
}

type rawEvent struct {
	ID   string          `json:"id"`
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Handle is a watermill handler. Malformed and unknown events are acked and
// logged so they never block the partition; sink failures are retried.
func (d *Dispatcher) Handle(msg *message.Message) error {
	var ev rawEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		d.logger.Warn("Dropping malformed event", "message_uuid", msg.UUID, "error", err)
		return nil
	}

	n, ok, err := d.notification(ev)
	if err != nil {
		d.logger.Warn("Dropping undecodable event", "event_id", ev.ID, "event_type", ev.Type, "error", err)
		return nil
	}
	if !ok {
		d.logger.Debug("No notification for event", "event_id", ev.ID, "event_type", ev.Type)
		return nil
	}

	if err := d.sink.Notify(msg.Context(), n); err != nil {
		return fmt.Errorf("failed to deliver notification for event %s: %w", ev.ID, err)
	}
	return nil
}

func (d *Dispatcher) notification(ev rawEvent) (Notification, bool, error) {
	n := Notification{EventID: ev.ID, Type: ev.Type}

	switch ev.Type {
	case EventTemplatePublished:
		var data TemplatePublishedEvent
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return n, false, err
		}
		n.CourseID = data.CourseID
		n.Subject = fmt.Sprintf("New form available: %s", data.TemplateName)
		return n, true, nil

	case EventCommentCreated:
		var data CommentCreatedEvent
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return n, false, err
		}
		// nobody needs telling about their own comment
		if data.OwnerID == "" || data.OwnerID == data.CommenterID {
			return n, false, nil
		}
		n.CourseID = data.CourseID
		n.RecipientID = data.OwnerID
		n.Subject = fmt.Sprintf("New comment on field %d of your submission", data.FieldIndex+1)
		return n, true, nil

	default:
		return n, false, nil
	}
}

// NewKafkaSubscriber creates a consumer-group subscriber for the events topic.
func NewKafkaSubscriber(brokers []string, consumerGroup string, logger *slog.Logger) (message.Subscriber, error) {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         consumerGroup,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return subscriber, nil
}

// RunConsumer routes topic messages to the dispatcher until ctx is cancelled.
func RunConsumer(ctx context.Context, subscriber message.Subscriber, topic string, d *Dispatcher, logger *slog.Logger) error {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}
	router.AddNoPublisherHandler("course-notifications", topic, subscriber, d.Handle)
	return router.Run(ctx)
}
