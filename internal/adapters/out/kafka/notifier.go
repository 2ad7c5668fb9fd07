package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"parcellocker/internal/core/ports"
)

// notificationMessage is the payload a delivery worker consumes. Secrets travel
// in Data and must not be logged by consumers.
type notificationMessage struct {
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Data      map[string]string `json:"data"`
}

// Notifier hands messages to Kafka; actual delivery (mail, SMS) happens
// downstream. Messages for one recipient share a partition.
type Notifier struct {
	producer Producer
	topic    string
}

func NewNotifier(producer Producer, topic string) *Notifier {
	return &Notifier{producer: producer, topic: topic}
}

func (n *Notifier) Send(ctx context.Context, recipient string, kind ports.TemplateKind, data map[string]string) error {
	value, err := json.Marshal(notificationMessage{
		Recipient: recipient,
		Template:  string(kind),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ports.ErrDeliveryFailure, kind, err)
	}

	if err = n.producer.SendMessage(ctx, n.topic, []byte(recipient), value); err != nil {
		return fmt.Errorf("%w: publish %s: %w", ports.ErrDeliveryFailure, kind, err)
	}
	return nil
}
