package rabbitmq

import (
	"fmt"

	"eoncab/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(contracts.ExchangeTripTopic, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", contracts.ExchangeTripTopic, err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{contracts.QueueTripCancellations, contracts.RouteRideCancelledPrefix + "*"},
		{contracts.QueueDriverSelected, contracts.RouteDriverSelectedPrefix + "*"},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.routingKey, contracts.ExchangeTripTopic, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, contracts.ExchangeTripTopic, err)
		}
	}

	return nil
}
