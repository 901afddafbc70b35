// Package event mirrors committed messenger events onto RabbitMQ for
// external consumers (push notification workers, audit). Fan-out to
// connected sessions never depends on the broker: a failed publish is
// logged and the originating operation stays successful.
package event

import (
	"context"
	"fmt"
	"log"
	"time"

	"atomgram-service/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

const RabbitMQActionHeader string = "x-action"

// NotificationsQueue carries messageAdded/userStatus envelopes.
const NotificationsQueue = "notifications"

var (
	RabbitMQConnection *amqp.Connection
	RabbitMQChannel    *amqp.Channel
	RabbitMQQueue      = make(map[string]amqp.Queue)
	err                error
)

// Enabled reports whether outbound events are switched on.
func Enabled() bool {
	return config.Config("EVENT_MODE") != "DISABLE"
}

func RabbitMQConnect(queues []string) {
	// Connect to RabbitMQ server
	RabbitMQConnection, err = amqp.Dial(fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		config.Config("RABBITMQ_USER"),
		config.Config("RABBITMQ_PASSWORD"),
		config.Config("RABBITMQ_HOST"),
		config.Config("RABBITMQ_PORT"),
	))
	if err != nil {
		panic("failed to connect to RabbitMQ")
	}
	log.Printf("connection opened to RabbitMQ server")

	// Open a RabbitMQ channel
	RabbitMQChannel, err = RabbitMQConnection.Channel()
	if err != nil {
		panic("failed to open a RabbitMQ channel")
	}
	log.Printf("opened a RabbitMQ channel")

	// Declare a queues
	for _, name := range queues {
		queue, err := RabbitMQChannel.QueueDeclare(
			name,  // name
			false, // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			panic("failed to declare a RabbitMQ queue")
		}

		RabbitMQQueue[name] = queue
		log.Printf("success declare a RabbitMQ queue: %s", name)
	}
}

// Emit publishes one event to a queue with its action in the header.
// Errors are logged, not surfaced: delivery to the broker is not part
// of the operation's success.
func Emit(service string, action string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := RabbitMQChannel.PublishWithContext(
		ctx,
		"",      // exchange
		service, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers: amqp.Table{
				RabbitMQActionHeader: action,
			},
			Body: data,
		},
	)
	if err != nil {
		log.Printf("event: failed to publish %s to %s: %v", action, service, err)
	}
}
