package rabbit

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const heartbeat = 10 * time.Second

// Conn is one AMQP connection with the single channel a worker uses.
type Conn struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// Connect dials url and opens a channel. name shows up as the connection
// name in the broker's management UI.
func Connect(url, name string) (*Conn, error) {
	conn, err := amqp.DialConfig(url, dialConfig(name))
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Conn{Conn: conn, Ch: ch}, nil
}

func dialConfig(name string) amqp.Config {
	props := amqp.NewConnectionProperties()
	if name != "" {
		props.SetClientConnectionName(name)
	}
	return amqp.Config{Heartbeat: heartbeat, Locale: "en_US", Properties: props}
}

func (c *Conn) Close() error {
	_ = c.Ch.Close()
	return c.Conn.Close()
}

// NotifyClosed returns a channel that receives once the connection drops.
func (c *Conn) NotifyClosed() <-chan *amqp.Error {
	return c.Conn.NotifyClose(make(chan *amqp.Error, 1))
}

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}
