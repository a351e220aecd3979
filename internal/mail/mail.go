// Package mail dispatches account emails (verification links, password
// resets) to an out-of-process sender over a message broker. The broker is
// the boundary: this package never talks SMTP.
package mail

import (
	"context"
	"encoding/json"
)

// Kinds of account mail the sender knows how to render.
const (
	KindVerifyAccount = "verify-account"
	KindResetPassword = "reset-password"
)

// Job is the broker payload describing one email to send.
type Job struct {
	// To is the recipient address.
	To string `json:"to"`

	// Kind selects the template the sender renders.
	Kind string `json:"kind"`

	// Token is the single-purpose action token embedded in the mail's link.
	Token string `json:"token"`

	// Display is the recipient's display name, for salutations.
	Display string `json:"display,omitempty"`
}

// Broker publishes raw payloads to a named queue or topic.
type Broker interface {
	Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Dispatcher serializes jobs onto a broker queue.
type Dispatcher struct {
	broker Broker
	queue  string
}

// NewDispatcher constructs a Dispatcher publishing to the named queue.
func NewDispatcher(broker Broker, queue string) *Dispatcher {
	return &Dispatcher{broker: broker, queue: queue}
}

// Send enqueues the job for delivery.
func (d *Dispatcher) Send(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = d.broker.Publish(ctx, d.queue, data, map[string]string{"kind": job.Kind})
	return err
}

// Close closes the underlying broker.
func (d *Dispatcher) Close() error {
	return d.broker.Close()
}
