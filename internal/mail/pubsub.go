package mail

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/pantry-pal/apiserver/config"
	"google.golang.org/api/option"
)

// PubSubBroker publishes mail jobs to a Google Cloud Pub/Sub topic.
type PubSubBroker struct {
	client *pubsub.Client
}

// NewPubSubBroker connects to Pub/Sub using the given config.
func NewPubSubBroker(ctx context.Context, cfg config.PubSubConfig) (*PubSubBroker, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("pubsub project id is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}
	return &PubSubBroker{client: client}, nil
}

// Publish sends a payload to the named topic, creating it if needed.
func (b *PubSubBroker) Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(queue) == "" {
		return "", errors.New("topic name is required")
	}

	topic := b.client.Topic(queue)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		if topic, err = b.client.CreateTopic(ctx, queue); err != nil {
			return "", err
		}
	}

	result := topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	return result.Get(ctx)
}

// Close closes the underlying client.
func (b *PubSubBroker) Close() error {
	return b.client.Close()
}
