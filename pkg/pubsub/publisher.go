package pubsub

import "context"

// Pack is a single message published to a topic. Key identifies the entity
// the message is about (here, the user), Msg is the encoded payload.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
