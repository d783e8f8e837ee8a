package pubsub

import "context"

type SubscribeHandler func(ctx context.Context, topic string, pack *Pack)

type Subscriber interface {
	Subscribe(topic string, handler SubscribeHandler)
}
