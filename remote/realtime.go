package remote

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Feed delivers change notifications from the remote store's push channel.
// The protocol is deliberately payload-free: a message names the collection
// that changed and nothing else, so consumers always refetch.
type Feed struct {
	redis   *redis.Client
	channel string
	logger  *log.Logger
}

// NewFeed creates a Feed listening on the given pub/sub channel.
func NewFeed(rc *redis.Client, channel string, logger *log.Logger) *Feed {
	return &Feed{redis: rc, channel: channel, logger: logger}
}

type changeEvent struct {
	Collection string `json:"collection"`
}

// Subscription is a live change-feed registration. Cancel is idempotent and
// safe to call on an already torn-down handle.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Cancel tears the subscription down and waits for the receive loop to exit.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe registers interest in every insert/update/delete on both
// collections. The matching callback is invoked with no payload; callers
// refetch to learn the new state.
func (f *Feed) Subscribe(ctx context.Context, onProjectsChanged, onTasksChanged func()) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := f.redis.Subscribe(ctx, f.channel)
	// Confirm the subscription is on the wire before returning so no event
	// published after Subscribe returns can be missed.
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		_ = sub.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			f.pump(ctx, sub, onProjectsChanged, onTasksChanged)
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			f.logger.Error("change feed channel closed, reconnecting")
			time.Sleep(time.Second)
			sub = f.redis.Subscribe(ctx, f.channel)
		}
	}()
	return &Subscription{cancel: cancel, done: done}, nil
}

// pump drains one pub/sub connection until it closes or ctx is cancelled.
func (f *Feed) pump(ctx context.Context, sub *redis.PubSub, onProjectsChanged, onTasksChanged func()) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev changeEvent
			if err := sonic.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.logger.Errorf("unable to parse change event: %v", err)
				continue
			}
			switch ev.Collection {
			case CollectionProjects:
				onProjectsChanged()
			case CollectionTasks:
				onTasksChanged()
			default:
				f.logger.Warnf("change event for unknown collection %q - ignoring it", ev.Collection)
			}
		}
	}
}
