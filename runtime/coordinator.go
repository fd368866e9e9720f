package runtime

import (
	"chat-broadcaster/contract"
	"chat-broadcaster/domain"
	"chat-broadcaster/domain/event"
	"chat-broadcaster/errors"
	"chat-broadcaster/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	_ contract.ICoordinator = (*Coordinator)(nil)
	_ contract.Worker       = (*Coordinator)(nil)
)

// snapshotQuery and statsQuery travel through the mailbox like any command,
// so their answer is consistent with every mutation queued before them.
type snapshotQuery struct {
	reply chan []*domain.Subscriber
}

func (snapshotQuery) CommandName() string { return "snapshot" }

type statsQuery struct {
	reply chan domain.CoordinatorStats
}

func (statsQuery) CommandName() string { return "stats" }

// Coordinator is the single serialization point of the chat channel.
//
// Subscribe, Unsubscribe and Publish are queued into one mailbox and handled
// one at a time by the Run goroutine, which exclusively owns the Registry.
// Frames produced by a command are handed to the dispatcher together with a
// snapshot of the registry taken right after the mutation.
type Coordinator struct {
	log          *slog.Logger
	registry     *Registry
	store        repositories.IMessageStore
	dispatcher   contract.IDispatcher
	storeTimeout time.Duration
	mailbox      chan domain.Command

	// mu orders enqueue against shutdown: once closed is set,
	// no command can be added behind the drain.
	mu       sync.RWMutex
	closed   bool
	quit     chan struct{}
	quitOnce sync.Once

	stopped     chan struct{}
	stoppedOnce sync.Once

	// only touched by the Run goroutine
	published       uint64
	publishFailures uint64
}

func NewCoordinator(log *slog.Logger, store repositories.IMessageStore, dispatcher contract.IDispatcher,
	mailboxSize int, storeTimeout time.Duration) *Coordinator {
	return &Coordinator{
		log:          log,
		registry:     NewRegistry(),
		store:        store,
		dispatcher:   dispatcher,
		storeTimeout: storeTimeout,
		mailbox:      make(chan domain.Command, mailboxSize),
		quit:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Stopped is closed once the mailbox has been drained after shutdown.
// No frame is dispatched after that.
func (c *Coordinator) Stopped() <-chan struct{} {
	return c.stopped
}

// Subscribe registers a new connection. The first connection of a user
// announces them to everyone, further ones are silent.
func (c *Coordinator) Subscribe(ctx context.Context, subscriber *domain.Subscriber) error {
	if subscriber == nil {
		return fmt.Errorf("subscribe: nil subscriber")
	}
	return c.enqueue(ctx, domain.SubscribeCommand{Subscriber: subscriber})
}

// Unsubscribe removes one connection. It is idempotent.
func (c *Coordinator) Unsubscribe(ctx context.Context, userID domain.UserID, name string, subscriberID domain.SubscriberID) error {
	return c.enqueue(ctx, domain.UnsubscribeCommand{UserID: userID, Name: name, SubscriberID: subscriberID})
}

// Publish queues a message. It returns once the command is accepted, before
// persistence: a store failure is never reported to the sender.
func (c *Coordinator) Publish(ctx context.Context, text string, userID domain.UserID, name string) error {
	return c.enqueue(ctx, domain.PublishCommand{Text: text, UserID: userID, Name: name})
}

func (c *Coordinator) Snapshot(ctx context.Context) ([]*domain.Subscriber, error) {
	reply := make(chan []*domain.Subscriber, 1)
	if err := c.enqueue(ctx, snapshotQuery{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case subscribers := <-reply:
		return subscribers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) Stats(ctx context.Context) (domain.CoordinatorStats, error) {
	reply := make(chan domain.CoordinatorStats, 1)
	if err := c.enqueue(ctx, statsQuery{reply: reply}); err != nil {
		return domain.CoordinatorStats{}, err
	}
	select {
	case stats := <-reply:
		return stats, nil
	case <-ctx.Done():
		return domain.CoordinatorStats{}, ctx.Err()
	}
}

func (c *Coordinator) enqueue(ctx context.Context, cmd domain.Command) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.ErrCoordinatorStopped
	}

	select {
	case c.mailbox <- cmd:
		return nil
	case <-c.quit:
		return errors.ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes commands until ctx is canceled, then drains the mailbox:
// a command accepted before shutdown is always handled.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info("Coordinator started", "mailbox_size", cap(c.mailbox))
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case cmd := <-c.mailbox:
			c.handle(cmd)
		}
	}
}

func (c *Coordinator) shutdown() {
	defer c.stoppedOnce.Do(func() { close(c.stopped) })
	// Wake up senders blocked on a full mailbox before taking the write lock
	c.quitOnce.Do(func() { close(c.quit) })
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	drained := 0
	for {
		select {
		case cmd := <-c.mailbox:
			c.handle(cmd)
			drained++
		default:
			c.log.Info("Coordinator stopped",
				"drained_commands", drained,
				"users", c.registry.Users(),
				"subscribers", c.registry.Len())
			return
		}
	}
}

func (c *Coordinator) handle(cmd domain.Command) {
	switch cmd := cmd.(type) {
	case domain.SubscribeCommand:
		c.handleSubscribe(cmd)
	case domain.UnsubscribeCommand:
		c.handleUnsubscribe(cmd)
	case domain.PublishCommand:
		c.handlePublish(cmd)
	case snapshotQuery:
		cmd.reply <- c.registry.Snapshot()
	case statsQuery:
		cmd.reply <- domain.CoordinatorStats{
			Users:           c.registry.Users(),
			Subscribers:     c.registry.Len(),
			QueuedCommands:  len(c.mailbox),
			Published:       c.published,
			PublishFailures: c.publishFailures,
		}
	default:
		c.log.Warn("Coordinator received unknown command", "command_type", fmt.Sprintf("%T", cmd))
	}
}

func (c *Coordinator) handleSubscribe(cmd domain.SubscribeCommand) {
	s := cmd.Subscriber
	if !c.registry.Add(s) {
		c.log.Debug("Additional connection",
			"user_id", s.UserID,
			"subscriber_id", s.ID,
			"connections", c.registry.Connections(s.UserID))
		return
	}
	c.log.Info("User joined", "user_id", s.UserID, "name", s.Name, "subscriber_id", s.ID)
	c.broadcast(event.Joined{UserID: s.UserID, Name: s.Name})
}

func (c *Coordinator) handleUnsubscribe(cmd domain.UnsubscribeCommand) {
	removed, last := c.registry.Remove(cmd.UserID, cmd.SubscriberID)
	if !removed {
		c.log.Debug("Unknown subscriber, nothing to remove", "user_id", cmd.UserID, "subscriber_id", cmd.SubscriberID)
		return
	}
	if !last {
		c.log.Debug("Connection closed, user still present",
			"user_id", cmd.UserID,
			"subscriber_id", cmd.SubscriberID,
			"connections", c.registry.Connections(cmd.UserID))
		return
	}
	c.log.Info("User left", "user_id", cmd.UserID, "name", cmd.Name)
	c.broadcast(event.Left{UserID: cmd.UserID, Name: cmd.Name})
}

// handlePublish persists before broadcasting. A failed write drops the message:
// no broadcast and no retry, so the live feed never shows a line the log does not have.
func (c *Coordinator) handlePublish(cmd domain.PublishCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), c.storeTimeout)
	defer cancel()

	message, err := c.store.Insert(ctx, cmd.UserID, cmd.Name, cmd.Text)
	if err != nil {
		c.publishFailures++
		c.log.Error("Message dropped, persistence failed",
			"user_id", cmd.UserID,
			"error", fmt.Errorf("%w: %w", errors.ErrPersistence, err))
		return
	}
	c.published++
	c.broadcast(event.MessageCreated{Message: message})
}

func (c *Coordinator) broadcast(frame domain.Frame) {
	c.dispatcher.Dispatch(frame, c.registry.Snapshot())
}
