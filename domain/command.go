package domain

type Command interface {
	CommandName() string
}

type SubscribeCommand struct {
	Subscriber *Subscriber
}

func (SubscribeCommand) CommandName() string { return "subscribe" }

type UnsubscribeCommand struct {
	UserID       UserID
	Name         string
	SubscriberID SubscriberID
}

func (UnsubscribeCommand) CommandName() string { return "unsubscribe" }

type PublishCommand struct {
	Text   string
	UserID UserID
	Name   string
}

func (PublishCommand) CommandName() string { return "publish" }
