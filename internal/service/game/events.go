package game

import "time"

// 历史记录上限，超出后丢弃最旧的记录
const historyLimit = 1000

type EventKind string

const (
	EventChat   EventKind = "chat"
	EventAction EventKind = "action"
	EventDeath  EventKind = "death"
	EventPhase  EventKind = "phase"
)

type Event struct {
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type EventHandler func(e Event)

// EventBus 是房间内部的同步发布订阅，只在房间所在的协程里使用
type EventBus struct {
	handlers map[EventKind][]EventHandler

	conversation []Event
	actions      []Event
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventKind][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(kind EventKind, h EventHandler) {
	eb.handlers[kind] = append(eb.handlers[kind], h)
}

func (eb *EventBus) Publish(kind EventKind, message string) {
	e := Event{Kind: kind, Message: message, At: time.Now()}

	if kind == EventChat {
		eb.conversation = appendCapped(eb.conversation, e)
	} else {
		eb.actions = appendCapped(eb.actions, e)
	}

	for _, h := range eb.handlers[kind] {
		h(e)
	}
}

func (eb *EventBus) Chat(message string) {
	eb.Publish(EventChat, message)
}

func (eb *EventBus) Action(message string) {
	eb.Publish(EventAction, message)
}

func (eb *EventBus) Conversation() []Event {
	return eb.conversation
}

func (eb *EventBus) Actions() []Event {
	return eb.actions
}

func appendCapped(history []Event, e Event) []Event {
	if len(history) >= historyLimit {
		copy(history, history[1:])
		history = history[:len(history)-1]
	}
	return append(history, e)
}
