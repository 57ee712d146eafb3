// Package notifications delivers fire-and-forget events to recipients. Delivery
// failures never roll back or block the operation that produced the event.
package notifications

import (
	"log"
	"sync"

	"github.com/rosterhq/rostering-api/internal/models"
	"gorm.io/gorm"
)

// Event is the payload handed to the dispatcher by the core services.
type Event struct {
	OrganizationID uint64                      `json:"organization_id"`
	RecipientID    uint64                      `json:"recipient_id"`
	Category       models.NotificationCategory `json:"category"`
	Title          string                      `json:"title"`
	Body           string                      `json:"body"`
	Data           models.JSON                 `json:"data"`
}

// Dispatcher accepts events for asynchronous delivery.
type Dispatcher interface {
	Dispatch(event Event)
}

// Sender delivers one event over a concrete channel (mail, log, ...).
type Sender interface {
	Send(event Event) error
}

// AsyncDispatcher queues events on a buffered channel and works them off on a
// single background goroutine. Dispatch never blocks the caller: when the queue is
// full the event is dropped with a warning, which is the stated best-effort
// contract.
type AsyncDispatcher struct {
	db      *gorm.DB
	senders []Sender
	queue   chan Event
	done    chan struct{}
	once    sync.Once
}

func NewAsyncDispatcher(db *gorm.DB, senders ...Sender) *AsyncDispatcher {
	d := &AsyncDispatcher{
		db:      db,
		senders: senders,
		queue:   make(chan Event, 256),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *AsyncDispatcher) Dispatch(event Event) {
	select {
	case d.queue <- event:
	default:
		log.Printf("WARN notifications: queue full, dropping %s for member %d",
			event.Category, event.RecipientID)
	}
}

// Close drains the queue and stops the worker.
func (d *AsyncDispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *AsyncDispatcher) deliver(event Event) {
	// Persist the outbound trace first so attempted deliveries are observable.
	row := models.Notification{
		OrganizationID: event.OrganizationID,
		RecipientID:    event.RecipientID,
		Category:       event.Category,
		Title:          event.Title,
		Body:           event.Body,
		Data:           event.Data,
	}
	if err := d.db.Create(&row).Error; err != nil {
		log.Printf("WARN notifications: failed to persist %s for member %d: %v",
			event.Category, event.RecipientID, err)
	}

	for _, sender := range d.senders {
		if err := sender.Send(event); err != nil {
			log.Printf("WARN notifications: delivery of %s to member %d failed: %v",
				event.Category, event.RecipientID, err)
		}
	}
}

// NopDispatcher discards all events; used in tests.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(Event) {}
