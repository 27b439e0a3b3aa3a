package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventPublisher delivers catalog change events to a message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// Event is the message published after a successful write.
type Event struct {
	Event    string     `json:"event"`
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
	Time     time.Time  `json:"time"`
}

func newEvent(name string, id uuid.UUID, parentID uuid.UUID) Event {
	ev := Event{Event: name, ID: id, Time: time.Now().UTC()}
	if parentID != uuid.Nil {
		ev.ParentID = &parentID
	}
	return ev
}

// publish never fails the caller: broker problems are only logged.
func (s *CatalogService[P, O, PP, OP]) publish(action string, id, parentID uuid.UUID) {
	name := s.resource.EventPrefix + "." + action
	if s.events == nil {
		s.log.WithField("event", name).Debug("Event publisher is not configured. Skipping event publication.")
		return
	}

	body, err := json.Marshal(newEvent(name, id, parentID))
	if err != nil {
		s.log.WithError(err).WithField("event", name).Error("Failed to marshal event")
		return
	}
	if err := s.events.Publish(name, body); err != nil {
		s.log.WithError(err).WithField("event", name).Warn("Failed to publish event")
		return
	}
	s.log.WithFields(logrus.Fields{"event": name, "id": id}).Debug("Published event")
}
