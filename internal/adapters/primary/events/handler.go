package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

// Subjects écoutés ("<kind>.created" / "<kind>.deleted")
var Subjects = []string{"tweet.*", "retweet.*", "like.*"}

const handleTimeout = 10 * time.Second

// ContentEvent : contrat implicite avec les services d'écriture (tweets, retweets, likes)
type ContentEvent struct {
	ID        EventID   `json:"id"`
	Kind      string    `json:"kind,omitempty"` // déduit du subject si absent
	UserID    EventID   `json:"user_id"`
	TweetID   EventID   `json:"tweet_id,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventID est opaque : accepte "42", 42 ou un UUID
type EventID string

func (id *EventID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = EventID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = EventID(n.String())
	return nil
}

type EventHandler struct {
	service ports.IndexService
}

func NewEventHandler(service ports.IndexService) *EventHandler {
	return &EventHandler{service: service}
}

// Handle décode un event et le route vers l'index. Commun à NATS et Kafka.
func (h *EventHandler) Handle(ctx context.Context, subject string, data []byte) error {
	kind, action, err := parseSubject(subject)
	if err != nil {
		return err
	}

	var event ContentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("invalid event format: %w", err)
	}
	if event.Kind != "" && domain.ContentKind(event.Kind) != kind {
		return fmt.Errorf("event kind %q does not match subject %q", event.Kind, subject)
	}
	item := event.toDomain(kind)
	if err := item.ValidateRef(); err != nil {
		return err
	}
	slog.Info("📨 Content event received", "subject", subject, "data_id", item.DataID())

	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	switch action {
	case "created":
		return h.service.ContentCreated(ctx, item)
	case "deleted":
		return h.service.ContentDeleted(ctx, item)
	}
	return nil
}

func (e ContentEvent) toDomain(kind domain.ContentKind) *domain.ContentItem {
	item := &domain.ContentItem{
		Kind:      kind,
		ID:        string(e.ID),
		OwnerID:   string(e.UserID),
		TweetID:   string(e.TweetID),
		Body:      e.Body,
		CreatedAt: e.CreatedAt,
	}
	if kind == domain.KindTweet {
		item.TweetID = string(e.ID)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	return item
}

func parseSubject(subject string) (domain.ContentKind, string, error) {
	kind, action, ok := strings.Cut(subject, ".")
	if !ok || !domain.ContentKind(kind).Valid() {
		return "", "", fmt.Errorf("unsupported subject %q", subject)
	}
	if action != "created" && action != "deleted" {
		return "", "", fmt.Errorf("unsupported action %q", action)
	}
	return domain.ContentKind(kind), action, nil
}
