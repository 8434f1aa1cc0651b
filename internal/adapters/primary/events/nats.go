package events

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HandleNats est le callback de souscription NATS
func (h *EventHandler) HandleNats(msg *nats.Msg) {
	// Extraction du contexte de trace (lien avec le service émetteur)
	ctx := context.Background()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Header))
	}

	ctx, span := otel.Tracer("feed-service").Start(ctx, "process_"+msg.Subject, trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	if err := h.Handle(ctx, msg.Subject, msg.Data); err != nil {
		span.RecordError(err)
		slog.Error("❌ Failed to handle event", "subject", msg.Subject, "error", err)
	}
}

// SubscribeNats branche le handler sur tous les Subjects
func SubscribeNats(nc *nats.Conn, h *EventHandler) ([]*nats.Subscription, error) {
	subs := make([]*nats.Subscription, 0, len(Subjects))
	for _, subject := range Subjects {
		sub, err := nc.Subscribe(subject, h.HandleNats)
		if err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
