package events

import (
	"context"
	"log/slog"
	"strings"
	"time"

	kf "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartKafkaConsumer lit le topic jusqu'à l'annulation de ctx.
// La clé du message porte le subject ("like.created", ...).
func StartKafkaConsumer(ctx context.Context, brokers, topic, groupID string, h *EventHandler) error {
	r := kf.NewReader(kf.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  2 * time.Second,
	})
	defer r.Close()

	slog.Info("👂 Kafka consumer started", "group", groupID, "topic", topic)

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			return err
		}
		h.handleKafka(ctx, m)
	}
}

func (h *EventHandler) handleKafka(ctx context.Context, m kf.Message) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier(m.Headers))
	subject := string(m.Key)

	ctx, span := otel.Tracer("feed-service").Start(ctx, "process_"+subject, trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	if err := h.Handle(ctx, subject, m.Value); err != nil {
		span.RecordError(err)
		slog.Error("❌ Failed to handle event", "subject", subject, "offset", m.Offset, "error", err)
	}
}

func headerCarrier(headers []kf.Header) propagation.MapCarrier {
	c := make(propagation.MapCarrier, len(headers))
	for _, hd := range headers {
		c[strings.ToLower(hd.Key)] = string(hd.Value)
	}
	return c
}
