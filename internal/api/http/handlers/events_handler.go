package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/events"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// EventsHandler streams topic events as server-sent events.
type EventsHandler struct {
	subscriber events.Subscriber
	keepAlive  time.Duration
	logger     *zap.Logger
}

// NewEventsHandler constructs handler.
func NewEventsHandler(subscriber events.Subscriber, keepAlive time.Duration, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &EventsHandler{subscriber: subscriber, keepAlive: keepAlive, logger: logger}
}

// Stream GET /api/events?topic=issues. Topics are "issues",
// "issues/{id}/comments" and "issues/{id}/activities".
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	topic := c.Query("topic", events.TopicIssues)
	if !events.ValidTopic(topic) {
		return apperrors.NewValidationError("unknown topic", map[string]any{"topic": topic})
	}

	// the stream outlives the handler, so it cannot use the request context
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := h.subscriber.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		fmt.Fprintf(w, ": subscribed to %s\n\n", topic)
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if err := writeEvent(w, event); err != nil {
					h.logger.Debug("event stream closed", zap.String("topic", topic), zap.Error(err))
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
	return w.Flush()
}
