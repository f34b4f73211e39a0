package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/observability"
)

// MetricsHandler exposes in-process counters.
type MetricsHandler struct {
	metrics *observability.Metrics
	pending func() int
}

// NewMetricsHandler constructs handler. pending reports the notification backlog.
func NewMetricsHandler(metrics *observability.Metrics, pending func() int) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, pending: pending}
}

// Metrics GET /metrics.
func (h *MetricsHandler) Metrics(c *fiber.Ctx) error {
	body := fiber.Map{"counters": h.metrics.Snapshot()}
	if h.pending != nil {
		body["notification_queue_depth"] = h.pending()
	}
	return c.JSON(body)
}
