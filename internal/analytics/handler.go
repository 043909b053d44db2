package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vkusdostavka/orderdesk/internal/catalog"
	"github.com/vkusdostavka/orderdesk/internal/domain"
)

var meter = otel.Meter("analytics")

// Snapshotter is the slice of the order store the aggregator needs: a
// consistent, read-only copy of the order log.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]domain.Order, error)
}

type Handler struct {
	store    Snapshotter
	registry catalog.Registry
	logger   *slog.Logger

	reportDuration metric.Float64Histogram
}

func NewHandler(store Snapshotter, registry catalog.Registry, logger *slog.Logger) (*Handler, error) {
	reportDuration, err := meter.Float64Histogram("analytics.report_duration",
		metric.WithDescription("Time spent generating an analytics report."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:          store,
		registry:       registry,
		logger:         logger,
		reportDuration: reportDuration,
	}, nil
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to snapshot orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	start := time.Now()
	report := Generate(snapshot, period, h.registry, time.Now())
	h.reportDuration.Record(r.Context(), time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("period", string(period))))

	h.logger.Info("analytics report generated",
		"period", period, "total_orders", report.TotalOrders)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
