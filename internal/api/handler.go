package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-disaster-response/internal/dispatch"
	"github.com/mr1hm/go-disaster-response/internal/estimate"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/observability"
	"github.com/mr1hm/go-disaster-response/internal/repository"
	"github.com/mr1hm/go-disaster-response/internal/session"
	"github.com/mr1hm/go-disaster-response/internal/stream"
)

// Enqueuer hands a prepared record to the dispatch workers.
type Enqueuer interface {
	Submit(rec *models.NotificationRecord)
}

type Handler struct {
	engine     *estimate.Engine
	dispatcher *dispatch.Dispatcher
	queue      Enqueuer
	repo       repository.NotificationRepository
	events     *stream.Broadcaster
	state      *session.State
	metrics    *observability.Metrics
}

func NewHandler(
	engine *estimate.Engine,
	dispatcher *dispatch.Dispatcher,
	queue Enqueuer,
	repo repository.NotificationRepository,
	events *stream.Broadcaster,
	state *session.State,
	metrics *observability.Metrics,
) *Handler {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Handler{
		engine:     engine,
		dispatcher: dispatcher,
		queue:      queue,
		repo:       repo,
		events:     events,
		state:      state,
		metrics:    metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/plans", h.createPlan)
	r.GET("/api/plans/latest", h.latestPlan)
	r.POST("/api/notifications", h.createNotification)
	r.GET("/api/notifications", h.listNotifications)
	r.GET("/api/notifications/:id", h.getNotification)
	r.GET("/api/notifications/stream", h.streamNotifications)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) createPlan(c *gin.Context) {
	var scenario models.Scenario
	if err := c.ShouldBindJSON(&scenario); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.engine.Estimate(scenario)
	if err != nil {
		if errors.Is(err, estimate.ErrInvalidScenario) {
			h.metrics.InvalidScenarios.Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute plan"})
		return
	}

	h.state.SetPlan(plan)
	h.metrics.PlansTotal.WithLabelValues(string(scenario.DisasterType)).Inc()
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) latestPlan(c *gin.Context) {
	plan := h.state.Plan()
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plan computed yet"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// createNotification validates the request, persists the pending record,
// and enqueues the sends. The response carries the pending record; the
// terminal state arrives via history or the stream.
func (h *Handler) createNotification(c *gin.Context) {
	var req dispatch.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.dispatcher.Prepare(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record notification"})
		return
	}

	h.queue.Submit(rec)
	c.JSON(http.StatusAccepted, rec)
}

func (h *Handler) listNotifications(c *gin.Context) {
	filter := repository.Filter{
		Limit: 20,
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	if a := c.Query("action"); a != "" {
		action := models.ActionKind(a)
		if action.IsValid() {
			filter.Action = &action
		}
	}

	records, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notifications"})
		return
	}
	if records == nil {
		records = []models.NotificationRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) getNotification(c *gin.Context) {
	rec, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notification"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// streamNotifications pushes record transitions as server-sent events until
// the client disconnects or the broadcaster closes.
func (h *Handler) streamNotifications(c *gin.Context) {
	id, ch := h.events.Subscribe()
	defer h.events.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case rec, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("notification", rec)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
