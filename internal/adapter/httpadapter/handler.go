package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
	"github.com/couchcryptid/wildfire-tracker/internal/loader"
)

// Handler serves the /api routes from the loader's current state.
type Handler struct {
	lifetime context.Context
	events   EventStore
	logger   *slog.Logger
}

// NewHandler creates a Handler. Forced refreshes run until they finish or
// lifetime ends, whether or not the client stays connected.
func NewHandler(lifetime context.Context, events EventStore, logger *slog.Logger) *Handler {
	return &Handler{lifetime: lifetime, events: events, logger: logger}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/events", h.listEvents)
	r.GET("/events.geojson", h.eventsGeoJSON)
	r.GET("/events/:id", h.getEvent)
	r.POST("/events/refresh", h.refresh)
}

type eventsResponse struct {
	Events       []domain.Event      `json:"events"`
	Count        int                 `json:"count"`
	Total        int                 `json:"total"`
	Loading      bool                `json:"loading"`
	Error        string              `json:"error,omitempty"`
	Availability loader.Availability `json:"availability"`
	FromCache    bool                `json:"from_cache"`
	UpdatedAt    *time.Time          `json:"updated_at,omitempty"`
}

func (h *Handler) listEvents(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	state := h.events.State()
	visible := filter.Apply(state.Events)

	resp := eventsResponse{
		Events:       visible,
		Count:        len(visible),
		Total:        len(state.Events),
		Loading:      state.Loading,
		Error:        state.ErrorMessage(),
		Availability: state.Availability(),
		FromCache:    state.FromCache,
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt.UTC()
		resp.UpdatedAt = &updated
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) eventsGeoJSON(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toGeoJSON(filter.Apply(h.events.State().Events)))
}

func (h *Handler) getEvent(c *gin.Context) {
	id := c.Param("id")
	events := h.events.State().Events

	i := slices.IndexFunc(events, func(e domain.Event) bool { return e.ID == id })
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	c.JSON(http.StatusOK, events[i])
}

func (h *Handler) refresh(c *gin.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()
	stop := context.AfterFunc(h.lifetime, cancel)
	defer stop()

	res := h.events.Refetch(ctx)
	if res.Err != nil {
		h.logger.Warn("forced refresh failed", "error", res.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": res.Err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(res.Data)})
}

// parseFilter reads status, from, to and q. It writes a 400 and returns
// false when any of them is invalid.
func parseFilter(c *gin.Context) (domain.Filter, bool) {
	var f domain.Filter

	status, err := domain.ParseStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return f, false
	}
	f.Status = status

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"from", &f.From},
		{"to", &f.To},
	} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		day, err := domain.ParseDay(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": p.name + ": " + err.Error()})
			return f, false
		}
		*p.dst = day
	}

	f.Search = c.Query("q")
	return f, true
}
