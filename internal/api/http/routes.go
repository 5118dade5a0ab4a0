package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/common"
	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
	"github.com/MenukaRanasinghe/SmartSL/internal/store"
)

var validate = validator.New()

// History serves previously captured snapshots.
type History interface {
	Latest(region string) (crowd.SnapshotRecord, error)
	Range(region string, from, to time.Time) ([]crowd.SnapshotRecord, error)
}

// Cache stores rendered responses. Implementations must treat a miss as
// (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Options carries the optional collaborators of the routes.
type Options struct {
	Cache    Cache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

type handler struct {
	service  *crowd.Service
	history  History
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *crowd.Service, history History, opts Options) {
	h := &handler{
		service:  service,
		history:  history,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	v1 := app.Group("/api/v1")
	v1.Get("/crowd", h.snapshot)
	v1.Get("/places", h.places)
	v1.Get("/crowd/forecast", h.forecast)
	v1.Get("/crowd/alternative", h.alternative)
	v1.Get("/crowd/history", h.historyRange)
	v1.Get("/crowd/history/latest", h.historyLatest)
}

func (h *handler) snapshot(c *fiber.Ctx) error {
	region := c.Query("region", h.service.Region())
	return h.cachedSnapshot(c, "smartsl:crowd:"+common.NormalizeName(region), region)
}

// places is the snapshot across every district.
func (h *handler) places(c *fiber.Ctx) error {
	return h.cachedSnapshot(c, "smartsl:places", "")
}

func (h *handler) cachedSnapshot(c *fiber.Ctx, prefix, region string) error {
	ctx := c.UserContext()
	key := fmt.Sprintf("%s:%s", prefix, h.service.Now().Format("2006010215"))

	if h.cache != nil {
		var cached []crowd.Snapshot
		ok, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return c.JSON(cached)
		}
	}

	snaps := h.service.Snapshot(ctx, region)

	// Empty results may come from an unavailable dataset; don't pin them.
	if h.cache != nil && len(snaps) > 0 {
		if err := h.cache.Set(ctx, key, snaps, h.cacheTTL); err != nil {
			h.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return c.JSON(snaps)
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Place string `validate:"required"`
	Limit int    `validate:"min=1,max=48"`
}

func (h *handler) forecast(c *fiber.Ctx) error {
	q := forecastQuery{
		Place: c.Query("place"),
		Limit: crowd.ParseLimit(c.Query("limit")),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(h.service.Forecast(c.UserContext(), q.Place, q.Limit))
}

// alternativeQuery holds query parameters for the alternative endpoint.
type alternativeQuery struct {
	Place string `validate:"required"`
	Level string
}

func (h *handler) alternative(c *fiber.Ctx) error {
	q := alternativeQuery{
		Place: c.Query("place"),
		Level: c.Query("level"),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	level, alt := h.service.Alternative(c.UserContext(), q.Place, q.Level)
	return c.JSON(fiber.Map{
		"place":       q.Place,
		"level":       level,
		"alternative": alt,
	})
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Region string    `validate:"required"`
	From   time.Time `validate:"required"`
	To     time.Time `validate:"required,gtefield=From"`
}

func (q *historyQuery) bind(c *fiber.Ctx, defaultRegion string) error {
	q.Region = c.Query("region", defaultRegion)

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	q.From = from
	q.To = to
	return nil
}

func (h *handler) historyRange(c *fiber.Ctx) error {
	var q historyQuery
	if err := q.bind(c, h.service.Region()); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	records, err := h.history.Range(q.Region, q.From, q.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no snapshots for requested range")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch snapshot history")
	}

	return c.JSON(fiber.Map{
		"region":    q.Region,
		"from":      q.From,
		"to":        q.To,
		"snapshots": records,
	})
}

func (h *handler) historyLatest(c *fiber.Ctx) error {
	region := c.Query("region", h.service.Region())

	rec, err := h.history.Latest(region)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot captured for region")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest snapshot")
	}
	return c.JSON(rec)
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
