package sync

import (
	"errors"

	"lakehouse-utils/core/logger"
	"lakehouse-utils/core/reconcile"
	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/table"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation and schema enforcement.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/reconcile", h.HandleReconcile)
	group.Post("/enforce", h.HandleEnforce)
}

// ReconcileBody is the request body of POST /sync/reconcile.
type ReconcileBody struct {
	New                   *table.Table  `json:"new"`
	Historic              *table.Table  `json:"historic"`
	Key                   []string      `json:"key"`
	IncludeChangedColumns bool          `json:"include_changed_columns"`
	Schema                schema.Schema `json:"schema,omitempty"`
	// Plan adds the ordered mutation plan to the response.
	Plan bool `json:"plan,omitempty"`
}

// EnforceBody is the request body of POST /sync/enforce.
type EnforceBody struct {
	Table  *table.Table  `json:"table"`
	Schema schema.Schema `json:"schema"`
}

// HandleReconcile partitions two posted snapshots.
// It answers the summary and the four partitions, keyed by partition name.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var body ReconcileBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if body.New == nil || body.Historic == nil {
		return badRequest(c, "both new and historic snapshots are required")
	}

	res, err := h.service.Reconcile(body.New, body.Historic, Request{
		Key:     body.Key,
		Options: reconcile.Options{IncludeChangedColumns: body.IncludeChangedColumns},
		Schema:  body.Schema,
	})
	if err != nil {
		l.Warn("Reconcile rejected", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	out := fiber.Map{"summary": res.Summary()}
	for name, t := range res.Partitions() {
		out[name] = t
	}
	if body.Plan {
		out["plan"] = reconcile.BuildPlan(res)
	}
	return c.JSON(out)
}

// HandleEnforce applies a schema to a posted table.
func (h *Handler) HandleEnforce(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var body EnforceBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if body.Table == nil || body.Schema == nil {
		return badRequest(c, "table and schema are required")
	}

	out, err := h.service.Enforce(body.Table, body.Schema)
	if err != nil {
		l.Warn("Schema enforcement rejected", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"table": out})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// statusFor maps domain errors to 422 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrSchemaMismatch),
		errors.Is(err, reconcile.ErrAmbiguousKey),
		errors.Is(err, schema.ErrMissingColumn),
		errors.Is(err, schema.ErrUnknownType):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
