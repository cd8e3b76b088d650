// Package reporthttp exposes the PDF export service over HTTP.
package reporthttp

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	reportpdf "github.com/reportkit/go-report-export/adapters/pdf"
	"github.com/reportkit/go-report-export/report"
)

const (
	// ExportPath accepts HTML and returns a rendered PDF.
	ExportPath = "/api/export/pdf"
	// HealthPath reports service liveness.
	HealthPath = "/api/health"

	// DefaultMaxBodyBytes caps export request bodies. Exported documents
	// carry inlined chart snapshots as data URIs, so bodies run large.
	DefaultMaxBodyBytes = 25 * 1024 * 1024
)

// Config configures the HTTP surface.
type Config struct {
	Engine       reportpdf.Engine
	Logger       report.Logger
	MaxBodyBytes int
	AllowOrigins string
}

type handler struct {
	engine reportpdf.Engine
	logger report.Logger
}

// New builds the fiber application serving the export endpoints.
func New(cfg Config) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = report.NopLogger{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             maxBody,
		ErrorHandler:          newErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{AllowOrigins: allowOrigins(cfg.AllowOrigins)}))

	h := &handler{engine: cfg.Engine, logger: logger}
	app.Get("/", h.root)
	app.Get(HealthPath, h.health)
	app.Post(ExportPath, h.exportPDF)
	return app
}

func allowOrigins(origins string) string {
	if origins == "" {
		return "*"
	}
	return origins
}

func (h *handler) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "report export server is running"})
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) exportPDF(c *fiber.Ctx) error {
	if h.engine == nil {
		return writeMessage(c, fiber.StatusInternalServerError, "pdf engine is not configured")
	}

	var body exportRequest
	if err := c.BodyParser(&body); err != nil {
		return writeMessage(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !body.hasHTML() {
		return writeMessage(c, fiber.StatusBadRequest, "HTML content is required.")
	}

	pdf, err := h.engine.Render(c.Context(), reportpdf.RenderRequest{
		HTML:    body.HTML,
		Options: body.renderOptions(),
	})
	if err != nil {
		kind := report.KindFromError(err)
		h.logger.Errorf("pdf export failed (request %s): %v", requestID(c), err)
		return writeMessage(c, report.HTTPStatus(kind), report.MessageFromError(err))
	}

	filename := report.NormalizeFilename(body.Filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(pdf)))
	return c.Status(fiber.StatusOK).Send(pdf)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}

func writeMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// newErrorHandler maps framework-level failures onto the JSON error shape.
// Oversized bodies surface as 413 instead of an unhandled error.
func newErrorHandler(logger report.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}
		if status == fiber.StatusRequestEntityTooLarge {
			message = "Payload too large"
		}
		if status >= fiber.StatusInternalServerError {
			logger.Errorf("request failed: %v", err)
		}
		return writeMessage(c, status, message)
	}
}
