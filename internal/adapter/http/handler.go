package http

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"resume-pdf-service/internal/domain"
)

// Renderer is the orchestrator surface the handler needs.
type Renderer interface {
	Render(ctx context.Context, req domain.RenderRequest) ([]byte, error)
}

// BrowserStatus answers the health probe without triggering a launch.
type BrowserStatus interface {
	Connected() bool
}

// HistoryRepo persists render outcomes, best-effort.
type HistoryRepo interface {
	Save(ctx context.Context, rec *domain.RenderRecord) error
	Recent(ctx context.Context, limit int) ([]domain.RenderRecord, error)
}

type Handler struct {
	renderer  Renderer
	browsers  BrowserStatus
	history   HistoryRepo
	startedAt time.Time
}

func NewHandler(r Renderer, b BrowserStatus, h HistoryRepo) *Handler {
	return &Handler{renderer: r, browsers: b, history: h, startedAt: time.Now()}
}

// Health reports process uptime and a live connectivity query against the
// current browser handle. It never fails and never launches a browser.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":           "ok",
		"browserConnected": h.browsers.Connected(),
		"uptime":           int64(time.Since(h.startedAt).Seconds()),
	})
}

// GeneratePDF renders the resume preview at ?url= into a downloadable PDF,
// authenticating the page load with ?token=.
func (h *Handler) GeneratePDF(c *fiber.Ctx) error {
	req := domain.RenderRequest{
		TargetURL:    c.Query("url"),
		SessionToken: c.Query("token"),
	}

	start := time.Now()
	pdf, err := h.renderer.Render(c.UserContext(), req)
	h.record(req, len(pdf), time.Since(start), err)

	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		log.Printf("generate-pdf failed for %q: %v", req.TargetURL, err)
		return c.Status(fiber.StatusInternalServerError).SendString("PDF generation failed: " + err.Error())
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=resume.pdf`)
	return c.Send(pdf)
}

// History returns the most recent render attempts.
func (h *Handler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	records, err := h.history.Recent(c.UserContext(), limit)
	if err != nil {
		log.Printf("warning: failed to load render history: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to load render history")
	}
	return c.JSON(records)
}

// record persists the attempt outcome. Validation failures are not
// recorded; the service stays fully functional without a database.
func (h *Handler) record(req domain.RenderRequest, pdfBytes int, duration time.Duration, err error) {
	if h.history == nil || errors.Is(err, domain.ErrInvalidRequest) {
		return
	}
	rec := domain.NewRenderRecord(req, pdfBytes, duration, err)
	if saveErr := h.history.Save(context.Background(), rec); saveErr != nil {
		log.Printf("warning: failed to save render record: %v", saveErr)
	}
}
