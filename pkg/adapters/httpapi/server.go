// Package httpapi exposes the note service over HTTP with fiber.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/aretw0/harumemo/pkg/backup"
	"github.com/aretw0/harumemo/pkg/core"
)

// MaxBodySize bounds request bodies; backups embed images as data URLs.
const MaxBodySize = 64 << 20

// Config holds the configuration for a Server.
type Config struct {
	Logger    *slog.Logger
	Clock     func() time.Time
	Importer  *backup.Importer
	AccessLog bool // Log every request through fiber's logger middleware.
}

// Server routes HTTP requests to a core.Service.
type Server struct {
	app      *fiber.App
	svc      *core.Service
	importer *backup.Importer
	registry *backup.Registry
	clock    func() time.Time
	logger   *slog.Logger
}

// New builds the fiber app and its routes.
func New(svc *core.Service, cfg Config) *Server {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Importer == nil {
		cfg.Importer = backup.NewImporter(cfg.Logger)
	}
	registry := cfg.Importer.Registry
	if registry == nil {
		registry = backup.DefaultRegistry()
	}

	s := &Server{
		svc:      svc,
		importer: cfg.Importer,
		registry: registry,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "harumemo",
		BodyLimit:             MaxBodySize,
		DisableStartupMessage: true,
		// Params and bodies outlive the handler as store keys and note fields.
		Immutable: true,
	})
	app.Use(requestid.New(), recover.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}

	app.Route("/notes", func(notes fiber.Router) {
		notes.Get("/", s.listNotes)
		notes.Route("/:date", func(note fiber.Router) {
			note.Use(validateDate)
			note.Get("/", s.getNote)
			note.Put("/", s.saveNote)
			note.Delete("/", s.deleteNote)
			note.Put("/emoji", s.setEmoji)
			note.Post("/images", s.addImage)
			note.Delete("/images/:index", s.deleteImage)
			note.Post("/checklist/:line", s.toggleChecklist)
		})
	})
	app.Get("/calendar/:year/:month", s.calendar)
	app.Get("/export", s.export)
	app.Post("/import", s.importBackup)

	s.app = app
	return s
}

// App returns the underlying fiber app (used by tests via app.Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening for requests", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

type saveRequest struct {
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type emojiRequest struct {
	Emoji string `json:"emoji"`
}

type imageRequest struct {
	Image string `json:"image"`
}

type changeResponse struct {
	Change string     `json:"change"`
	Note   *core.Note `json:"note,omitempty"`
}

type calendarResponse struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Days  []int             `json:"days"`
	Cells []core.DaySummary `json:"cells"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func validateDate(c *fiber.Ctx) error {
	if _, err := core.ParseDate(c.Params("date")); err != nil {
		return fail(c, err)
	}
	return c.Next()
}

func (s *Server) listNotes(c *fiber.Ctx) error {
	return c.JSON(s.svc.Notes())
}

func (s *Server) getNote(c *fiber.Ctx) error {
	date := c.Params("date")
	n, ok := s.svc.Lookup(date)
	if !ok {
		return fail(c, fmt.Errorf("%w: %s", core.ErrNotFound, date))
	}
	return c.JSON(n)
}

func (s *Server) saveNote(c *fiber.Ctx) error {
	var req saveRequest
	if err := decodeBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	res, err := s.svc.SaveNote(c.UserContext(), c.Params("date"), req.Content, req.Images)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(changed(res))
}

func (s *Server) deleteNote(c *fiber.Ctx) error {
	removed, err := s.svc.DeleteNote(c.UserContext(), c.Params("date"))
	if err != nil {
		return s.fail(c, err)
	}
	change := core.ChangeNone
	if removed {
		change = core.ChangeDeleted
	}
	return c.JSON(changeResponse{Change: change.String()})
}

func (s *Server) setEmoji(c *fiber.Ctx) error {
	var req emojiRequest
	if err := decodeBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	res, err := s.svc.SetEmoji(c.UserContext(), c.Params("date"), req.Emoji)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(changed(res))
}

func (s *Server) addImage(c *fiber.Ctx) error {
	var req imageRequest
	if err := decodeBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	res, err := s.svc.AddImage(c.UserContext(), c.Params("date"), req.Image)
	if err != nil {
		return s.fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	return c.JSON(changed(res))
}

func (s *Server) deleteImage(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: image index must be a number", core.ErrValidation))
	}
	res, err := s.svc.DeleteImage(c.UserContext(), c.Params("date"), index)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(changed(res))
}

func (s *Server) toggleChecklist(c *fiber.Ctx) error {
	line, err := strconv.Atoi(c.Params("line"))
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: line must be a number", core.ErrValidation))
	}
	res, err := s.svc.ToggleChecklist(c.UserContext(), c.Params("date"), line)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(changed(res))
}

// calendar takes a 1-based month in the URL.
func (s *Server) calendar(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil || year < 1 || year > 9999 {
		return s.fail(c, fmt.Errorf("%w: invalid year %q", core.ErrValidation, c.Params("year")))
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil || month < 1 || month > 12 {
		return s.fail(c, fmt.Errorf("%w: invalid month %q", core.ErrValidation, c.Params("month")))
	}
	return c.JSON(calendarResponse{
		Year:  year,
		Month: month,
		Days:  s.svc.DatesWithNotesInMonth(year, month-1),
		Cells: s.svc.MonthSummary(year, month-1),
	})
}

func (s *Server) export(c *fiber.Ctx) error {
	codec, err := s.registry.Get(c.Query("format", "json"))
	if err != nil {
		return s.fail(c, err)
	}
	exp, err := backup.Render(s.svc, codec, s.clock())
	if err != nil {
		return s.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType(codec))
	c.Set(fiber.HeaderContentDisposition, "attachment; filename*=UTF-8''"+url.PathEscape(exp.FileName))
	return c.Send(exp.Data)
}

func (s *Server) importBackup(c *fiber.Ctx) error {
	res, err := s.importer.Import(c.UserContext(), s.svc, backup.Request{
		Format:   c.Query("format"),
		Filename: c.Query("filename"),
		Data:     c.Body(),
		DryRun:   c.QueryBool("dry_run", false),
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(res)
}

func changed(res core.SaveResult) changeResponse {
	out := changeResponse{Change: res.Change.String()}
	if res.Change != core.ChangeDeleted && res.Note.Date != "" {
		n := res.Note
		out.Note = &n
	}
	return out
}

func contentType(codec backup.Codec) string {
	switch codec.Name() {
	case "json":
		return fiber.MIMEApplicationJSONCharsetUTF8
	case "yaml":
		return "application/yaml; charset=utf-8"
	default:
		return fiber.MIMETextPlainCharsetUTF8
	}
}

func decodeBody(c *fiber.Ctx, out any) error {
	if err := json.Unmarshal(c.Body(), out); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", core.ErrValidation, err)
	}
	return nil
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, core.ErrEmptyResult):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotLoaded):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		s.logger.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return fail(c, err)
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(errorResponse{Error: err.Error()})
}
