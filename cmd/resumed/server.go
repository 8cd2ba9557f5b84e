package main

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ByLCY/cvpress/generator"
	"github.com/ByLCY/cvpress/resume"
	"github.com/ByLCY/cvpress/theme"
)

const requestIDHeader = "X-Request-ID"

// Handler 提供简历渲染接口。主题只允许使用内置主题名。
type Handler struct {
	assetsDir string
	logger    *slog.Logger
	engine    func() generator.Engine // 为空时由 generator 创建 canvas 渲染器
}

func NewHandler(assetsDir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{assetsDir: assetsDir, logger: logger}
}

func newApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "resumed",
		DisableStartupMessage: true,
	})
	app.Use(h.requestID)
	app.Get("/healthz", h.Health)
	app.Get("/themes", h.Themes)
	app.Get("/resumes/example", h.Example)
	app.Get("/resumes/schema", h.Schema)
	app.Post("/resumes", h.Render)
	return app
}

// requestID 为每个请求分配 ID 并记录访问日志。
func (h *Handler) requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	c.Set(requestIDHeader, id)
	c.Locals("requestID", id)

	start := time.Now()
	err := c.Next()
	h.logger.Info("request",
		"id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Themes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"themes": theme.Presets(), "default": theme.DefaultPreset})
}

// Schema 返回请求体的 JSON Schema。
func (h *Handler) Schema(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(resume.Schema())
}

// Example 返回内置示例数据；?render=pdf 时直接返回渲染结果。
func (h *Handler) Example(c *fiber.Ctx) error {
	if strings.EqualFold(c.Query("render"), "pdf") {
		return h.renderPDF(c, resume.Example())
	}
	return c.JSON(resume.Example())
}

// Render 接收 JSON 简历并返回 application/pdf。
func (h *Handler) Render(c *fiber.Ctx) error {
	data, err := resume.Load(bytes.NewReader(c.Body()))
	if err != nil {
		var ve *resume.ValidationError
		if errors.As(err, &ve) {
			fields := make([]fiber.Map, 0, len(ve.Fields))
			for _, f := range ve.Fields {
				fields = append(fields, fiber.Map{"path": f.Path, "message": f.Message})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resume", "fields": fields})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	return h.renderPDF(c, data)
}

func (h *Handler) renderPDF(c *fiber.Ctx, data *resume.Resume) error {
	themeName := c.Query("theme", theme.DefaultPreset)
	if !slices.Contains(theme.Presets(), strings.ToLower(themeName)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown theme", "themes": theme.Presets()})
	}
	format := c.Query("format")
	switch format {
	case "", resume.FormatMarkup, resume.FormatPlain, resume.FormatMarkdown:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown format"})
	}

	opts := generator.Options{
		Theme:     themeName,
		AssetsDir: h.assetsDir,
		Format:    format,
		Logger:    h.logger.With("id", c.Locals("requestID")),
	}
	if h.engine != nil {
		opts.Engine = h.engine()
	}
	out, err := generator.Generate(data, opts)
	if err != nil {
		h.logger.Error("render failed", "id", c.Locals("requestID"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "render failed"})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="resume.pdf"`)
	return c.Send(out.PDF)
}
