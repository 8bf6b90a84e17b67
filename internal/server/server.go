package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"

	"github.com/mpetrov/facelike/internal/auth"
	"github.com/mpetrov/facelike/internal/logger"
)

//go:embed views/*.django
var viewsFS embed.FS

// Server is the FaceLike HTTP front end.
type Server struct {
	app    *fiber.App
	addr   string
	logger *logger.Logger
}

// New builds the fiber application with all routes registered.
func New(addr string, auther *auth.Authenticator, l *logger.Logger) *Server {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := django.NewFileSystem(http.FS(views), ".django")

	s := &Server{
		addr:   addr,
		logger: l,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "facelike",
		Views:                 engine,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	h := NewHandler(auther, l)
	h.RegisterRoutes(s.app)

	return s
}

// App exposes the fiber app, used by tests via app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen() error {
	s.logger.Info("starting http server", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler turns unhandled errors into responses. Auth errors never
// reach this point; anything else is a storage or rendering failure and
// surfaces as a 5xx.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(code).SendString(http.StatusText(code))
}
