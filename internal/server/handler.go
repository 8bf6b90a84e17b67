package server

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"

	"github.com/mpetrov/facelike/internal/auth"
	"github.com/mpetrov/facelike/internal/logger"
	"github.com/mpetrov/facelike/internal/store"
)

// AccessTokenCookie is the cookie carrying the session bearer token.
const AccessTokenCookie = "access_token"

// Handler serves the HTML pages and the JSON API.
type Handler struct {
	auther *auth.Authenticator
	logger *logger.Logger
}

// NewHandler creates a Handler around the authenticator.
func NewHandler(auther *auth.Authenticator, l *logger.Logger) *Handler {
	return &Handler{
		auther: auther,
		logger: l,
	}
}

// RegisterRoutes wires every route, including the trailing 404 handler.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.HomeShow)
	app.Get("/register", h.RegisterShow)
	app.Post("/register", h.RegisterCreate)
	app.Post("/login", h.LoginCreate)
	app.Get("/profile", h.ProfileShow)
	app.Post("/logout", h.Logout)

	api := app.Group("/api")
	api.Post("/register", h.APIRegister)
	api.Post("/login", h.APILogin)

	app.Use(h.NotFound)
}

func (h *Handler) HomeShow(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{})
}

func (h *Handler) RegisterShow(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{})
}

// RegisterRequest is the registration payload, form or JSON encoded.
type RegisterRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (h *Handler) RegisterCreate(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		h.logger.Error("register: parse payload", "error", err)
		return c.Redirect("/register", fiber.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		return c.Render("register", fiber.Map{
			"errors": err.Error(),
			"record": payload,
		})
	}

	token, err := h.auther.Register(c.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return c.Redirect("/register", fiber.StatusSeeOther)
		}
		return err
	}

	h.setTokenCookie(c, token)
	return c.Redirect("/profile", fiber.StatusSeeOther)
}

// LoginRequest is the login payload, form or JSON encoded.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (h *Handler) LoginCreate(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		h.logger.Error("login: parse payload", "error", err)
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	token, err := h.auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return err
	}

	h.setTokenCookie(c, token)
	return c.Redirect("/profile", fiber.StatusSeeOther)
}

func (h *Handler) ProfileShow(c *fiber.Ctx) error {
	raw := c.Cookies(AccessTokenCookie)
	if raw == "" {
		return c.Redirect("/", fiber.StatusFound)
	}

	session, err := h.auther.SessionFromToken(raw)
	if err != nil {
		// Malformed or expired token is handled the same as no session.
		return c.Redirect("/", fiber.StatusFound)
	}

	user, err := h.auther.IdentityFromSession(c.Context(), session)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return c.Redirect("/", fiber.StatusFound)
		}
		return err
	}

	return c.Render("profile", fiber.Map{
		"name":  user.Name,
		"email": user.Email,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	h.clearTokenCookie(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNotFound)
}

// tokenResponse is the JSON API success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) APIRegister(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to parse body"})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	token, err := h.auther.Register(c.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": store.ErrEmailTaken.Error()})
		}
		return err
	}

	return c.JSON(tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) APILogin(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to parse body"})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	token, err := h.auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.ErrInvalidCredentials.Error()})
		}
		return err
	}

	return c.JSON(tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.auther.Tokens().TTL()),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (h *Handler) clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
