// Package controllers traduce HTTP a llamadas de services.
package controllers

import (
	"net/http"

	"github.com/dropDatabas3/taskhub/internal/http/dto"
	"github.com/dropDatabas3/taskhub/internal/http/errors"
	"github.com/dropDatabas3/taskhub/internal/http/helpers"
	mw "github.com/dropDatabas3/taskhub/internal/http/middlewares"
	"github.com/dropDatabas3/taskhub/internal/http/services"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
	"github.com/dropDatabas3/taskhub/internal/session"
)

type AuthController struct {
	service services.AuthService
	cookie  session.CookieConfig
}

func NewAuthController(service services.AuthService, cookie session.CookieConfig) *AuthController {
	return &AuthController{service: service, cookie: cookie}
}

// Register POST /auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) || !helpers.Validate(w, req) {
		return
	}

	res, err := c.service.Register(r.Context(), provisioning.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, "register", err)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message:     "User created successfully",
		UserID:      res.UserID,
		WorkspaceID: res.WorkspaceID,
	})
}

// Login POST /auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) || !helpers.Validate(w, req) {
		return
	}

	res, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	http.SetCookie(w, c.cookie.Issue(res.Token, res.TTL))
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{Message: "Logged in successfully", User: res.User})
}

// Logout POST /auth/logout. Siempre limpia la cookie.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if token := c.cookie.Token(r); token != "" {
		if err := c.service.Logout(r.Context(), token); err != nil {
			logger.From(r.Context()).Warn("session destroy failed", logger.Err(err))
		}
	}
	http.SetCookie(w, c.cookie.Clear())
	helpers.WriteJSON(w, http.StatusOK, helpers.Message{Message: "Logged out successfully"})
}

// writeServiceError loguea los 5xx con la causa y responde con el error traducido.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	appErr := errors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed", logger.Op(op), logger.Err(err))
	}
	errors.WriteError(w, appErr)
}

func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mw.GetUserID(r.Context())
	if id == "" {
		errors.WriteError(w, errors.ErrUnauthorized)
		return "", false
	}
	return id, true
}
