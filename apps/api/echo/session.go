package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/session"
)

type authApi struct {
	svc      *session.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service, validate *validator.Validate) {
	api := authApi{svc: svc, validate: validate}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	tg := ag.Group("", jwt)
	tg.POST("/logout", api.logout)
	tg.GET("/session", api.current)
	tg.POST("/token-refresh", api.refreshToken)
	tg.POST("/switch-role", api.switchRole)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Login(data.Email, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case session.ErrAuthenticationFailed:
			return errAuthenticationFailed
		case session.ErrAccountDeactivated:
			return errAccountDeactivated
		}
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := api.svc.Logout(); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) current(ctx echo.Context) error {
	sess, ok := api.svc.Current()
	if !ok {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, SessionResponse{Status: api.svc.Status(), Session: sess})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	token, err := api.svc.Refresh(&claims)
	if err != nil {
		switch errors.Cause(err) {
		case session.ErrAccountDeactivated:
			return errAccountDeactivated
		case session.ErrRefreshExpired:
			return errRefreshExpired
		}
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *authApi) switchRole(ctx echo.Context) error {
	var data SwitchRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SwitchRoleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.SwitchRole(data.Role)
	if err != nil {
		return errors.Wrap(err, "switching role")
	}
	return ctx.JSON(http.StatusOK, sess)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	SessionResponse struct {
		Status  string          `json:"status"`
		Session session.Session `json:"session"`
	}

	SwitchRoleRequest struct {
		Role string `json:"role" validate:"required"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (sr *SwitchRoleRequest) Validate(validate *validator.Validate) error {
	sr.Role = core.CleanString(sr.Role, true /* lower */)
	return validate.Struct(sr)
}
