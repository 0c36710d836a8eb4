package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa/backend/core/notification"
)

type notificationApi struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, validate *validator.Validate) {
	api := notificationApi{svc: svc, validate: validate}

	ng := g.Group("/notifications", jwt)

	ng.GET("", api.query)
	ng.POST("", api.create)
	ng.DELETE("", api.clear)
	ng.GET("/unread-count", api.unreadCount)
	ng.POST("/read", api.markRead)
	ng.POST("/read-all", api.markAllRead)
	ng.GET("/filters", api.filters)
	ng.PUT("/filters", api.setFilters)
	ng.DELETE("/filters", api.clearFilters)
	ng.DELETE("/:id", api.destroy)
}

func (api *notificationApi) query(ctx echo.Context) error {
	notifs, err := api.svc.List()
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	notif, err := api.svc.Add(data)
	if err != nil {
		return errors.Wrap(err, "adding notification")
	}
	return ctx.JSON(http.StatusCreated, notif)
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	count, err := api.svc.UnreadCount()
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"unread": count})
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	var data BatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BatchRequest")
	}
	if err := api.svc.MarkRead(data.IDs...); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	if err := api.svc.MarkAllRead(); err != nil {
		return errors.Wrap(err, "marking all notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) clear(ctx echo.Context) error {
	if err := api.svc.Clear(); err != nil {
		return errors.Wrap(err, "clearing notifications")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) filters(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Filters())
}

func (api *notificationApi) setFilters(ctx echo.Context) error {
	var data notification.Filter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}
	api.svc.SetFilters(data)
	return ctx.JSON(http.StatusOK, api.svc.Filters())
}

func (api *notificationApi) clearFilters(ctx echo.Context) error {
	api.svc.ClearFilters()
	return ctx.NoContent(http.StatusNoContent)
}
