package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/realtime"
	"github.com/darasa/backend/core/user"
)

type realtimeApi struct {
	svc     *realtime.Service
	userSvc *user.Service
	logger  core.Logger
}

func registerRealtimeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *realtime.Service, userSvc *user.Service, logger core.Logger) {
	api := realtimeApi{svc: svc, userSvc: userSvc, logger: logger}

	rg := g.Group("/realtime", jwt)

	cg := rg.Group("/chats")
	cg.GET("", api.queryChats)
	cg.GET("/:id/messages", api.queryMessages)
	cg.POST("/:id/messages", api.sendMessage)
	cg.GET("/:id/typing", api.typingUsers)
	cg.POST("/:id/typing", api.startTyping)
	cg.DELETE("/:id/typing", api.stopTyping)

	rg.POST("/messages/:id/read", api.markRead)
	rg.GET("/events", api.queryEvents)

	rg.GET("/connection", api.connectionState)
	rg.POST("/connection/connect", api.connect)
	rg.POST("/connection/disconnect", api.disconnect)
	rg.POST("/connection/reconnect", api.reconnect)

	rg.GET("/stream", api.stream)
}

func (api *realtimeApi) queryChats(ctx echo.Context) error {
	chats, err := api.svc.Chats()
	if err != nil {
		return errors.Wrap(err, "querying chats")
	}
	if chats == nil {
		chats = []realtime.Chat{}
	}
	return ctx.JSON(http.StatusOK, chats)
}

func (api *realtimeApi) queryMessages(ctx echo.Context) error {
	msgs, err := api.svc.Messages(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	if msgs == nil {
		msgs = []realtime.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *realtimeApi) sendMessage(ctx echo.Context) error {
	var data SendMessageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendMessageRequest")
	}
	if data.Content == "" && len(data.Attachments) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "content", Error: "content or attachments required"})
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	msg, err := api.svc.SendMessage(ctxUsr, ctx.Param("id"), data.Content, data.Type, data.Attachments...)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *realtimeApi) markRead(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.MarkRead(ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *realtimeApi) typingUsers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.TypingUsers(ctx.Param("id")))
}

func (api *realtimeApi) startTyping(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.StartTyping(ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "starting typing")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *realtimeApi) stopTyping(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	api.svc.StopTyping(ctxUsr, ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}

func (api *realtimeApi) queryEvents(ctx echo.Context) error {
	events := api.svc.Events()
	if events == nil {
		events = []realtime.LiveEvent{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *realtimeApi) connectionState(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"state": api.svc.State()})
}

func (api *realtimeApi) connect(ctx echo.Context) error {
	api.svc.Connect()
	return ctx.JSON(http.StatusOK, echo.Map{"state": api.svc.State()})
}

func (api *realtimeApi) disconnect(ctx echo.Context) error {
	api.svc.Disconnect()
	return ctx.JSON(http.StatusOK, echo.Map{"state": api.svc.State()})
}

func (api *realtimeApi) reconnect(ctx echo.Context) error {
	if err := api.svc.Reconnect(); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return ctx.JSON(http.StatusOK, echo.Map{"state": api.svc.State()})
}

type SendMessageRequest struct {
	Content     string                `json:"content"`
	Type        string                `json:"type"`
	Attachments []realtime.Attachment `json:"attachments"`
}
