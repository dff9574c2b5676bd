package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/auth"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/chaterr"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/config"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/gateway"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/presence"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/repository"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/translation"
)

type Handler struct {
	rooms      repository.RoomStore
	messages   repository.MessageStore
	users      repository.UserStore
	presence   presence.Tracker
	translator *translation.Service
	log        *zap.SugaredLogger
}

func NewHandler(
	rooms repository.RoomStore,
	messages repository.MessageStore,
	users repository.UserStore,
	tracker presence.Tracker,
	translator *translation.Service,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		rooms:      rooms,
		messages:   messages,
		users:      users,
		presence:   tracker,
		translator: translator,
		log:        log,
	}
}

// NewServer wires the HTTP surface and the websocket endpoint onto one
// fiber app.
func NewServer(cfg *config.Config, h *Handler, wsrv *gateway.Server, validator *auth.Validator, limiter *RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")
	if limiter != nil {
		v1.Use(limiter.Middleware())
	}

	v1.Get("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	v1.Get("/ws", websocket.New(wsrv.HandleWS()))

	v1.Get("/languages", h.getLanguages)

	authed := v1.Group("", AuthRequired(validator))
	authed.Get("/rooms", h.listRooms)
	authed.Post("/rooms", h.createRoom)
	authed.Get("/rooms/:roomId", h.getRoom)
	authed.Post("/rooms/:roomId/join", h.joinRoom)
	authed.Post("/rooms/:roomId/leave", h.leaveRoom)
	authed.Get("/rooms/:roomId/messages", h.listMessages)
	authed.Delete("/messages/:messageId", h.deleteMessage)
	authed.Get("/users/search", h.searchUsers)
	authed.Get("/users/online", h.onlineUsers)
	authed.Get("/users/:userId", h.getUser)
	authed.Put("/users/settings", h.updateSettings)
	authed.Post("/translate", h.translate)

	return app
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg})
}

// failErr maps taxonomy errors onto HTTP status classes.
func failErr(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, chaterr.ErrNotFound):
		return fail(c, fiber.StatusNotFound, msg)
	case errors.Is(err, chaterr.ErrUnauthorized):
		return fail(c, fiber.StatusForbidden, msg)
	case errors.Is(err, chaterr.ErrAuthentication):
		return fail(c, fiber.StatusUnauthorized, msg)
	case errors.Is(err, chaterr.ErrInvalidContent), errors.Is(err, chaterr.ErrRoomFull), errors.Is(err, chaterr.ErrLastMember):
		return fail(c, fiber.StatusBadRequest, msg)
	case errors.Is(err, chaterr.ErrTranslationUnavailable):
		return fail(c, fiber.StatusBadGateway, msg)
	default:
		return fail(c, fiber.StatusInternalServerError, msg)
	}
}
