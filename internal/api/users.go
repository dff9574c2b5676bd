package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) searchUsers(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return fail(c, fiber.StatusBadRequest, "Search query is required")
	}
	limit := int64(c.QueryInt("limit", 10))
	users, err := h.users.Search(c.Context(), q, callerID(c), limit)
	if err != nil {
		h.log.Errorw("user search failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while searching users")
	}
	return c.JSON(fiber.Map{"success": true, "users": users})
}

func (h *Handler) onlineUsers(c *fiber.Ctx) error {
	users, err := h.users.ListOnline(c.Context(), callerID(c))
	if err != nil {
		h.log.Errorw("online users failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while fetching online users")
	}
	return c.JSON(fiber.Map{"success": true, "users": users})
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Context(), c.Params("userId"))
	if err != nil {
		return failErr(c, err, "User not found")
	}
	// Presence from the tracker wins over the persisted flag, which can
	// lag behind an unclean disconnect.
	if status, err := h.presence.Get(c.Context(), user.ID); err == nil {
		user.IsOnline = status.Online
		if !status.LastSeen.IsZero() {
			user.LastSeen = status.LastSeen
		}
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

type settingsRequest struct {
	PreferredLanguage *string `json:"preferred_language"`
	SpeechEnabled     *bool   `json:"speech_enabled"`
}

func (h *Handler) updateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.users.UpdateSettings(c.Context(), callerID(c), req.PreferredLanguage, req.SpeechEnabled); err != nil {
		return failErr(c, err, "User not found")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Settings updated successfully"})
}
