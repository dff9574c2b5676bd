package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/chaterr"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
)

func (h *Handler) listRooms(c *fiber.Ctx) error {
	rooms, err := h.rooms.ListRoomsForUser(c.Context(), callerID(c))
	if err != nil {
		h.log.Errorw("list rooms failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while fetching rooms")
	}
	return c.JSON(fiber.Map{"success": true, "rooms": rooms})
}

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	MaxMembers  int    `json:"max_members"`
}

func (h *Handler) createRoom(c *fiber.Ctx) error {
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > models.MaxRoomNameLen {
		return fail(c, fiber.StatusBadRequest, "Room name is required (max 50 characters)")
	}
	desc := strings.TrimSpace(req.Description)
	if len(desc) > models.MaxRoomDescriptionLen {
		return fail(c, fiber.StatusBadRequest, "Description too long (max 200 characters)")
	}
	maxMembers := req.MaxMembers
	if maxMembers <= 0 {
		maxMembers = models.DefaultMaxMembers
	}

	room := &models.Room{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		IsPrivate:   req.IsPrivate,
		AdminID:     callerID(c),
		MaxMembers:  maxMembers,
		IsActive:    true,
	}
	room.AddMember(callerID(c), models.RoleAdmin)

	if err := h.rooms.CreateRoom(c.Context(), room); err != nil {
		h.log.Errorw("create room failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while creating room")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Chat room created successfully",
		"room":    room,
	})
}

func (h *Handler) getRoom(c *fiber.Ctx) error {
	room, err := h.rooms.GetRoom(c.Context(), c.Params("roomId"))
	if err != nil {
		return failErr(c, err, "Chat room not found")
	}
	if !room.IsMember(callerID(c)) {
		return fail(c, fiber.StatusForbidden, "Not authorized to access this room")
	}
	members, err := h.users.GetUsers(c.Context(), room.MemberIDs())
	if err != nil {
		h.log.Errorw("room member load failed", "room", room.ID, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while fetching room")
	}
	public := make([]models.PublicUser, 0, len(members))
	for _, m := range members {
		public = append(public, m.Public())
	}
	return c.JSON(fiber.Map{"success": true, "room": room, "members": public})
}

func (h *Handler) joinRoom(c *fiber.Ctx) error {
	room, err := h.rooms.GetRoom(c.Context(), c.Params("roomId"))
	if err != nil {
		return failErr(c, err, "Chat room not found")
	}
	if room.IsPrivate {
		return fail(c, fiber.StatusForbidden, "Cannot join private room")
	}
	userID := callerID(c)
	if room.IsMember(userID) {
		return c.JSON(fiber.Map{"success": true, "message": "Already a member", "room": room})
	}

	// Capacity is enforced by the guarded write, not by the read above,
	// so concurrent joins cannot overshoot max_members.
	added, err := h.rooms.JoinMember(c.Context(), room.ID, models.Membership{
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		h.log.Errorw("join room failed", "room", room.ID, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while joining room")
	}
	if !added {
		// lost a race: either this user joined meanwhile or the room filled
		if room, err = h.rooms.GetRoom(c.Context(), room.ID); err == nil && room.IsMember(userID) {
			return c.JSON(fiber.Map{"success": true, "message": "Already a member", "room": room})
		}
		return failErr(c, chaterr.ErrRoomFull, "Room is full")
	}

	room.AddMember(userID, models.RoleMember)
	return c.JSON(fiber.Map{"success": true, "message": "Joined room successfully", "room": room})
}

func (h *Handler) leaveRoom(c *fiber.Ctx) error {
	room, err := h.rooms.GetRoom(c.Context(), c.Params("roomId"))
	if err != nil {
		return failErr(c, err, "Chat room not found")
	}
	userID := callerID(c)
	if !room.IsMember(userID) {
		return fail(c, fiber.StatusForbidden, "Not a member of this room")
	}
	// A sole-member admin must delete the room instead of abandoning it.
	if room.AdminID == userID && room.MemberCount() == 1 {
		return failErr(c, chaterr.ErrLastMember, "Admin cannot leave room as the only member")
	}

	room.RemoveMember(userID)
	if err := h.rooms.SaveMembers(c.Context(), room); err != nil {
		h.log.Errorw("leave room failed", "room", room.ID, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while leaving room")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Left room successfully"})
}

func (h *Handler) listMessages(c *fiber.Ctx) error {
	room, err := h.rooms.GetRoom(c.Context(), c.Params("roomId"))
	if err != nil || !room.IsMember(callerID(c)) {
		return fail(c, fiber.StatusForbidden, "Not authorized to access messages in this room")
	}

	// Clamp before the query and the pagination math; a zero limit would
	// divide by zero below.
	page := int64(c.QueryInt("page", 1))
	if page < 1 {
		page = 1
	}
	limit := int64(c.QueryInt("limit", 50))
	if limit < 1 {
		limit = 50
	}
	msgs, err := h.messages.ListByRoom(c.Context(), room.ID, page, limit)
	if err != nil {
		h.log.Errorw("list messages failed", "room", room.ID, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while fetching messages")
	}
	total, err := h.messages.CountByRoom(c.Context(), room.ID)
	if err != nil {
		h.log.Errorw("count messages failed", "room", room.ID, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Server error while fetching messages")
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"messages": msgs,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

func (h *Handler) deleteMessage(c *fiber.Ctx) error {
	msg, err := h.messages.GetMessage(c.Context(), c.Params("messageId"))
	if err != nil {
		return failErr(c, err, "Message not found")
	}
	room, err := h.rooms.GetRoom(c.Context(), msg.RoomID)
	if err != nil {
		return failErr(c, err, "Chat room not found")
	}
	userID := callerID(c)
	if msg.SenderID != userID && room.AdminID != userID {
		return fail(c, fiber.StatusForbidden, "Not authorized to delete this message")
	}
	if err := h.messages.Delete(c.Context(), msg.ID); err != nil {
		return failErr(c, err, "Server error while deleting message")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Message deleted successfully"})
}
