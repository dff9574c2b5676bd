package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/translation"
)

type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *Handler) translate(c *fiber.Ctx) error {
	var req translateRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Text == "" || req.From == "" || req.To == "" {
		return fail(c, fiber.StatusBadRequest, "Missing required parameters")
	}
	translated, err := h.translator.Translate(c.Context(), req.Text, req.From, req.To)
	if err != nil {
		return failErr(c, err, "Translation failed")
	}
	return c.JSON(fiber.Map{"success": true, "translated_text": translated})
}

func (h *Handler) getLanguages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "languages": translation.SupportedLanguages()})
}
