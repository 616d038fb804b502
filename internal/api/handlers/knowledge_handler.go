package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pvlab/backend/internal/knowledge"
)

type KnowledgeHandler struct {
	store *knowledge.Store
}

func NewKnowledgeHandler(store *knowledge.Store) *KnowledgeHandler {
	return &KnowledgeHandler{store: store}
}

func (h *KnowledgeHandler) AddKnowledge(c *fiber.Ctx) error {
	var req struct {
		Category string `json:"category"`
		Key      string `json:"key"`
		Content  any    `json:"content"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Category == "" || req.Key == "" || req.Content == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category, key, and content are required",
		})
	}

	h.store.Add(req.Category, req.Key, req.Content)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"added":    true,
		"category": req.Category,
		"key":      req.Key,
	})
}

func (h *KnowledgeHandler) GetKnowledge(c *fiber.Ctx) error {
	category := c.Params("category")
	key := c.Query("key")

	matches, ok := h.store.Get(category, key)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Knowledge not found",
		})
	}

	return c.JSON(fiber.Map{
		"category": category,
		"matches":  matches,
	})
}

func (h *KnowledgeHandler) ListCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": h.store.Categories(),
	})
}

func (h *KnowledgeHandler) SearchKnowledge(c *fiber.Ctx) error {
	query := c.Query("q")
	category := c.Query("category")

	if query == "" || category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q and category query parameters are required",
		})
	}

	matches, ok := h.store.Retrieve(query, category)
	if !ok {
		return c.JSON(fiber.Map{
			"category": category,
			"matches":  []knowledge.Match{},
		})
	}

	return c.JSON(fiber.Map{
		"category": category,
		"matches":  matches,
	})
}
