package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/assistant"
	"github.com/pvlab/backend/pkg/logger"
)

type WebSocketHandler struct {
	engine *assistant.Engine
}

func NewWebSocketHandler(engine *assistant.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

// HandleConnection serves one chat websocket. Replies stream word by word
// followed by a completion frame with session metadata.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			Content   string `json:"content"`
			SessionID string `json:"session_id"`
			UserID    string `json:"user_id"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "chat" {
			continue
		}

		if err := h.streamResponse(c, msg.Content, msg.SessionID, msg.UserID); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, message, sessionID, userID string) error {
	h.sendChunk(c, "status", "Thinking...")

	resp := h.engine.Chat(context.Background(), message, sessionID, userID, true)
	if !resp.Success {
		h.sendError(c, resp.Error)
		return nil
	}

	words := splitIntoWords(resp.Message)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.sendChunk(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":         "complete",
		"session_id":   resp.SessionID,
		"context_used": resp.ContextUsed,
		"usage":        resp.Usage,
		"timestamp":    resp.Timestamp,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
