package chat

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medibot/medibot/internal/platform/session"
	"github.com/medibot/medibot/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/chat", h.Chat)
	api.POST("/new_chat", h.NewChat)
	api.GET("/usage_stats", h.UsageStats)
	api.GET("/history", h.History)
}

func (h *Handler) Chat(c echo.Context) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reply, err := h.svc.ProcessMessage(c.Request().Context(), session.VisitorID(c), req.Message)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, "Message cannot be empty")
		}
		var limitErr *DailyLimitError
		if errors.As(err, &limitErr) {
			return echo.NewHTTPError(http.StatusTooManyRequests, limitErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError,
			"An error occurred while processing your message. Please try again.")
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *Handler) NewChat(c echo.Context) error {
	sess, err := h.svc.NewChat(c.Request().Context(), session.VisitorID(c))
	if err != nil {
		var limitErr *DailyLimitError
		if errors.As(err, &limitErr) {
			return echo.NewHTTPError(http.StatusTooManyRequests, limitErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError,
			"Failed to start new chat. Please try again.")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "New chat session started! How can I help you today?",
		"session_id": sess.ID,
	})
}

func (h *Handler) UsageStats(c echo.Context) error {
	stats, err := h.svc.UsageStats(c.Request().Context(), session.VisitorID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) History(c echo.Context) error {
	pg := pagination.FromContext(c)
	messages, total, err := h.svc.History(c.Request().Context(), session.VisitorID(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "Chat history not available in your current plan")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(messages, total, pg.Limit, pg.Offset))
}
