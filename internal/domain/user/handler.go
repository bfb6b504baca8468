package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medibot/medibot/internal/platform/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/me", h.Me)
	api.POST("/switch_plan", h.SwitchPlan)
	api.POST("/switch_language", h.SwitchLanguage)
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.svc.GetOrCreate(c.Request().Context(), session.VisitorID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) SwitchPlan(c echo.Context) error {
	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Plan == "" {
		req.Plan = DefaultPlan
	}

	u, err := h.svc.SwitchPlan(c.Request().Context(), session.VisitorID(c), req.Plan)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid plan")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "success",
		"new_plan": u.Plan,
	})
}

func (h *Handler) SwitchLanguage(c echo.Context) error {
	var req struct {
		Language string `json:"language"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Language == "" {
		req.Language = DefaultLanguage
	}

	u, err := h.svc.SwitchLanguage(c.Request().Context(), session.VisitorID(c), req.Language)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Language not available in your current plan")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":       "success",
		"new_language": u.Language,
	})
}
