package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

type StatsHandler struct {
	query ports.QueryService
}

func NewStatsHandler(query ports.QueryService) *StatsHandler {
	return &StatsHandler{query: query}
}

// Dashboard handles GET /api/stats.
//
// @Summary      Dashboard statistics
// @Description  Students see figures for their own issues; admins see the whole campus.
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/stats [get]
func (h *StatsHandler) Dashboard(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}

	stats, err := h.query.DashboardStats(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardResponse(stats))
}

// Admin handles GET /api/stats/admin.
//
// @Summary      Campus-wide statistics
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminStatsResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Router       /api/stats/admin [get]
func (h *StatsHandler) Admin(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}

	stats, err := h.query.AdminStats(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdminStatsResponse(stats))
}
