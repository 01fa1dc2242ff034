package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

// requester builds the authenticated identity injected by the Auth middleware.
// Both the user id and the role must be present; their absence means the
// route was mounted without authentication.
func requester(c echo.Context) (domain.Requester, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" || role == "" {
		return domain.Requester{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
	}
	return domain.Requester{ID: id, Role: role}, nil
}
