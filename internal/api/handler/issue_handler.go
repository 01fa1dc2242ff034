package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-issues/issue-tracker/internal/api/metrics"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry issue submission safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// IssueHandler handles HTTP requests for issues and their comments.
type IssueHandler struct {
	issues ports.IssueService
	query  ports.QueryService
}

func NewIssueHandler(issues ports.IssueService, query ports.QueryService) *IssueHandler {
	return &IssueHandler{issues: issues, query: query}
}

// List handles GET /api/issues.
//
// @Summary      List issues
// @Description  Newest first. Status, category and priority accept "all". Search matches title or description, case-insensitively.
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "pending | in-progress | resolved | closed | all"
// @Param        category  query     string  false  "infrastructure | cleanliness | network | equipment | other | all"
// @Param        priority  query     string  false  "low | medium | high | urgent | all"
// @Param        my        query     bool    false  "Only issues reported by the caller"
// @Param        search    query     string  false  "Free-text search"
// @Param        page      query     int     false  "Page number, default 1"
// @Param        limit     query     int     false  "Page size, default 10"
// @Success      200       {object}  listIssuesResponse
// @Failure      400       {object}  messageResponse
// @Failure      401       {object}  messageResponse
// @Router       /api/issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}
	var q listIssuesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters").SetInternal(err)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	result, err := h.query.ListIssues(c.Request().Context(), req, toListInput(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Get handles GET /api/issues/:id.
//
// @Summary      Get an issue with its comments
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueDetailResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/issues/{id} [get]
func (h *IssueHandler) Get(c echo.Context) error {
	if _, err := requester(c); err != nil {
		return err
	}

	detail, err := h.query.GetIssue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

// Create handles POST /api/issues.
//
// @Summary      Report an issue
// @Description  A repeated Idempotency-Key from the same user returns the issue created by the first request.
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Client-generated retry key"
// @Param        body             body      createIssueRequest  true   "Issue details"
// @Success      201              {object}  issueResponse
// @Failure      400              {object}  messageResponse
// @Failure      401              {object}  messageResponse
// @Failure      500              {object}  messageResponse
// @Router       /api/issues [post]
func (h *IssueHandler) Create(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}
	var body createIssueRequest
	if err := c.Bind(&body); err != nil {
		return errInvalidBody(err)
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	issue, err := h.issues.Create(c.Request().Context(), req, toCreateInput(body, key))
	if err != nil {
		return err
	}

	metrics.IssuesCreatedTotal.WithLabelValues(issue.Category).Inc()
	return c.JSON(http.StatusCreated, toIssueResponse(*issue))
}

// Edit handles PUT /api/issues/:id.
//
// @Summary      Edit an issue
// @Description  Reporters may edit their own issue while it is pending; admins may edit any issue.
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Issue id"
// @Param        body  body      updateIssueRequest  true  "Fields to change"
// @Success      200   {object}  issueResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/issues/{id} [put]
func (h *IssueHandler) Edit(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}
	var body updateIssueRequest
	if err := c.Bind(&body); err != nil {
		return errInvalidBody(err)
	}

	issue, err := h.issues.Edit(c.Request().Context(), req, c.Param("id"), toUpdateInput(body))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIssueResponse(*issue))
}

// ChangeStatus handles PUT /api/issues/:id/status.
//
// @Summary      Change the status of an issue
// @Description  Records the change in the status history and posts a system comment.
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Issue id"
// @Param        body  body      statusRequest  true  "Target status and optional note"
// @Success      200   {object}  issueResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/issues/{id}/status [put]
func (h *IssueHandler) ChangeStatus(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}
	var body statusRequest
	if err := c.Bind(&body); err != nil {
		return errInvalidBody(err)
	}

	issue, err := h.issues.ChangeStatus(c.Request().Context(), req, c.Param("id"), ports.ChangeStatusInput{
		Status: body.Status,
		Note:   body.Note,
	})
	if err != nil {
		return err
	}

	metrics.IssueStatusChangesTotal.WithLabelValues(issue.Status).Inc()
	metrics.CommentsCreatedTotal.WithLabelValues("status").Inc()
	return c.JSON(http.StatusOK, toIssueResponse(*issue))
}

// Delete handles DELETE /api/issues/:id.
//
// @Summary      Delete an issue
// @Description  Removes the issue and its comments. Relayed images are removed in the background.
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/issues/{id} [delete]
func (h *IssueHandler) Delete(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}

	if err := h.issues.Delete(c.Request().Context(), req, c.Param("id")); err != nil {
		return err
	}

	metrics.IssuesDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Issue deleted successfully"})
}

// AddComment handles POST /api/issues/:id/comments.
//
// @Summary      Comment on an issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Issue id"
// @Param        body  body      commentRequest  true  "Comment text"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/issues/{id}/comments [post]
func (h *IssueHandler) AddComment(c echo.Context) error {
	req, err := requester(c)
	if err != nil {
		return err
	}
	var body commentRequest
	if err := c.Bind(&body); err != nil {
		return errInvalidBody(err)
	}

	comment, err := h.issues.AddComment(c.Request().Context(), req, c.Param("id"), body.Text)
	if err != nil {
		return err
	}

	metrics.CommentsCreatedTotal.WithLabelValues("user").Inc()
	return c.JSON(http.StatusCreated, toCommentResponse(*comment))
}
