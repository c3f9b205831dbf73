package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

// AuditHandler exposes the ledger: direct event recording, filtered listing
// and per-row hash verification.
type AuditHandler struct {
	audit ports.AuditService
}

func NewAuditHandler(audit ports.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Record handles POST /api/audit/log. Unlike the internal emit path this is
// synchronous: the caller learns the assigned log id.
func (h *AuditHandler) Record(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req recordAuditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.audit.RecordEvent(c.Request().Context(), ports.AuditEvent{
		ActorID:      &userID,
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		IPAddress:    clientIP(c),
		UserAgent:    userAgent(c),
		Details:      req.Details,
		Severity:     req.Severity,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, recordAuditResponse{ID: id})
}

// List handles GET /api/audit/logs with actor, action, severity, date range
// and limit filters.
func (h *AuditHandler) List(c echo.Context) error {
	filter := ports.ListAuditFilter{
		ActorID:  c.QueryParam("actor_id"),
		Action:   c.QueryParam("action"),
		Severity: c.QueryParam("severity"),
	}
	if v := c.QueryParam("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_from must be RFC3339")
		}
		filter.DateFrom = t
	}
	if v := c.QueryParam("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_to must be RFC3339")
		}
		filter.DateTo = t
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		filter.Limit = limit
	}

	entries, err := h.audit.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditEntryResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}

// Verify handles GET /api/audit/logs/:id/verify. It recomputes the digest
// over the stored fields and reports whether the row is intact.
func (h *AuditHandler) Verify(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	entry, err := h.audit.VerifyEntry(c.Request().Context(), id)
	if err == nil {
		return c.JSON(http.StatusOK, verifyAuditResponse{ID: id, Valid: true})
	}
	if entry != nil {
		// Row exists but failed verification. Report the failure rather than
		// erroring; the caller asked exactly this question.
		return c.JSON(http.StatusOK, verifyAuditResponse{ID: id, Valid: false, Error: err.Error()})
	}
	return err
}

func toAuditEntryResponse(e *domain.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:           e.ID,
		ActorID:      e.ActorID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		Details:      e.Details,
		Severity:     e.Severity,
		Hash:         e.Hash,
		CreatedAt:    e.CreatedAt,
	}
}
