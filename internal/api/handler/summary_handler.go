package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hoangvq/summarize-be/internal/api/dto"
	"github.com/hoangvq/summarize-be/internal/domain"
	"github.com/hoangvq/summarize-be/internal/pipeline"
	"github.com/hoangvq/summarize-be/internal/store"
)

// CreateSummary handles POST /api/v1/summaries
// Accepts a submission, creates the pending record, and returns its id
// without waiting for the background pipeline.
func (h *SummaryHandler) CreateSummary(c *gin.Context) {
	var req dto.CreateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	title := req.Title
	if title == "" {
		title = req.FileName
	}

	summaryID, err := h.pipeline.Submit(c.Request.Context(), &pipeline.SubmitRequest{
		UserID:   req.UserID,
		FileURL:  req.FileURL,
		FileName: req.FileName,
		Title:    title,
	})
	if err != nil {
		h.logger.Error("Failed to submit summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to submit summary",
		})
		return
	}

	c.JSON(http.StatusAccepted, dto.CreateSummaryResponse{
		SummaryID: summaryID,
		Status:    domain.StatusPending,
	})
}

// GetSummary handles GET /api/v1/summaries/:summary_id
// Polling endpoint: returns the current status projection.
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	summaryID := c.Param("summary_id")

	if _, err := uuid.Parse(summaryID); err != nil {
		h.logger.Error("Invalid summary_id format", slog.String("summary_id", summaryID))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "summary_id must be a valid UUID",
		})
		return
	}

	summary, err := h.pipeline.Get(c.Request.Context(), summaryID)
	if err != nil {
		if errors.Is(err, domain.ErrSummaryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Summary not found",
			})
			return
		}

		h.logger.Error("Failed to get summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get summary",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SummaryStatusResponse{
		SummaryID:   summary.SummaryID,
		Title:       summary.Title,
		Status:      summary.Status,
		SummaryText: summary.SummaryText,
		CreatedAt:   summary.CreatedAt.Format(time.RFC3339),
	})
}

// ListSummaries handles GET /api/v1/summaries
// Lists a user's summaries newest-first with cursor pagination.
func (h *SummaryHandler) ListSummaries(c *gin.Context) {
	var req dto.ListSummariesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeSummaryCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := store.SummaryFilter{
		UserID:   req.UserID,
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	summaries, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list summaries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list summaries",
		})
		return
	}

	hasMore := len(summaries) > req.PageSize
	if hasMore {
		summaries = summaries[:req.PageSize]
	}

	response := make([]dto.SummaryDTO, len(summaries))
	for i, s := range summaries {
		response[i] = dto.SummaryDTO{
			SummaryID:   s.SummaryID,
			FileURL:     s.FileURL,
			FileName:    s.FileName,
			Title:       s.Title,
			Status:      s.Status,
			SummaryText: s.SummaryText,
			CreatedAt:   s.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
		}
	}

	var nextCursor string
	if hasMore {
		last := summaries[len(summaries)-1]
		nextCursor = EncodeSummaryCursor(&store.SummaryCursor{
			CreatedAt: last.CreatedAt,
			SummaryID: last.SummaryID,
		})
	}

	c.JSON(http.StatusOK, dto.ListSummariesResponse{
		Summaries:  response,
		NextCursor: nextCursor,
	})
}

// DeleteSummary handles DELETE /api/v1/summaries/:summary_id
// Row deletion only; it never interacts with the status state machine.
func (h *SummaryHandler) DeleteSummary(c *gin.Context) {
	summaryID := c.Param("summary_id")

	if _, err := uuid.Parse(summaryID); err != nil {
		h.logger.Error("Invalid summary_id format", slog.String("summary_id", summaryID))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "summary_id must be a valid UUID",
		})
		return
	}

	if err := h.store.Delete(c.Request.Context(), summaryID); err != nil {
		if errors.Is(err, domain.ErrSummaryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Summary not found",
			})
			return
		}

		h.logger.Error("Failed to delete summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete summary",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
