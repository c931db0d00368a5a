package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/idea-box/app/database"
	"github.com/lysyi3m/idea-box/app/moderation"
)

type Handler struct {
	service     *moderation.Service
	submissions database.SubmissionRepository
	ideas       database.IdeaRepository
}

func NewHandler(service *moderation.Service, submissions database.SubmissionRepository,
	ideas database.IdeaRepository) *Handler {
	return &Handler{
		service:     service,
		submissions: submissions,
		ideas:       ideas,
	}
}

func (h *Handler) GetIndex(c *gin.Context) {
	c.Header("Cache-Control", "public, must-revalidate, max-age=300")

	totalIdeas, err := h.ideas.GetCount()
	if err != nil {
		slog.Error("Database error", "operation", "count_ideas", "error", err)
	}

	totalSubmissions, err := h.submissions.GetCount()
	if err != nil {
		slog.Error("Database error", "operation", "count_submissions", "error", err)
	}

	counts, err := h.submissions.GetStatusCounts()
	if err != nil {
		slog.Error("Database error", "operation", "count_statuses", "error", err)
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"TotalIdeas":          totalIdeas,
		"TotalSubmissions":    totalSubmissions,
		"ApprovedSubmissions": counts.Approved,
	})
}

func (h *Handler) GetRandomIdea(c *gin.Context) {
	// Always serve a fresh random pick
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")

	idea, err := h.ideas.GetRandom()
	if err != nil {
		slog.Error("Database error", "operation", "random_idea", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load idea"})
		return
	}

	if idea == nil {
		c.JSON(http.StatusOK, gin.H{"error": "No ideas found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea.Text})
}

func (h *Handler) SubmitIdea(c *gin.Context) {
	var req submitIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sub, err := h.service.Submit(req.Idea, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		var rateLimited *moderation.RateLimitedError
		if errors.As(err, &rateLimited) {
			resetSeconds := int(rateLimited.ResetIn.Seconds())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       retryMessage(rateLimited.ResetIn),
				"retry_after": resetSeconds,
			})
			return
		}

		var validation *moderation.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Reason})
			return
		}

		slog.Error("Submission failed", "address", c.ClientIP(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save submission"})
		return
	}

	slog.Debug("Submission accepted", "id", sub.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": moderation.SubmissionAck})
}

func (h *Handler) GetRateLimitStatus(c *gin.Context) {
	status, err := h.service.RateLimitStatus(c.ClientIP())
	if err != nil {
		slog.Error("Rate limit status failed", "address", c.ClientIP(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check rate limit status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"max_attempts":     status.MaxAttempts,
		"attempts_used":    status.AttemptsUsed,
		"remaining":        status.Remaining,
		"reset_in_seconds": status.ResetInSeconds,
		"is_limited":       status.IsLimited,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if subCount, err := h.submissions.GetCount(); err == nil {
		health["submissions"] = subCount
	}
	if ideaCount, err := h.ideas.GetCount(); err == nil {
		health["ideas"] = ideaCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetAdminDashboard(c *gin.Context) {
	submissions, err := h.submissions.GetAll()
	if err != nil {
		slog.Error("Database error", "operation", "list_submissions", "error", err)
		c.String(http.StatusInternalServerError, "Failed to load submissions")
		return
	}

	counts, err := h.submissions.GetStatusCounts()
	if err != nil {
		slog.Error("Database error", "operation", "count_statuses", "error", err)
		c.String(http.StatusInternalServerError, "Failed to load submission stats")
		return
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Submissions": submissions,
		"Pending":     counts.Pending,
		"Approved":    counts.Approved,
		"Rejected":    counts.Rejected,
	})
}

func (h *Handler) ApproveSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	if err := h.service.Approve(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		slog.Error("Approve failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission approved and added to ideas"})
}

func (h *Handler) RejectSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	// Reason is optional: a missing or unparsable body means no reason given
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	if err := h.service.Reject(id, req.Reason); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		slog.Error("Reject failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission rejected"})
}

func (h *Handler) DeleteSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		slog.Error("Delete failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission deleted"})
}

func (h *Handler) submissionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return 0, false
	}
	return id, true
}

func retryMessage(resetIn time.Duration) string {
	minutes := int(resetIn.Minutes())
	if resetIn%time.Minute != 0 {
		minutes++
	}
	if minutes <= 1 {
		return "You've submitted too many ideas. Please try again in 1 minute."
	}
	return "You've submitted too many ideas. Please try again in " + strconv.Itoa(minutes) + " minutes."
}
