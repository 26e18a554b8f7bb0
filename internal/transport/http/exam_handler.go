package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lingoplatform/internal/application/usecase"
	"lingoplatform/internal/middleware"
)

type ExamHandler struct {
	exams *usecase.ExamService
}

func NewExamHandler(exams *usecase.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

type examSubmitReq struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

func (h *ExamHandler) SubmitChapterExam(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req examSubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.exams.SubmitChapterExam(c, userID, c.Param("chapterId"), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ExamHandler) SubmitFinalExam(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req examSubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.exams.SubmitFinalExam(c, userID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ExamHandler) ListAttempts(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	attempts, err := h.exams.Attempts(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}
