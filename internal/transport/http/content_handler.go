package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lingoplatform/internal/application/usecase"
	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
	"lingoplatform/internal/middleware"
)

type ContentHandler struct {
	catalog      *repository.CatalogRepository
	gamification *usecase.GamificationService
	progress     *usecase.ProgressTracker
	entitlements *usecase.EntitlementResolver
}

func NewContentHandler(catalog *repository.CatalogRepository, gamification *usecase.GamificationService, progress *usecase.ProgressTracker, entitlements *usecase.EntitlementResolver) *ContentHandler {
	return &ContentHandler{catalog: catalog, gamification: gamification, progress: progress, entitlements: entitlements}
}

type chapterView struct {
	domain.Chapter
	Locked bool `json:"locked"`
}

// ListChapters — витрина курса: все главы видны, закрытые помечены
// locked по текущим правам.
func (h *ContentHandler) ListChapters(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	chapters, err := h.catalog.ListChapters(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ent, err := h.entitlements.Resolve(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]chapterView, 0, len(chapters))
	for _, chapter := range chapters {
		// locked считаем от номера главы, тем же правилом, что и доступ
		idx, _ := strconv.Atoi(chapter.ID)
		views = append(views, chapterView{Chapter: chapter, Locked: idx < 1 || idx-1 >= ent.UnlockedChapters})
	}
	c.JSON(http.StatusOK, gin.H{"chapters": views})
}

func (h *ContentHandler) GetChapter(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	chapterID := c.Param("id")
	idx, _ := strconv.Atoi(chapterID)
	allowed, err := h.entitlements.CanAccessChapter(c, userID, idx-1)
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chapter is locked"})
		return
	}

	chapter, err := h.catalog.GetChapter(c, chapterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

type tickReq struct {
	ChapterID string `json:"chapterId" binding:"required"`
	LessonID  string `json:"lessonId" binding:"required"`
	Seconds   int    `json:"seconds" binding:"required,min=1"`
}

func (h *ContentHandler) LessonTick(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req tickReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.gamification.VideoTick(c, userID, req.ChapterID, req.LessonID, req.Seconds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type completeReq struct {
	ChapterID string `json:"chapterId" binding:"required"`
	LessonID  string `json:"lessonId" binding:"required"`
}

func (h *ContentHandler) CompleteLesson(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.gamification.LessonFinished(c, userID, req.ChapterID, req.LessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ContentHandler) GetProgress(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.progress.GetProgress(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
