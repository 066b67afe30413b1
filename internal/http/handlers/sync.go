package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/swapi-mirror/internal/http/response"
	"github.com/yungbote/swapi-mirror/internal/platform/apierr"
	"github.com/yungbote/swapi-mirror/internal/services"
)

type SyncHandler struct {
	sync services.SyncService
}

func NewSyncHandler(sync services.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// POST /swapi/sync/all
func (h *SyncHandler) SyncAll(c *gin.Context) {
	if async, _ := strconv.ParseBool(c.Query("async")); async {
		id, err := h.sync.StartSyncAll(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.RespondAccepted(c, gin.H{"run_id": id, "message": "Sync started"})
		return
	}
	res, err := h.sync.SyncAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, res)
}

// POST /swapi/sync/characters
func (h *SyncHandler) SyncCharacters(c *gin.Context) {
	h.kindResult(c, h.sync.SyncCharacters)
}

// POST /swapi/sync/films
func (h *SyncHandler) SyncFilms(c *gin.Context) {
	h.kindResult(c, h.sync.SyncFilms)
}

// POST /swapi/sync/starships
func (h *SyncHandler) SyncStarships(c *gin.Context) {
	h.kindResult(c, h.sync.SyncStarships)
}

type runsQuery struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

// GET /swapi/sync/runs
func (h *SyncHandler) ListRuns(c *gin.Context) {
	var q runsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(apierr.BadRequest("invalid_limit", msgLimitRange))
		return
	}
	runs, err := h.sync.ListRuns(c.Request.Context(), q.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

// GET /swapi/sync/runs/:id
func (h *SyncHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apierr.BadRequest("invalid_run_id", "invalid sync run id"))
		return
	}
	run, err := h.sync.GetRun(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

func (h *SyncHandler) kindResult(c *gin.Context, run func(ctx context.Context) (*services.KindResult, error)) {
	res, err := run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, res)
}
