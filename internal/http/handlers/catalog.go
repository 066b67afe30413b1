package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/swapi-mirror/internal/http/response"
	"github.com/yungbote/swapi-mirror/internal/platform/apierr"
	"github.com/yungbote/swapi-mirror/internal/services"
)

const (
	msgSkipTooLarge = "Skip value too large"
	msgSkipNegative = "Skip must be 0 or greater"
	msgLimitRange   = "Limit must be 1-100"
	msgTermRequired = "Search term is required"
)

type pageQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0,max=10000"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

type nameSearchQuery struct {
	pageQuery
	Name string `form:"name" binding:"required,min=1"`
}

type titleSearchQuery struct {
	pageQuery
	Title string `form:"title" binding:"required,min=1"`
}

type CatalogHandler struct {
	query services.CatalogQuery
}

func NewCatalogHandler(query services.CatalogQuery) *CatalogHandler {
	return &CatalogHandler{query: query}
}

// GET /swapi/characters
func (h *CatalogHandler) ListCharacters(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := h.query.ListCharacters(c.Request.Context(), q.Skip, q.Limit)
	respond(c, out, err)
}

// GET /swapi/characters/search
func (h *CatalogHandler) SearchCharacters(c *gin.Context) {
	var q nameSearchQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := h.query.SearchCharacters(c.Request.Context(), q.Name, q.Skip, q.Limit)
	respond(c, out, err)
}

// GET /swapi/films
func (h *CatalogHandler) ListFilms(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := h.query.ListFilms(c.Request.Context(), q.Skip, q.Limit)
	respond(c, out, err)
}

// GET /swapi/films/search
func (h *CatalogHandler) SearchFilms(c *gin.Context) {
	var q titleSearchQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := h.query.SearchFilms(c.Request.Context(), q.Title, q.Skip, q.Limit)
	respond(c, out, err)
}

// GET /swapi/starships
func (h *CatalogHandler) ListStarships(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := h.query.ListStarships(c.Request.Context(), q.Skip, q.Limit)
	respond(c, out, err)
}

// GET /swapi/starships/search
func (h *CatalogHandler) SearchStarships(c *gin.Context) {
	var q nameSearchQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := h.query.SearchStarships(c.Request.Context(), q.Name, q.Skip, q.Limit)
	respond(c, out, err)
}

func respond(c *gin.Context, payload any, err error) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, payload)
}

// bindQuery binds and validates paging/search parameters, pushing a 400 with the
// first violated rule on failure.
func bindQuery(c *gin.Context, dst any) bool {
	err := c.ShouldBindQuery(dst)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		_ = c.Error(apierr.BadRequest("invalid_query", "invalid query parameters: "+err.Error()))
		return false
	}
	fe := ve[0]
	switch fe.Field() {
	case "Skip":
		if fe.Tag() == "min" {
			_ = c.Error(apierr.BadRequest("invalid_skip", msgSkipNegative))
		} else {
			_ = c.Error(apierr.BadRequest("skip_too_large", msgSkipTooLarge))
		}
	case "Limit":
		_ = c.Error(apierr.BadRequest("invalid_limit", msgLimitRange))
	case "Name", "Title":
		_ = c.Error(apierr.BadRequest("missing_search_term", msgTermRequired))
	default:
		_ = c.Error(apierr.BadRequest("invalid_query", strings.TrimSpace(fe.Error())))
	}
	return false
}
