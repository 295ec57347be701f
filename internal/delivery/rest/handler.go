package rest

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/internal/domain/constants"
	"github.com/smartspec/build-advisor/internal/domain/entity"
	"github.com/smartspec/build-advisor/internal/domain/repository"
	"github.com/smartspec/build-advisor/internal/infrastructure/export"
	"github.com/smartspec/build-advisor/internal/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler HTTP handlers for the recommendation API
type Handler struct {
	recommendations usecase.RecommendationUseCase
	log             *zap.Logger
}

// NewHandler creates the API handler set
func NewHandler(uc usecase.RecommendationUseCase, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{recommendations: uc, log: log.Named("http")}
}

func errorBody(msg string) entity.ErrorResult {
	return entity.ErrorResult{Error: msg}
}

// Recommend POST /api/v1/recommendation
//
// 200 carries either the recommendation or {"error":"bad response"}.
// Malformed bodies get 400 and provider failures 502.
func (h *Handler) Recommend(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return
		}
		c.JSON(http.StatusBadRequest, errorBody("could not read request body"))
		return
	}

	req, err := usecase.DecodeBuildRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := strings.TrimSpace(c.Query("user_id"))
	if userID != "" {
		c.Set(userIDKey, userID)
	}

	saved, err := h.recommendations.RecommendForUser(c.Request.Context(), userID, req)
	var rec *entity.BuildRecommendation
	if saved != nil {
		rec = &saved.Build
	}
	payload, err := usecase.ResponsePayload(rec, err)
	if err != nil {
		h.log.Error("generation failed",
			zap.String("request_id", RequestIDFromContext(c)),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, errorBody("generation failed"))
		return
	}

	if saved != nil && saved.ID != "" {
		c.Header("X-Build-ID", saved.ID)
	}
	c.JSON(http.StatusOK, payload)
}

// PastBuilds GET /api/v1/past_builds/:userID
func (h *Handler) PastBuilds(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, errorBody("user id is required"))
		return
	}
	c.Set(userIDKey, userID)

	builds, err := h.recommendations.History(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("history lookup failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("could not load builds"))
		return
	}
	c.JSON(http.StatusOK, builds)
}

// GetBuild GET /api/v1/builds/:id
func (h *Handler) GetBuild(c *gin.Context) {
	build, ok := h.lookupBuild(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, build)
}

// ExportBuild GET /api/v1/builds/:id/export.xlsx
func (h *Handler) ExportBuild(c *gin.Context) {
	build, ok := h.lookupBuild(c)
	if !ok {
		return
	}

	data, err := export.BuildXLSX(*build)
	if err != nil {
		h.log.Error("xlsx export failed", zap.String("build_id", build.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("export failed"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(*build)+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) lookupBuild(c *gin.Context) (*entity.SavedBuild, bool) {
	build, err := h.recommendations.GetBuild(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBuildNotFound) {
			c.JSON(http.StatusNotFound, errorBody("build not found"))
			return nil, false
		}
		h.log.Error("build lookup failed", zap.String("build_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("could not load build"))
		return nil, false
	}
	return build, true
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
