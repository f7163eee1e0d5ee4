package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"recruit-eval/internal/domain"
	"recruit-eval/internal/service"
)

const (
	msgNoData       = "no data available"
	msgCouldNotCalc = "could not calculate compatibility"
)

// CompatibilityHandler expone el calculo de compatibilidad de candidatos.
type CompatibilityHandler struct {
	logger *zap.Logger
	compat *service.CompatibilityService
}

// NewCompatibilityHandler crea una instancia de CompatibilityHandler.
func NewCompatibilityHandler(logger *zap.Logger, compat *service.CompatibilityService) *CompatibilityHandler {
	return &CompatibilityHandler{
		logger: logger,
		compat: compat,
	}
}

// Evaluate maneja POST /compatibility con respuestas y perfil en el cuerpo.
func (h *CompatibilityHandler) Evaluate(c *gin.Context) {
	var req domain.EvaluationPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid compatibility request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.compat.EvaluatePayload(req.Responses, req.Profile(), req.WeightMap)
	h.respond(c, result, err)
}

// GetCandidateCompatibility maneja GET /candidates/:candidateId/compatibility?process_id=.
func (h *CompatibilityHandler) GetCandidateCompatibility(c *gin.Context) {
	candidateID := c.Param("candidateId")
	processID := c.Query("process_id")
	if processID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "process_id is required"})
		return
	}

	result, err := h.compat.EvaluateCandidate(c.Request.Context(), candidateID, processID)
	h.respond(c, result, err)
}

// RankProcess maneja GET /processes/:processId/ranking.
func (h *CompatibilityHandler) RankProcess(c *gin.Context) {
	processID := c.Param("processId")

	rankings, err := h.compat.RankCandidates(c.Request.Context(), processID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processId": processID, "ranking": rankings})
}

func (h *CompatibilityHandler) respond(c *gin.Context, result domain.CompatibilityResult, err error) {
	if errors.Is(err, domain.ErrNoCandidateData) || (err == nil && result.InsufficientData()) {
		c.JSON(http.StatusOK, gin.H{"result": domain.InsufficientDataResult(), "message": msgNoData})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// writeError traduce errores del servicio a respuestas HTTP.
func (h *CompatibilityHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompatibilityInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, domain.ErrMalformedResponse), errors.Is(err, domain.ErrInvalidTarget):
		h.logger.Warn("compatibility input rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCouldNotCalc, "detail": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "process not found"})
	default:
		h.logger.Error("compatibility calculation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgCouldNotCalc})
	}
}
