package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"claims-platform/internal/audit"
	"claims-platform/internal/auth"
	"claims-platform/internal/catalog"
	"claims-platform/internal/claims"
	"claims-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Directory catalog.Repository
	Claims    *claims.Service
	Catalog   *catalog.Service
	Reporting *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"usuario_id"`
}

// Login issues a JWT token pair for a directory user.
//
// NOTE: This is a skeleton-only endpoint: it validates that the user exists
// but performs no credential check. Real deployments must verify credentials
// against an identity provider before issuing tokens.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "usuario_id required"})
		return
	}

	u, err := h.Directory.GetUsuario(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}

	actor := auth.Actor{ID: u.ID, Nombre: u.Nombre, Rol: u.Rol}
	if u.Area != nil {
		actor.Area = *u.Area
	}
	pair, err := h.Auth.IssuePair(time.Now(), actor)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Claims ---

func (h Handlers) CreateClaim(c *gin.Context) {
	actor, err := auth.ActorFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "actor required"})
		return
	}
	var req claims.CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Claims.Create(c.Request.Context(), actor, req)
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) GetClaim(c *gin.Context) {
	out, err := h.Claims.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ListClaims(c *gin.Context) {
	f := claims.ListFilter{
		EstadoID:  c.Query("estado_id"),
		Prioridad: c.Query("prioridad"),
		AsignadoA: c.Query("asignado_a"),
		Busqueda:  c.Query("busqueda"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		f.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
			return
		}
		f.Offset = n
	}
	out, err := h.Claims.List(c.Request.Context(), f)
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reclamos": out})
}

func (h Handlers) UpdateClaim(c *gin.Context) {
	actor, err := auth.ActorFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "actor required"})
		return
	}
	var req claims.UpdateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Claims.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) AssignClaim(c *gin.Context) {
	actor, err := auth.ActorFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "actor required"})
		return
	}
	var req claims.AssignClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Claims.Assign(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DeleteClaim(c *gin.Context) {
	if err := h.Claims.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeClaimsError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClaimHistory serves the audit trail of one claim, newest first by default.
// An unknown or deleted claim id yields an empty page, not 404.
func (h Handlers) ClaimHistory(c *gin.Context) {
	q := audit.HistoryQuery{Cursor: c.Query("cursor")}
	if c.Query("orden") == "asc" {
		q.Order = audit.Ascending
	}
	if v := c.Query("limite"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limite must be an integer"})
			return
		}
		q.Limit = n
	}

	page, err := h.Claims.History(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	resp := gin.H{"eventos": page.Entries}
	if page.NextCursor != "" {
		resp["next_cursor"] = page.NextCursor
	}
	c.JSON(http.StatusOK, resp)
}

// --- Catalog ---

func (h Handlers) ListEstados(c *gin.Context) {
	out, err := h.Catalog.ListEstados(c.Request.Context())
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estados": out})
}

func (h Handlers) CreateEstado(c *gin.Context) {
	var req catalog.CreateEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Catalog.CreateEstado(c.Request.Context(), req)
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) ListSubEstados(c *gin.Context) {
	out, err := h.Catalog.ListSubEstados(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sub_estados": out})
}

func (h Handlers) CreateSubEstado(c *gin.Context) {
	var req catalog.CreateSubEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.EstadoID = c.Param("id")
	out, err := h.Catalog.CreateSubEstado(c.Request.Context(), req)
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// --- Reporting ---

func (h Handlers) ClaimsSummary(c *gin.Context) {
	out, err := h.Reporting.ClaimsSummary(c.Request.Context())
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ActivitySummary(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return
	}
	out, err := h.Reporting.ActivitySummary(c.Request.Context(), reporting.ActivitySummaryRequest{
		Range: reporting.TimeRange{From: from, To: to},
	})
	if err != nil {
		writeClaimsError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// writeClaimsError maps domain errors to HTTP statuses. Unexpected errors
// never leak internals to the client.
func writeClaimsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, claims.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, claims.ErrLocked):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "claim is being updated, retry"})
	case errors.Is(err, claims.ErrInvalidArgument),
		errors.Is(err, catalog.ErrInvalidRequest),
		errors.Is(err, reporting.ErrInvalidRequest),
		errors.Is(err, audit.ErrInvalidCursor):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
