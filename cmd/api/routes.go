package main

import (
	"claims-platform/internal/auth"
	"claims-platform/internal/httpapi"
	"claims-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, authMW gin.HandlerFunc, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes (token issuance) stay outside the access-token gate.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireActor())
	{
		v1.GET("/me", func(c *gin.Context) {
			actor, _ := auth.ActorFrom(c.Request.Context())
			c.JSON(200, gin.H{
				"usuario_id":     actor.ID,
				"nombre_usuario": actor.Nombre,
				"area_usuario":   actor.Area,
				"rol":            actor.Rol,
			})
		})

		// RECLAMOS routes
		reclamos := v1.Group("/reclamos")
		{
			read := rbac.RequireAnyRole(rbac.RoleAgente, rbac.RoleLector)
			write := rbac.RequireAnyRole(rbac.RoleAgente)

			reclamos.GET("", read, h.ListClaims)
			reclamos.GET("/:id", read, h.GetClaim)
			reclamos.GET("/:id/auditoria", read, h.ClaimHistory)

			reclamos.POST("", write, h.CreateClaim)
			reclamos.PATCH("/:id", write, h.UpdateClaim)
			reclamos.POST("/:id/asignar", write, h.AssignClaim)

			// Deletion is admin-only; the claim's history survives it.
			reclamos.DELETE("/:id", rbac.RequireAnyRole(), h.DeleteClaim)
		}

		// CATALOG routes
		estados := v1.Group("/estados")
		{
			read := rbac.RequireAnyRole(rbac.RoleAgente, rbac.RoleLector)

			estados.GET("", read, h.ListEstados)
			estados.GET("/:id/sub-estados", read, h.ListSubEstados)

			// Catalog writes are admin-only.
			estados.POST("", rbac.RequireAnyRole(), h.CreateEstado)
			estados.POST("/:id/sub-estados", rbac.RequireAnyRole(), h.CreateSubEstado)
		}

		// REPORTING routes
		reportes := v1.Group("/reportes")
		reportes.Use(rbac.RequireAnyRole(rbac.RoleAgente, rbac.RoleLector))
		{
			reportes.GET("/resumen", h.ClaimsSummary)
			reportes.GET("/actividad", h.ActivitySummary)
		}
	}
}
