package main

import (
	"net/http"

	"gatepass/src/middlewares"
	"gatepass/src/types"
	"gatepass/src/utils"

	"github.com/gin-gonic/gin"
)

func eventsRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.GET("/events", func(ctx *gin.Context) {
		events, err := utils.GetEvents()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": events})
	})

	events := apiv1.Group("/events")
	events.Use(middlewares.AuthMiddleware)
	events.
		POST("", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			eventId, err := utils.CreateNewEvent(&body, userId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": eventId}})
		}).
		POST("/:id/ticket-types", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateTicketTypeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ttId, err := utils.CreateTicketType(params.ID, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": ttId}})
		})
	return apiv1
}
