package main

import (
	"errors"
	"net/http"

	"gatepass/src/middlewares"
	"gatepass/src/types"
	"gatepass/src/utils"

	"github.com/gin-gonic/gin"
)

func transfersRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)

	tickets := apiv1.Group("/tickets")
	tickets.Use(middlewares.AuthMiddleware)
	tickets.POST("/:id/transfer", func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var body types.InitiateTransferRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		userId := ctx.GetUint("id")
		result, err := utils.InitiateTransfer(params.ID, userId, body.ToEmail)
		if err != nil {
			switch {
			case errors.Is(err, types.ErrTicketNotFound):
				ctx.Status(http.StatusNotFound)
			case errors.Is(err, types.ErrTransferWindowClosed):
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, types.ErrTransferAlreadyPending):
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		// email_sent=false tells the UI to show a share-the-link fallback.
		ctx.JSON(http.StatusCreated, gin.H{"data": result})
	})

	transfers := apiv1.Group("/transfers")
	transfers.Use(middlewares.AuthMiddleware)
	transfers.
		POST("/accept", func(ctx *gin.Context) {
			var body types.AcceptTransferRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			transfer, err := utils.AcceptTransfer(body.Code, userId)
			if err != nil {
				if errors.Is(err, types.ErrTransferNotPending) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": transfer})
		}).
		POST("/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.CancelTransfer(params.ID, userId); err != nil {
				switch {
				case errors.Is(err, types.ErrTransferForbidden):
					ctx.Status(http.StatusForbidden)
				case errors.Is(err, types.ErrTransferNotPending):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return apiv1
}
