package main

import (
	"errors"
	"net/http"

	"gatepass/src/middlewares"
	"gatepass/src/types"
	"gatepass/src/utils"

	"github.com/gin-gonic/gin"
)

func ordersRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	orders := apiv1.Group("/orders")
	orders.Use(middlewares.AuthMiddleware)
	orders.
		POST("", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			orderId, err := utils.CreateOrder(userId, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": orderId}})
		}).
		GET("", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			orders, err := utils.GetOwnOrders(userId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders})
		}).
		GET("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			order, err := utils.GetOrder(params.ID, userId)
			if err != nil {
				if errors.Is(err, types.ErrOrderNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})
	return apiv1
}
