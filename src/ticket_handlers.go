package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"gatepass/src/lib"
	"gatepass/src/middlewares"
	"gatepass/src/types"
	"gatepass/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
)

func ticketsRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	tickets := apiv1.Group("/tickets")
	tickets.Use(middlewares.AuthMiddleware)
	tickets.
		GET("", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			list, err := utils.GetOwnTickets(userId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list})
		}).
		GET("/:id/qr", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			ticket, err := utils.GetOwnTicket(params.ID, userId)
			if err != nil {
				if errors.Is(err, types.ErrTicketNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			filename := fmt.Sprintf("ticket_%s.jpeg", ticket.Code)
			filepath := path.Join(os.TempDir(), filename)
			if _, err := os.Stat(filepath); err != nil {
				qrc, err := qrcode.New(ticket.Code)
				if err != nil {
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				if err := qrc.Save(filepath); err != nil {
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				if rd := lib.GetRedisClient(); rd != nil {
					rd.SetEx(context.Background(), filename, filepath, 2*time.Hour)
				}
			}
			ctx.File(filepath)
		})
	return apiv1
}
