package middlewares

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"gatepass/src/db"
	"gatepass/src/models"
	"gatepass/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var user models.User
	conn := db.GetDb()
	conn.Model(&models.User{}).Where("id = ?", uint(uid)).Find(&user)
	if uint(uid) != user.ID || user.ID < 1 {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("id", user.ID)
	ctx.Set("uid", user.UID)
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
}
