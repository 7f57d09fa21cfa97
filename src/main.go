package main

import (
	"io"
	"log"
	"os"
	"time"

	"gatepass/src/boot"
	"gatepass/src/config"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

var bookabledate validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return time.Now().Before(datetime)
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	return g.Group(apiPrefix)
}

func setupRouter() *gin.Engine {
	r := gin.Default()
	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		r.Use(cors.Default())
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{corsOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookabledate)
	}

	paymentWebhookRoute(r)
	eventsRoute(r)
	ordersRoute(r)
	ticketsRoute(r)
	transfersRoute(r)
	return r
}

func main() {
	logFile := os.Getenv("LOG_FILE")
	if logFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		}))
	}

	boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()
	boot.InitConsumers()

	r := setupRouter()
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
