package main

import (
	"context"
	"log"

	"restaurant_manager/config"
	"restaurant_manager/database"
	"restaurant_manager/handler"
	"restaurant_manager/helper"
	"restaurant_manager/router"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.ConfigOr("FRONTEND_URL", "http://localhost:3000"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	db, err := database.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	database.SeedData(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.ConfigOr("REDIS_ADDR", "localhost:6379"),
		Password: config.Config("REDIS_PASSWORD"),
	})

	gateway := handler.NewGuidiniPay()
	h := handler.New(db, gateway, rdb, utils.LogSmsSender{})

	helper.StartReservationScheduler(db)
	defer helper.StopReservationScheduler()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.StartOrderFeedRelay(ctx)

	router.SetupRoutes(app, h)

	log.Fatal(app.Listen(":" + config.ConfigOr("PORT", "8002")))
}
