package database

import (
	"log"

	"restaurant_manager/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedData inserts the bootstrap admin and a demo restaurant with tables and a
// small menu. Idempotent via FirstOrCreate.
func SeedData(db *gorm.DB) {
	bytes, err := bcrypt.GenerateFromPassword([]byte("admin12345"), 10)
	hashPassword := string(bytes)
	if err != nil {
		log.Println("failed to hash seed password:", err)
		return
	}

	admin := model.User{
		FirstName: "System",
		LastName:  "Admin",
		Email:     "admin@restaurant.local",
		Password:  hashPassword,
		Role:      model.RoleAdmin,
	}
	if err := db.Where(model.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
		log.Println("failed to seed admin:", err)
	}

	restaurant := model.Restaurant{
		Name:        "Demo Restaurant",
		Description: "Seeded demo restaurant",
		Status:      "ACTIVE",
	}
	if err := db.Where(model.Restaurant{Name: restaurant.Name}).FirstOrCreate(&restaurant).Error; err != nil {
		log.Println("failed to seed restaurant:", err)
		return
	}

	for number := 1; number <= 8; number++ {
		table := model.Table{
			RestaurantID: restaurant.ID,
			Number:       number,
			Capacity:     2 + number%4*2,
			Status:       "ACTIVE",
		}
		if err := db.Where(model.Table{RestaurantID: restaurant.ID, Number: number}).
			FirstOrCreate(&table).Error; err != nil {
			log.Println("failed to seed table:", number, "error:", err)
		}
	}

	menu := model.Menu{RestaurantID: restaurant.ID, Name: "Main Menu", Status: "ACTIVE"}
	if err := db.Where(model.Menu{RestaurantID: restaurant.ID, Name: menu.Name}).
		FirstOrCreate(&menu).Error; err != nil {
		log.Println("failed to seed menu:", err)
		return
	}

	category := model.Category{MenuID: menu.ID, Name: "Dishes"}
	if err := db.Where(model.Category{MenuID: menu.ID, Name: category.Name}).
		FirstOrCreate(&category).Error; err != nil {
		log.Println("failed to seed category:", err)
		return
	}

	dishes := []model.Dish{
		{CategoryID: category.ID, RestaurantID: restaurant.ID, Name: "Margherita Pizza", Price: 12.5, Quantity: 50, IsAvailable: true, Status: "ACTIVE"},
		{CategoryID: category.ID, RestaurantID: restaurant.ID, Name: "Caesar Salad", Price: 8.0, Quantity: 40, IsAvailable: true, Status: "ACTIVE"},
		{CategoryID: category.ID, RestaurantID: restaurant.ID, Name: "Grilled Salmon", Price: 21.0, Quantity: 25, IsAvailable: true, Status: "ACTIVE"},
	}
	for _, dish := range dishes {
		if err := db.Where(model.Dish{RestaurantID: restaurant.ID, Name: dish.Name}).
			FirstOrCreate(&dish).Error; err != nil {
			log.Println("failed to seed dish:", dish.Name, "error:", err)
		}
	}
}
