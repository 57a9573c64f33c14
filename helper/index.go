package helper

import (
	"errors"
	"fmt"
	"time"

	"restaurant_manager/config"
	"restaurant_manager/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func jwtSecret() []byte {
	return []byte(config.Config("JWT_SECRET"))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GenerateAccessToken(p model.Principal) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["userId"] = p.UserID
	claims["role"] = p.Role
	if p.RestaurantID != nil {
		claims["restaurantId"] = *p.RestaurantID
	}
	claims["exp"] = time.Now().Add(time.Hour * 12).Unix()

	return token.SignedString(jwtSecret())
}

func GenerateRefreshToken(p model.Principal) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["userId"] = p.UserID
	claims["role"] = p.Role
	claims["exp"] = time.Now().Add(time.Hour * 24 * 7).Unix()

	return token.SignedString(jwtSecret())
}

func ParseToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
}

// PrincipalFromToken rebuilds the typed principal from parsed claims.
func PrincipalFromToken(token *jwt.Token) (model.Principal, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Principal{}, errors.New("unexpected claims type")
	}

	userId, ok := claims["userId"].(float64)
	if !ok {
		return model.Principal{}, errors.New("missing userId claim")
	}
	role, _ := claims["role"].(string)

	p := model.Principal{UserID: uint(userId), Role: role}
	if restaurantId, ok := claims["restaurantId"].(float64); ok {
		id := uint(restaurantId)
		p.RestaurantID = &id
	}
	return p, nil
}

// GetPrincipal returns the principal stored by the auth middleware. The second
// return is false for anonymous requests on optional-auth routes.
func GetPrincipal(c *fiber.Ctx) (model.Principal, bool) {
	p, ok := c.Locals("principal").(model.Principal)
	return p, ok
}
