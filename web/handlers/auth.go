package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/config"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/models"
	"github.com/nastradacha/inventory-app/web/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var authCfg *config.AuthConfig

// Configure wires the handlers to the loaded configuration. Must be called
// before the routes are served.
func Configure(cfg *config.Config) {
	authCfg = &cfg.Auth
}

// Login checks the credentials and issues a JWT.
func Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	db := database.GetDB()
	var user models.User
	err := db.Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return renderError(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := middleware.GenerateToken(authCfg, &user)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}
