package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/models"
	"github.com/nastradacha/inventory-app/web/middleware"
	"golang.org/x/crypto/bcrypt"
)

// UserList returns all users (manager only).
func UserList(c *fiber.Ctx) error {
	db := database.GetDB()
	var users []models.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		return renderError(c, err)
	}
	return c.JSON(users)
}

// UserCreate adds a user with the given role (manager only).
func UserCreate(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}
	if req.Role != models.RoleManager && req.Role != models.RoleCashier {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role must be manager or cashier"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return renderError(c, err)
	}

	db := database.GetDB()
	var clash int64
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&clash).Error; err != nil {
		return renderError(c, err)
	}
	if clash > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
	}

	user := models.User{Username: req.Username, PasswordHash: string(hash), Role: req.Role}
	if err := db.Create(&user).Error; err != nil {
		return renderError(c, err)
	}

	actor := middleware.ActorFromCtx(c)
	db.Create(&models.LogEntry{
		Username: actor.Username,
		Action:   models.ActionUserCreated,
		Details:  "Created user " + user.Username + " (" + user.Role + ")",
	})

	return c.Status(fiber.StatusCreated).JSON(user)
}

// UserResetPassword sets a new password for a user (manager only).
func UserResetPassword(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "new password is required"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return renderError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return renderError(c, err)
	}
	user.PasswordHash = string(hash)
	if err := db.Save(&user).Error; err != nil {
		return renderError(c, err)
	}

	actor := middleware.ActorFromCtx(c)
	db.Create(&models.LogEntry{
		Username: actor.Username,
		Action:   models.ActionPasswordReset,
		Details:  "Reset password for " + user.Username,
	})

	return c.JSON(fiber.Map{"success": true})
}
