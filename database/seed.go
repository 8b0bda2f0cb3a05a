package database

import (
	"fmt"
	"log"
	"time"

	"github.com/nastradacha/inventory-app/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed populates the database with a starting manager/cashier pair and a
// handful of shelf staples so a fresh install is usable immediately.
// Seeding is idempotent: it is skipped when users already exist.
func Seed(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if userCount > 0 {
		log.Println("Seed skipped: users already present")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, u := range []struct {
			username, password, role string
		}{
			{"admin", "admin123", models.RoleManager},
			{"cashier", "cashier123", models.RoleCashier},
		} {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user := models.User{Username: u.username, PasswordHash: string(hash), Role: u.role}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.username, err)
			}
		}

		expiry := time.Now().AddDate(1, 0, 0)
		products := []models.Product{
			{Name: "Milo 500g", Category: "Beverages", CostPrice: decimal.NewFromFloat(12.50), SellingPrice: decimal.NewFromFloat(15.00), InitialQty: 50, QtyAtHand: 50, SafetyStock: 10, ExpiryDate: &expiry},
			{Name: "Peak Milk 170g", Category: "Dairy", CostPrice: decimal.NewFromFloat(8.00), SellingPrice: decimal.NewFromFloat(10.00), InitialQty: 30, QtyAtHand: 30, SafetyStock: 5, ExpiryDate: &expiry},
			{Name: "Indomie Chicken", Category: "Food", CostPrice: decimal.NewFromFloat(3.50), SellingPrice: decimal.NewFromFloat(4.50), InitialQty: 100, QtyAtHand: 100, SafetyStock: 20},
			{Name: "Sunlight Detergent 1kg", Category: "Household", CostPrice: decimal.NewFromFloat(18.00), SellingPrice: decimal.NewFromFloat(22.00), InitialQty: 25, QtyAtHand: 25, SafetyStock: 5},
			{Name: "Kalyppo Fruit Juice", Category: "Beverages", CostPrice: decimal.NewFromFloat(2.00), SellingPrice: decimal.NewFromFloat(3.00), InitialQty: 120, QtyAtHand: 120, SafetyStock: 24},
		}
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
			}
		}

		log.Printf("Seeded %d users and %d products", 2, len(products))
		return nil
	})
}
