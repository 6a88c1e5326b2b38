package bootstrap

import (
	"fmt"
	"time"

	"anoa.com/catalog/internal/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Product{},
	)
}

type seedProduct struct {
	name     string
	price    string
	category string
}

var seedCategories = []string{"Electronics", "Books", "Clothing", "Home & Garden", "Sports"}

var seedProducts = []seedProduct{
	{"Laptop", "999.99", "Electronics"},
	{"Smartphone", "699.99", "Electronics"},
	{"Wireless Mouse", "29.99", "Electronics"},
	{"USB-C Cable", "12.99", "Electronics"},
	{"The Great Gatsby", "14.99", "Books"},
	{"1984", "13.99", "Books"},
	{"To Kill a Mockingbird", "15.99", "Books"},
	{"T-Shirt", "19.99", "Clothing"},
	{"Jeans", "49.99", "Clothing"},
	{"Sneakers", "79.99", "Clothing"},
	{"Garden Hose", "24.99", "Home & Garden"},
	{"Plant Pot", "9.99", "Home & Garden"},
	{"Basketball", "29.99", "Sports"},
	{"Tennis Racket", "89.99", "Sports"},
	{"Yoga Mat", "34.99", "Sports"},
}

// SeedUsers creates the sample accounts when they are missing.
func SeedUsers(db *gorm.DB, password string, log *zap.Logger) error {
	users := []entity.User{
		{Username: "admin", Email: "admin@example.com", Role: entity.RoleAdmin},
		{Username: "user1", Email: "user1@example.com", Role: entity.RoleUser},
		{Username: "user2", Email: "user2@example.com", Role: entity.RoleUser},
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, user := range users {
		var count int64
		if err := db.Model(&entity.User{}).
			Where("username = ?", user.Username).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			continue
		}

		user.PasswordHash = string(hashedPasswordBytes)
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", user.Username, err)
		}
		log.Info("seeded user", zap.String("username", user.Username), zap.String("role", user.Role))
	}

	return nil
}

// SeedCatalog inserts the sample categories and products into an empty catalog.
func SeedCatalog(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("catalog already seeded, skipping")
		return nil
	}

	now := time.Now().UTC()

	return db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]int64, len(seedCategories))
		for _, name := range seedCategories {
			category := entity.Category{Name: name, CreatedAt: now}
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
			ids[name] = category.ID
		}

		products := make([]entity.Product, 0, len(seedProducts))
		for _, p := range seedProducts {
			products = append(products, entity.Product{
				Name:       p.name,
				Price:      decimal.RequireFromString(p.price),
				CategoryID: ids[p.category],
				CreatedAt:  now,
			})
		}

		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("seed products: %w", err)
		}

		log.Info("seeded catalog",
			zap.Int("categories", len(seedCategories)),
			zap.Int("products", len(products)),
		)
		return nil
	})
}

// Run migrates the schema and, when enabled, seeds sample data.
func Run(db *gorm.DB, seed bool, password string, log *zap.Logger) error {
	if err := Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if !seed {
		return nil
	}
	if err := SeedUsers(db, password, log); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := SeedCatalog(db, log); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}
