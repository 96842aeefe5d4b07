package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"suggestion-board-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database connection
var DB *gorm.DB

// InitDB opens the MySQL connection and migrates the schema
func InitDB() error {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	dbUser := getEnv("DB_USER", "boarduser")
	dbPassword := getEnv("DB_PASSWORD", "boardpassword")
	dbHost := getEnv("DB_HOST", "mysql")
	dbPort := getEnv("DB_PORT", "3306")
	dbName := getEnv("DB_NAME", "suggestboarddb")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: newLogger,
		// Surface unique-constraint violations as gorm.ErrDuplicatedKey so the
		// vote engine can report them as duplicate votes.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		return fmt.Errorf("failed to migrate models: %v", err)
	}

	if getEnv("ENVIRONMENT", "development") == "development" {
		createSampleData()
	}

	log.Println("database connected and migrated")
	return nil
}

// Migrate runs auto-migration for all models. Order matters: votes carry
// foreign keys into suggestions, suggestions into boards.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Board{},
		&models.Suggestion{},
		&models.Vote{},
	)
}

// createSampleData seeds a demo board so a fresh development instance has
// something to show
func createSampleData() {
	var count int64
	DB.Model(&models.Board{}).Count(&count)
	if count > 0 {
		log.Println("database already seeded, skipping sample data")
		return
	}

	log.Println("creating sample data...")

	admin := models.User{
		Username:     "admin",
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", // "secret"
		Role:         models.RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("failed to create sample admin: %v", err)
		return
	}

	maxVotes := 3
	board := models.Board{
		Title:           "Feature Requests",
		Description:     "Vote on which features you'd like to see in our next release",
		CreatedByUserID: admin.ID,
		SuggestionsOpen: true,
		VotingOpen:      true,
		RequireApproval: true,
		VotingType:      models.MultipleVote,
		MaxVotes:        &maxVotes,
	}
	if err := DB.Create(&board).Error; err != nil {
		log.Printf("failed to create sample board: %v", err)
		return
	}

	log.Println("sample data created")
}

// CloseDB closes the underlying sql.DB connection pool
func CloseDB() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("failed to get database connection: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("failed to close database connection: %v", err)
		return
	}

	log.Println("database connection closed")
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
