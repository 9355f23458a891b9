package database

import (
	"fmt"
	"log"

	"mathdojo_backend/internal/config"
	"mathdojo_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.FactPair{},
		&model.Question{},
		&model.QuizRun{},
		&model.QuizRunItem{},
		&model.QuizAttempt{},
		&model.LevelProgress{},
		&model.BeltProgress{},
		&model.DailySummary{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// Bootstrap a starter fact catalog so a fresh install is playable.
	// scripts/seed_catalog.go replaces these with the full curriculum.
	var count int64
	db.Model(&model.FactPair{}).Count(&count)
	if count == 0 {
		defaultFacts := []model.FactPair{
			{Operation: model.OperationAddition, Level: 1, Belt: model.BeltWhite, A: 0, B: 0},
			{Operation: model.OperationAddition, Level: 1, Belt: model.BeltYellow, A: 1, B: 1},
			{Operation: model.OperationAddition, Level: 1, Belt: model.BeltGreen, A: 1, B: 2},
			{Operation: model.OperationAddition, Level: 1, Belt: model.BeltBlue, A: 2, B: 2},
			{Operation: model.OperationAddition, Level: 1, Belt: model.BeltRed, A: 2, B: 3},
			{Operation: model.OperationAddition, Level: 1, Belt: model.BeltBrown, A: 3, B: 3},
			{Operation: model.OperationAddition, Level: 2, Belt: model.BeltWhite, A: 3, B: 4},
			{Operation: model.OperationAddition, Level: 2, Belt: model.BeltYellow, A: 4, B: 4},
			{Operation: model.OperationAddition, Level: 2, Belt: model.BeltGreen, A: 4, B: 5},
			{Operation: model.OperationAddition, Level: 2, Belt: model.BeltBlue, A: 5, B: 5},
			{Operation: model.OperationAddition, Level: 2, Belt: model.BeltRed, A: 5, B: 6},
			{Operation: model.OperationAddition, Level: 2, Belt: model.BeltBrown, A: 6, B: 6},
		}
		for _, f := range defaultFacts {
			db.Create(&f)
		}
	}

	return db, nil
}
