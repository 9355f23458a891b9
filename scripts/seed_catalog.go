// Fact catalog seeder.
//
// AutoMigrate bootstraps a small starter catalog on a fresh database; this
// script loads the full curriculum from configs/facts.yaml, upserting one
// canonical pair per (operation, level, belt) slot.
//
// Usage: go run scripts/seed_catalog.go

package main

import (
	"log"
	"os"

	"mathdojo_backend/internal/config"
	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/repository"
	"mathdojo_backend/pkg/database"
	"mathdojo_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

type factRow struct {
	Operation string `yaml:"operation"`
	Level     int    `yaml:"level"`
	Belt      string `yaml:"belt"`
	A         int    `yaml:"a"`
	B         int    `yaml:"b"`
}

type factFile struct {
	Facts []factRow `yaml:"facts"`
}

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	seedData, err := os.ReadFile("configs/facts.yaml")
	if err != nil {
		log.Fatalf("failed to read facts file: %v", err)
	}

	var file factFile
	if err := yaml.Unmarshal(seedData, &file); err != nil {
		log.Fatalf("failed to parse facts file: %v", err)
	}

	repo := repository.NewFactRepository(db)
	seeded := 0
	for _, row := range file.Facts {
		op := model.Operation(row.Operation)
		belt := model.Belt(row.Belt)
		if !op.Valid() {
			log.Fatalf("unknown operation %q at level %d", row.Operation, row.Level)
		}
		if !belt.Valid() || belt.IsBlack() {
			log.Fatalf("invalid belt %q at level %d (black degrees have no facts)", row.Belt, row.Level)
		}

		fact := &model.FactPair{
			Operation: op,
			Level:     row.Level,
			Belt:      belt,
			A:         row.A,
			B:         row.B,
		}
		if err := repo.Upsert(fact); err != nil {
			log.Fatalf("failed to upsert %s L%d %s: %v", row.Operation, row.Level, row.Belt, err)
		}
		seeded++
	}

	log.Printf("seeded %d fact pairs", seeded)
}
