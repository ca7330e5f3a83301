package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"bandbooster-authoring/database"
	"bandbooster-authoring/internal/config"
	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/logger"
	"bandbooster-authoring/internal/repository"

	"go.uber.org/zap"
)

// importFile is the JSON shape the bulk import tool consumes: passages
// with their question groups. Groups are created empty; questions are
// derived and saved in the dashboard where the save gate applies.
type importFile struct {
	Passages []importPassage `json:"passages"`
}

type importPassage struct {
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Groups  []importGroup `json:"groups"`
}

type importGroup struct {
	Title     string          `json:"title"`
	GroupType string          `json:"group_type"`
	Structure json.RawMessage `json:"structure"`
}

func main() {
	filePath := flag.String("file", "", "path to the JSON import file")
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: bulk_import -file <passages.json>")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Bulk import starting up...", zap.String("file", *filePath))

	data, err := os.ReadFile(*filePath)
	if err != nil {
		appLogger.Fatal("Failed to read import file", zap.Error(err))
	}

	var payload importFile
	if err := json.Unmarshal(data, &payload); err != nil {
		appLogger.Fatal("Failed to parse import file", zap.Error(err))
	}

	db, err := database.InitDB()
	if err != nil {
		appLogger.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Successfully connected to Oracle database.")

	passageRepo := repository.NewPassageDatabaseAdapter(db)
	groupRepo := repository.NewGroupDatabaseAdapter(db)

	ctx := context.Background()
	imported, skipped := 0, 0

	for _, p := range payload.Passages {
		passage := domain.NewPassage(p.Title, p.Content)
		if err := passage.Validate(); err != nil {
			appLogger.Warn("Skipping invalid passage", zap.String("title", p.Title), zap.Error(err))
			skipped++
			continue
		}
		if err := passageRepo.SavePassage(ctx, passage); err != nil {
			appLogger.Error("Failed to save passage", zap.String("title", p.Title), zap.Error(err))
			skipped++
			continue
		}

		for _, g := range p.Groups {
			t := domain.GroupType(g.GroupType)
			if !domain.KnownGroupType(t) {
				appLogger.Warn("Skipping group with unknown type",
					zap.String("passage", p.Title), zap.String("group_type", g.GroupType))
				skipped++
				continue
			}

			doc, err := domain.DecodeDocumentStrict(t, string(g.Structure))
			if err != nil {
				appLogger.Warn("Skipping group with undecodable structure",
					zap.String("passage", p.Title), zap.String("title", g.Title), zap.Error(err))
				skipped++
				continue
			}
			structure, err := domain.EncodeDocument(doc)
			if err != nil {
				appLogger.Warn("Skipping group that failed to re-serialize",
					zap.String("title", g.Title), zap.Error(err))
				skipped++
				continue
			}

			group := domain.NewQuestionGroup(passage.ID, g.Title, t, structure)
			if err := group.Validate(); err != nil {
				appLogger.Warn("Skipping invalid group", zap.String("title", g.Title), zap.Error(err))
				skipped++
				continue
			}
			if err := groupRepo.SaveGroup(ctx, group); err != nil {
				appLogger.Error("Failed to save group", zap.String("title", g.Title), zap.Error(err))
				skipped++
				continue
			}
			imported++
		}
		imported++
	}

	appLogger.Info("Bulk import finished",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped))
}
