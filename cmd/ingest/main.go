// Ingests website passages into the knowledge base.
//
// Usage:
//
//	go run ./cmd/ingest -file pages.jsonl [-reset]
//
// The input is JSON Lines, one {"text": "...", "source_url": "..."} per
// line. Each passage is chunked, embedded and bulk-inserted.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"school-concierge-be/internal/config"
	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/repository/unitofwork"
	"school-concierge-be/pkg/database"
	"school-concierge-be/pkg/embedding"
	"school-concierge-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	filePath := flag.String("file", "", "path to a JSONL file of passages")
	reset := flag.Bool("reset", false, "delete existing documents first")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Error: -file is required")
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.OpenAIEmbeddingModel)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Error: Failed to open %s: %v", *filePath, err)
	}
	defer file.Close()

	color.Cyan("🚀 Ingesting knowledge base from %s\n", *filePath)

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	uow := uowFactory.NewUnitOfWork(ctx)

	if *reset {
		color.Yellow("Resetting existing documents...")
		if err := uow.KbDocumentRepository().DeleteAll(ctx); err != nil {
			color.Red("Failed to reset: %v", err)
			os.Exit(1)
		}
	}

	type passage struct {
		Text      string `json:"text"`
		SourceURL string `json:"source_url"`
	}

	var documents []*entity.KbDocument
	lines, failures := 0, 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lines++

		var p passage
		if err := json.Unmarshal(line, &p); err != nil {
			color.Red("line %d: bad JSON: %v", lines, err)
			failures++
			continue
		}
		if p.Text == "" {
			continue
		}

		var sourceURL *string
		if p.SourceURL != "" {
			url := p.SourceURL
			sourceURL = &url
		}

		for _, chunk := range utils.SplitText(p.Text, 1500, 200) {
			res, err := provider.Generate(chunk, "RETRIEVAL_DOCUMENT")
			if err != nil {
				color.Red("line %d: embedding failed: %v", lines, err)
				failures++
				continue
			}
			documents = append(documents, &entity.KbDocument{
				Id:        uuid.New(),
				Text:      chunk,
				SourceURL: sourceURL,
				Embedding: res.Embedding.Values,
				CreatedAt: time.Now(),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Error: Failed to read input: %v", err)
	}

	if len(documents) == 0 {
		color.Yellow("Nothing to ingest (%d lines, %d failures)", lines, failures)
		return
	}

	if err := uow.KbDocumentRepository().CreateBulk(ctx, documents); err != nil {
		color.Red("Bulk insert failed: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Ingested %d chunks from %d passages (%d failures)", len(documents), lines, failures)
}
