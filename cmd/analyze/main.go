package main

// Dev helper: run the analysis engine against a work item JSON file.
//   go run ./cmd/analyze -file item.json -types business_value,risk_assessment

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"prioritizer-backend/internal/analysis"
	"prioritizer-backend/internal/inference"
	"prioritizer-backend/internal/inference/local"
	"prioritizer-backend/internal/shared/config"
	"prioritizer-backend/internal/workitem"
)

func main() {
	filePath := flag.String("file", "", "path to a work item JSON file")
	typesFlag := flag.String("types", "all", "comma-separated analysis types, or \"all\"")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("-file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read work item: %v", err)
	}
	var item workitem.Payload
	if err := json.Unmarshal(data, &item); err != nil {
		log.Fatalf("parse work item: %v", err)
	}

	types := analysis.AllTypes
	if *typesFlag != "all" {
		types = nil
		for _, raw := range strings.Split(*typesFlag, ",") {
			t, err := analysis.ParseType(raw)
			if err != nil {
				log.Fatalf("parse type %q: %v", raw, err)
			}
			types = append(types, t)
		}
	}

	cfg := config.Load()
	var manager *inference.Manager
	if client, err := local.NewClient(cfg.InferenceBaseURL, cfg.InferenceTimeout); err == nil {
		manager = inference.NewManager(client, inference.ManagerOptions{
			CheckInterval: cfg.HealthCheckInterval,
			CacheTTL:      cfg.ResponseCacheTTL,
			PinnedModel:   cfg.InferenceModel,
		})
	}
	orchestrator := analysis.NewOrchestrator(manager, nil, analysis.OrchestratorOptions{
		CacheTTL:        cfg.ResponseCacheTTL,
		MaxBatchWorkers: cfg.MaxBatchWorkers,
	})

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" analyzing %q on %d dimensions...", item.Title, len(types))
	s.Start()
	batch := orchestrator.AnalyzeBatch(context.Background(), []workitem.Payload{item}, types, nil, cfg.MaxBatchWorkers)
	s.Stop()

	for _, result := range batch.Results {
		printResult(result)
	}
	fmt.Printf("\n%d analyses in %.0fms (%d AI, %d fallback)\n",
		batch.Total, batch.WallTimeMs, batch.AICount, batch.FallbackCount)
}

func printResult(result analysis.Result) {
	path := color.YellowString("fallback")
	if result.UsedAI {
		path = color.GreenString("ai:%s", result.ModelUsed)
	}
	fmt.Printf("\n%s  score=%s confidence=%.2f  [%s]\n",
		color.CyanString("%-22s", string(result.AnalysisType)),
		scoreColor(result.Score), result.Confidence, path)
	for _, insight := range result.Insights {
		fmt.Printf("  - %s\n", insight)
	}
}

func scoreColor(score float64) string {
	switch {
	case score >= 0.6:
		return color.GreenString("%.2f", score)
	case score >= 0.3:
		return color.YellowString("%.2f", score)
	default:
		return color.RedString("%.2f", score)
	}
}
