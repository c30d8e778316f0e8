package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/opendosm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("=== OpenDOSM Connectivity Check ===")
	fmt.Printf("Base URL: %s%s\n", cfg.OpenDOSM.BaseURL, cfg.OpenDOSM.CatalogueEndpoint)
	fmt.Printf("Transactions dataset: %s\n", cfg.OpenDOSM.TransactionsID)
	fmt.Printf("Premises dataset: %s\n", cfg.OpenDOSM.PremisesID)
	fmt.Printf("Items dataset: %s\n", cfg.OpenDOSM.ItemsID)
	fmt.Println()

	client := opendosm.NewClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	meta := client.GetLatestDataInfo(ctx)
	fmt.Printf("API status: %s\n", meta.Status)
	if meta.Status != "available" {
		log.Fatal("❌ OpenDOSM API unreachable. Check network access and dataset identifiers.")
	}
	fmt.Printf("Last updated: %s\n", meta.LastUpdated)
	fmt.Printf("Next update: %s\n", meta.NextUpdate)
	fmt.Printf("Total records: %d\n", meta.TotalRecords)
	fmt.Println()

	rows, err := client.GetTransactions(ctx, 5, "")
	if err != nil {
		log.Fatalf("❌ Sample transaction fetch failed: %v", err)
	}
	fmt.Printf("Sample rows fetched: %d\n", len(rows))
	for _, tx := range rows {
		fmt.Printf("  %s | premise=%s item=%s unit=%s\n", tx.Date, tx.PremiseCode, tx.ItemCode, tx.Unit)
	}

	fmt.Println()
	fmt.Println("✅ OpenDOSM connectivity check passed.")
}
