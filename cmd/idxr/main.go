package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"khoomi-api-io/storefront/internal/indexer"
	"khoomi-api-io/storefront/pkg/util"

	"go.uber.org/zap"
)

func main() {
	var (
		action      = flag.String("action", "create", "Action: create, drop, list, stats")
		uri         = flag.String("uri", "", "MongoDB URI (defaults to env MONGO_URI)")
		dbName      = flag.String("db", "", "Database name (defaults to env DB_NAME)")
		collection  = flag.String("collection", "", "Collection name (for list/stats)")
		timeout     = flag.Duration("timeout", 60*time.Second, "Operation timeout")
		continueErr = flag.Bool("continue-on-error", true, "Continue on error")
		skipExists  = flag.Bool("skip-if-exists", true, "Skip existing indexes")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
	)
	flag.Parse()

	log := util.Logger()
	defer log.Sync()

	mongoURI := firstNonEmpty(*uri, util.LoadEnvFor("MONGO_URI"), "mongodb://localhost:27017")
	database := firstNonEmpty(*dbName, util.LoadEnvFor("DB_NAME"))
	if database == "" {
		log.Fatal("database name required (use -db flag or DB_NAME env var)")
	}

	client, err := util.ConnectDB(context.Background(), mongoURI)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect", zap.Error(err))
		}
	}()

	manager := indexer.NewStorefrontManager(client.Database(database), &indexer.Options{
		Timeout:         *timeout,
		ContinueOnError: *continueErr,
		SkipIfExists:    *skipExists,
	})
	ctx := context.Background()

	switch *action {
	case "create":
		result, err := manager.Create(ctx)
		if *jsonOutput {
			outputJSON(map[string]any{"success": err == nil, "result": result, "error": errorString(err)})
			return
		}
		if err != nil {
			log.Warn("index creation completed with errors", zap.Error(err))
		}
		fmt.Printf("Indexes in %s:\n", database)
		fmt.Printf("  Created: %d\n", result.SuccessCount)
		fmt.Printf("  Skipped: %d\n", result.SkippedCount)
		fmt.Printf("  Failed: %d\n", result.FailedCount)
		fmt.Printf("  Duration: %v\n", result.Duration)
		for _, f := range result.Failures {
			fmt.Printf("  - %s.%s: %s\n", f.Collection, f.IndexName, f.Error)
		}

	case "drop":
		err := manager.Drop(ctx, flag.Args()...)
		if *jsonOutput {
			outputJSON(map[string]any{"success": err == nil, "error": errorString(err)})
			return
		}
		if err != nil {
			log.Fatal("failed to drop indexes", zap.Error(err))
		}
		fmt.Println("Indexes dropped successfully")

	case "list":
		if *collection == "" {
			log.Fatal("collection name required for list action (-collection flag)")
		}
		indexes, err := manager.List(ctx, *collection)
		if err != nil {
			log.Fatal("failed to list indexes", zap.Error(err))
		}
		if *jsonOutput {
			outputJSON(indexes)
			return
		}
		fmt.Printf("Indexes for collection %s:\n", *collection)
		for _, idx := range indexes {
			fmt.Printf("  - %v keys=%v unique=%v\n", idx["name"], idx["key"], idx["unique"] == true)
		}

	case "stats":
		stats := map[string][]indexer.IndexStats{}
		if *collection == "" {
			stats, err = manager.StatsAll(ctx)
		} else {
			stats[*collection], err = manager.Stats(ctx, *collection)
		}
		if err != nil {
			log.Fatal("failed to get stats", zap.Error(err))
		}
		if *jsonOutput {
			outputJSON(stats)
			return
		}
		for coll, collStats := range stats {
			fmt.Printf("\n=== %s ===\n", coll)
			for _, stat := range collStats {
				fmt.Printf("  %s: %d accesses since %v", stat.Name, stat.Accesses, stat.Since)
				if stat.Building {
					fmt.Print(" (BUILDING)")
				}
				fmt.Println()
			}
		}

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		fmt.Println("Available actions: create, drop, list, stats")
		os.Exit(1)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func outputJSON(data any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		util.Logger().Fatal("failed to encode JSON", zap.Error(err))
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
