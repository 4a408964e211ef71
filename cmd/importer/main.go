package main

import (
	"context"
	"flag"
	"log"
	"os"

	"tableside/internal/config"
	"tableside/internal/db"
	"tableside/internal/importer"
	catalogrepo "tableside/internal/repository/catalog"
	storerepo "tableside/internal/repository/store"
)

func main() {
	var (
		filePath string
		storeKey string
	)
	flag.StringVar(&filePath, "file", "", "Path to menu CSV export")
	flag.StringVar(&storeKey, "store", "", "Store key to import into")
	flag.Parse()

	if filePath == "" || storeKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	st, err := storerepo.NewPostgres(pool).GetByKey(ctx, storeKey)
	if err != nil {
		logger.Fatalf("resolve store %q: %v", storeKey, err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, catalogrepo.NewPostgres(pool), st.ID)
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import: %v", err)
	}
	logger.Printf("imported %d items into store %s", count, st.Key)
}
