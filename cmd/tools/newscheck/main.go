// newscheck reports whether a news document exists and prints the latest items.
//
//	go run ./cmd/tools/newscheck -id 6790f0c2a1b2c3d4e5f60718 -n 5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/model"
	"github.com/yourorg/kap-news/internal/repository"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	id := flag.String("id", "", "news id (hex ObjectId) to look up")
	latest := flag.Int("n", 5, "number of latest news items to print")
	tickers := flag.Bool("tickers", false, "also print the number of known tickers")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Tool output goes to stdout, keep the logger quiet
	logger, err := zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)
	newsRepo := repository.NewNewsRepository(db.Collection(cfg.Mongo.NewsCollection), cfg.Mongo.QueryTimeout, logger)

	total, err := newsRepo.Count(ctx)
	if err != nil {
		logger.Fatal("Failed to count news", zap.Error(err))
	}
	fmt.Printf("database %s, collection %s: %d news items\n", cfg.Mongo.Database, cfg.Mongo.NewsCollection, total)

	if *id != "" {
		item, err := newsRepo.GetByID(ctx, *id)
		if err != nil {
			logger.Fatal("Failed to look up news", zap.Error(err), zap.String("id", *id))
		}
		if item == nil {
			fmt.Printf("news %s: not found\n", *id)
		} else {
			fmt.Printf("news %s: found (%s %s)\n", *id, item.PrimaryTicker, item.Date())
		}
	}

	if *tickers {
		tickerRepo := repository.NewTickerRepository(db.Collection(cfg.Mongo.TickersCollection), cfg.Mongo.QueryTimeout, logger)
		list, err := tickerRepo.List(ctx)
		if err != nil {
			logger.Fatal("Failed to list tickers", zap.Error(err))
		}
		fmt.Printf("tickers: %d\n", len(list))
	}

	if *latest > 0 {
		items, err := newsRepo.ListLatest(ctx, *latest)
		if err != nil {
			logger.Fatal("Failed to list latest news", zap.Error(err))
		}
		printItems(items)
	}
}

func printItems(items []model.NewsItem) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTICKER\tHEADLINE")
	for _, item := range items {
		date := item.Date()
		if item.PublishedAt != nil && item.PublishedAt.Time != "" {
			date += " " + item.PublishedAt.Time
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID.Hex(), date, item.PrimaryTicker, item.Headline)
	}
	w.Flush()
}
