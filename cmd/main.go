package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	cfgPkg "github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/config"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/engine"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/llm"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/processor"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/scraper"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/session"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/store"
	srvPkg "github.com/yasar-sys/agri-shokti-bangla-sub001/server"
)

type options struct {
	configPath string
	sourceURL  string
	serve      bool
	userID     string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.StringVar(&opts.sourceURL, "source-url", "", "Knowledge source URL to ingest")
	flag.BoolVar(&opts.serve, "serve", false, "Run the HTTP/WebSocket server instead of the chat loop")
	flag.StringVar(&opts.userID, "user", "", "Authenticated user id (optional)")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	cfg, err := cfgPkg.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %s", e.Error())
		}
		return fmt.Errorf("invalid configuration")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	gateway, err := llm.NewGateway(llm.GatewayConfig{
		BaseURL:     cfg.Gateway.BaseURL,
		APIKey:      cfg.Gateway.APIKey,
		Model:       cfg.Gateway.Model,
		MaxTokens:   cfg.Gateway.MaxTokens,
		Temperature: cfg.Gateway.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize gateway: %v", err)
	}

	knowledge, err := store.NewKnowledgeStore(store.KnowledgeStoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.KnowledgeTable,
		VectorDim:  cfg.Database.VectorDim,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize knowledge store: %v", err)
	}
	defer knowledge.Close()

	interactions, err := store.NewInteractionStore(store.InteractionStoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.InteractionsTable,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize interaction store: %v", err)
	}
	defer interactions.Close()

	eng := engine.New(engine.Config{
		RankLimit:    cfg.Engine.RankLimit,
		HistoryLimit: cfg.Engine.HistoryLimit,
		BasePrompt:   cfg.Engine.BasePrompt,
	}, knowledge, interactions, gateway, logger)

	if opts.sourceURL != "" {
		if err := ingest(cfg, knowledge, opts.sourceURL); err != nil {
			return err
		}
	}

	if opts.serve {
		srv := srvPkg.New(eng, logger)
		color.Cyan("Listening on port %s", cfg.Server.Port)
		return http.ListenAndServe(":"+cfg.Server.Port, srv.Handler())
	}

	return chatLoop(eng, opts.userID)
}

// ingest scrapes the source, turns pages into knowledge documents, embeds
// them and upserts into the knowledge table.
func ingest(cfg *cfgPkg.Config, knowledge *store.KnowledgeStore, sourceURL string) error {
	color.Blue("\nIngesting knowledge source %s\n", sourceURL)

	var scrapedCount int32
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:        sourceURL,
		MaxDepth:       cfg.Scraper.MaxDepth,
		RateLimit:      cfg.Scraper.RateLimit,
		IgnorePatterns: cfg.Scraper.IgnorePatterns,
		OnProgress: func(url string) {
			atomic.AddInt32(&scrapedCount, 1)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %v", err)
	}

	scrapingBar := getSpinner("Scraping knowledge pages...")
	go func() {
		for {
			scrapingBar.Set(int(atomic.LoadInt32(&scrapedCount)))
			time.Sleep(100 * time.Millisecond)
		}
	}()

	pages, err := s.Scrape(sourceURL)
	scrapingBar.Finish()
	if err != nil {
		return fmt.Errorf("failed to scrape source: %v", err)
	}
	color.Green("\n✓ Scraped %d pages\n", len(pages))

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		MaxKeywords:   cfg.Processor.MaxKeywords,
		MinContentLen: cfg.Processor.MinContentLen,
		Category:      cfg.Processor.Category,
	})

	docs, err := proc.Process(pages)
	if err != nil {
		return fmt.Errorf("failed to process pages: %v", err)
	}
	color.Green("✓ Processed into %d documents\n", len(docs))

	// Embeddings are best-effort: the answer path ranks lexically, so an
	// unreachable embedder only loses the stored vectors.
	embedder, err := llm.NewEmbedder(llm.EmbedderConfig{
		Model:   cfg.Embedder.Model,
		BaseURL: cfg.Embedder.BaseURL,
	})
	if err != nil {
		color.Yellow("embedder unavailable, storing documents without embeddings: %v\n", err)
	} else {
		embeddingBar := getProgressBar(len(docs), "Embedding documents...")
		for i := range docs {
			vectors, err := embedder.CreateEmbedding(context.Background(), []string{docs[i].Title + "\n" + docs[i].Content})
			if err != nil {
				color.Yellow("\nfailed to embed %s: %v\n", docs[i].ID, err)
				continue
			}
			docs[i].Embedding = vectors[0]
			embeddingBar.Add(1)
		}
		embeddingBar.Finish()
	}

	if err := knowledge.Upsert(context.Background(), docs); err != nil {
		return fmt.Errorf("failed to store documents: %v", err)
	}
	color.Green("\n✓ Knowledge base updated\n")

	return nil
}

func chatLoop(eng *engine.Engine, userID string) error {
	manager := session.NewManager(session.DefaultFileStore(), userID)

	sess, err := manager.Resolve()
	if err != nil {
		return err
	}

	color.Cyan("\nআপনার কৃষি প্রশ্ন লিখুন (exit লিখে বের হোন, /new নতুন আলাপ, /history পুরনো প্রশ্ন, /rate 1-5 মতামত)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nআপনি: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "exit"):
			return nil
		case input == "/new":
			sess, err = manager.Reset()
			if err != nil {
				color.Red("Error: %v\n", err)
				continue
			}
			color.Cyan("নতুন আলাপ শুরু হলো")
			continue
		case input == "/history":
			printHistory(eng, sess)
			continue
		case strings.HasPrefix(input, "/rate"):
			rateLast(eng, sess, strings.TrimSpace(strings.TrimPrefix(input, "/rate")))
			continue
		}

		spinner := getSpinner("উত্তর তৈরি হচ্ছে...")
		result, err := eng.Ask(context.Background(), sess, input)
		spinner.Finish()
		fmt.Print("\r")

		if err != nil {
			color.Red("%v\n", err)
			continue
		}

		assistantPrompt("\nসহায়ক: %s\n", result.Answer)
		if result.Sources != nil {
			color.Yellow("উৎস: %s\n", *result.Sources)
		}
		if result.Fallback {
			color.Yellow("(সীমিত উত্তর)\n")
		}
	}

	return nil
}

func printHistory(eng *engine.Engine, sess session.Context) {
	history, err := eng.History(context.Background(), sess, 0)
	if err != nil {
		color.Red("Error: %v\n", err)
		return
	}
	if len(history) == 0 {
		color.Yellow("এই আলাপে এখনো কোনো প্রশ্ন নেই\n")
		return
	}

	for i := len(history) - 1; i >= 0; i-- {
		in := history[i]
		color.Green("প্রশ্ন: %s", in.Query)
		color.Cyan("উত্তর: %s", in.Response)
		if in.FeedbackRating != nil {
			color.Yellow("মতামত: %d/5", *in.FeedbackRating)
		}
		fmt.Println()
	}
}

func rateLast(eng *engine.Engine, sess session.Context, arg string) {
	rating, err := strconv.Atoi(arg)
	if err != nil {
		color.Red("ব্যবহার: /rate 1-5\n")
		return
	}

	history, err := eng.History(context.Background(), sess, 1)
	if err != nil || len(history) == 0 {
		color.Red("মতামত দেওয়ার মতো কোনো উত্তর নেই\n")
		return
	}

	if err := eng.SubmitFeedback(context.Background(), history[0].ID, rating); err != nil {
		color.Red("Error: %v\n", err)
		return
	}
	color.Green("ধন্যবাদ, মতামত সংরক্ষিত হলো\n")
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
