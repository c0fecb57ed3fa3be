package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/receipted/receipted/internal/expense"
	"github.com/receipted/receipted/internal/extraction"
	"github.com/receipted/receipted/internal/objectstore"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipted")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		bucket      = fs.StringLong("bucket", "receipted-uploads", "Upload bucket name")
		storeType   = fs.StringLong("store", "local", "Object store backend: 'local' or 'bolt'")
		storagePath = fs.StringLong("storage", "./objects", "Local store base directory")
		dbPath      = fs.StringLong("db", "receipted.db", "Bolt store file path")
		engineType  = fs.StringLong("engine", "gemini", "Extraction engine: 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTED"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize object store
	var store objectstore.Store
	switch *storeType {
	case "local":
		slog.Info("Initializing local object store...", "path", *storagePath)
		localStore, err := objectstore.NewLocalStore(*storagePath)
		if err != nil {
			slog.Error("Failed to initialize local store", "error", err)
			os.Exit(1)
		}
		store = localStore
	case "bolt":
		slog.Info("Initializing bolt object store...", "path", *dbPath)
		boltStore, err := objectstore.NewBoltStore(*dbPath)
		if err != nil {
			slog.Error("Failed to initialize bolt store", "error", err)
			os.Exit(1)
		}
		defer boltStore.Close()
		store = boltStore
	default:
		slog.Error("Invalid store type", "type", *storeType, "valid", "local or bolt")
		os.Exit(1)
	}

	// Initialize extraction engine
	var engine extraction.Engine
	var err error
	switch *engineType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini engine...", "model", *geminiModel)
		engine, err = extraction.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama engine...", "url", *ollamaURL, "model", *ollamaModel)
		engine, err = extraction.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid engine type", "type", *engineType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer engine.Close()

	// Initialize pipeline service
	service := expense.NewService(store, engine)

	// Initialize server
	basicAuth := expense.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := expense.NewServer(service, *bucket, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "bucket", *bucket)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
