package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-fraud-trail/internal/config"
	"github.com/a3tai/mcp-fraud-trail/internal/export"
	"github.com/a3tai/mcp-fraud-trail/internal/mcp"
	"github.com/a3tai/mcp-fraud-trail/internal/pdf"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// buildServer wires the artifact store, the report service and the MCP
// server for cfg.
func buildServer(cfg *config.Config) (*mcp.Server, *export.Store, error) {
	var icons *trail.IconTable
	if cfg.IconsFile != "" {
		var err error
		icons, err = trail.LoadIconTable(cfg.IconsFile)
		if err != nil {
			return nil, nil, err
		}
	}

	store, err := export.NewStore(cfg.OutputDirectory, cfg.ArtifactTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	pdfService, err := pdf.NewService(pdf.Options{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.ReportDirectory,
		Icons:       icons,
		Store:       store,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report service: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server, store, nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown with error: %w", err)
		}

	case err := <-serverErrCh:
		if err != nil {
			return err
		}
	}

	log.Println("Server stopped successfully")
	return nil
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, _ context.CancelFunc, server *mcp.Server) error {
	// The parent process controls our lifecycle; Run returns once stdin closes.
	return server.Run(ctx)
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	server, store, err := buildServer(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go store.RunJanitor(ctx, cfg.SweepInterval)

	if cfg.IsServerMode() {
		err = runServerMode(ctx, cancel, server)
	} else {
		err = runStdioMode(ctx, cancel, server)
	}
	cancel()

	if n, perr := store.Purge(); perr != nil {
		log.Printf("Failed to purge artifacts: %v", perr)
	} else if n > 0 {
		log.Printf("Purged %d artifact run(s)", n)
	}

	if err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP Fraud Trail\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
