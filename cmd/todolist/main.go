// main is the entry point for the todolist application
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cirocosta/todolist/internal/api"
	"github.com/cirocosta/todolist/internal/client"
	"github.com/cirocosta/todolist/internal/config"
	"github.com/cirocosta/todolist/internal/logging"
	"github.com/cirocosta/todolist/internal/repository"
	"github.com/cirocosta/todolist/internal/server"
	"github.com/cirocosta/todolist/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runServer(args)
	case "openapi-gen":
		err = generateOpenAPI(args)
	case "tui":
		err = runTUI(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "todolist %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`
Usage: todolist <command> [options]

Commands:
  run          Start the HTTP API server
  openapi-gen  Generate OpenAPI documentation
  tui          Open the terminal frontend against a running server

Run 'todolist <command> -h' for more information on a command.
`)
}

func runServer(args []string) error {
	cfg, err := config.Load(flag.NewFlagSet("run", flag.ExitOnError), args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if cfg.ConfigFile != "" {
		logger.Info("loaded config file", "path", cfg.ConfigFile)
	}

	// create context that listens for interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("store ready", "driver", cfg.Store.Driver)

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := repo.Close(closeCtx); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	return server.New(cfg.Server, repo, logger).Run(ctx)
}

func generateOpenAPI(args []string) error {
	fs := flag.NewFlagSet("openapi-gen", flag.ExitOnError)
	output := fs.String("o", "openapi.json", "Output file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// the document only depends on the routes, so any store will do
	r := api.NewRouter(repository.NewInMemoryTodoRepository(), api.Options{Version: server.Version})

	data, err := json.MarshalIndent(r.OpenAPI(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}

	if err := os.WriteFile(*output, data, 0644); err != nil {
		return fmt.Errorf("write openapi spec to file '%s': %w", *output, err)
	}

	fmt.Printf("OpenAPI spec generated at %s\n", *output)
	return nil
}

func runTUI(args []string) error {
	cfg, err := config.Load(flag.NewFlagSet("tui", flag.ExitOnError), args)
	if err != nil {
		return err
	}

	c, err := client.New(cfg.Client.BaseURL)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tui.Run(ctx, c)
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
