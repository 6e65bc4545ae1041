package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/example/task-manager/client"
	"github.com/example/task-manager/config"
	apimod "github.com/example/task-manager/modules/api"
	taskmod "github.com/example/task-manager/modules/task"
	"github.com/example/task-manager/modules/taskstore"
	webmod "github.com/example/task-manager/modules/web"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task API and web pages",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	servePort        int
	serveWebPort     int
	serveDatabaseURL string
	serveOrigins     string
	serveLogLevel    string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultPort, "API port")
	serveCmd.Flags().IntVar(&serveWebPort, "web-port", config.DefaultWebPort, "Web page port (0 disables the pages)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "Task store URL (sqlite://, postgres://, mongodb://, nats://, redis://)")
	serveCmd.Flags().StringVar(&serveOrigins, "cors-origins", "", "Comma-separated CORS origins")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadServeConfig merges flags that were set on top of the loaded config.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = servePort
	}
	if flags.Changed("web-port") {
		cfg.WebPort = serveWebPort
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if flags.Changed("cors-origins") {
		cfg.AllowedOrigins = serveOrigins
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	log.Println("=== Task Manager ===")
	log.Printf("Database: %s", taskstore.Redact(cfg.DatabaseURL))
	log.Printf("API Port: %d", cfg.Port)
	if cfg.WebPort != 0 {
		log.Printf("Web Port: %d", cfg.WebPort)
	}
	log.Printf("CORS Origins: %s", cfg.AllowedOrigins)
	log.Printf("Shutdown Timeout: %s", cfg.ShutdownTimeout)

	level := mono.LogLevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = mono.LogLevelDebug
	case "warn":
		level = mono.LogLevelWarn
	case "error":
		level = mono.LogLevelError
	}
	format := mono.LogFormatText
	if cfg.LogFormat == "json" {
		format = mono.LogFormatJSON
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(level),
		mono.WithLogFormat(format),
	)
	if err != nil {
		return fmt.Errorf("failed to create mono application: %w", err)
	}

	// Register modules. The api module depends on task; web reaches the
	// API over HTTP like any other client.
	if err := app.Register(taskmod.NewModule(taskstore.Config{
		URL:   cfg.DatabaseURL,
		Debug: cfg.DBDebug,
	}, app.Logger())); err != nil {
		return fmt.Errorf("failed to register task module: %w", err)
	}
	if err := app.Register(apimod.NewModule(apimod.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
	}, app.Logger())); err != nil {
		return fmt.Errorf("failed to register api module: %w", err)
	}
	if cfg.WebPort != 0 {
		api := client.New(cfg.ResolvedAPIBaseURL(), client.WithLogger(slog.Default()))
		if err := app.Register(webmod.NewModule(webmod.Config{Port: cfg.WebPort}, api, app.Logger())); err != nil {
			return fmt.Errorf("failed to register web module: %w", err)
		}
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}

	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d", cfg.Port)
	log.Println("Endpoints:")
	log.Println("  GET    /health         - Health check")
	log.Println("  GET    /api/tasks      - List tasks")
	log.Println("  GET    /api/tasks/:id  - Get task")
	log.Println("  POST   /api/tasks      - Create task")
	log.Println("  PUT    /api/tasks/:id  - Update task")
	log.Println("  DELETE /api/tasks/:id  - Delete task")
	if cfg.WebPort != 0 {
		log.Printf("Web pages available at http://localhost:%d (API: %s)", cfg.WebPort, cfg.ResolvedAPIBaseURL())
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}
