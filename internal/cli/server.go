package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/sot015/ocp-quiz-app/internal/app"
	"github.com/sot015/ocp-quiz-app/internal/auth"
	"github.com/sot015/ocp-quiz-app/internal/config"
	"github.com/sot015/ocp-quiz-app/internal/infra/memory"
	pgbank "github.com/sot015/ocp-quiz-app/internal/infra/postgres"
	"github.com/sot015/ocp-quiz-app/internal/infra/questionfile"
	redisbank "github.com/sot015/ocp-quiz-app/internal/infra/redis"
	transport "github.com/sot015/ocp-quiz-app/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port, questionsPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *questionsPath)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag, questionsFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	questionsFile := cfg.Questions.File
	if questionsFile == "" {
		questionsFile = questionsFlag
	}
	bankID := cfg.Questions.Bank
	if bankID == "" {
		bankID = "default"
	}

	var source app.QuestionSource = questionfile.NewLoader(questionsFile)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = pgbank.NewBankLoader(pool, bankID)
	}

	// A short TTL keeps state polling off the backing store while still
	// picking up bank edits for the next round.
	bankTTL := config.TTLDuration(cfg.Questions.TTL, 15*time.Second)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		source = redisbank.NewBankCache(redisClient, source, bankID, bankTTL)
	} else {
		source = memory.NewBankCache(source, bankTTL)
	}

	cooldown := config.TTLDuration(cfg.Quiz.Cooldown, app.DefaultCooldown)
	session := app.NewSession(source, cooldown)

	password := cfg.Admin.Password
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		password = auth.GeneratePassword()
		log.Printf("generated admin password: %s", password)
	}
	authz := auth.New(password)

	handler := transport.NewHandler(session, authz, cfg.Server.ExternalURL)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
