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

	"got-trivia-service/internal/config"
	"got-trivia-service/internal/domain"
	"got-trivia-service/internal/infra/memory"
	pgsource "got-trivia-service/internal/infra/postgres"
	redisinfra "got-trivia-service/internal/infra/redis"
	"got-trivia-service/internal/infra/sanity"
	"got-trivia-service/internal/quiz"
	transport "got-trivia-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the trivia quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		log.Printf("config %s not found, using defaults with demo questions", configPath)
		cfg = config.Default()
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	contentTimeout := config.TTLDuration(cfg.Content.Timeout, 10*time.Second)

	var loader memory.QuestionLoader
	switch {
	case cfg.Content.URL != "":
		loader = sanity.NewClient(cfg.Content.URL, contentTimeout)
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		loader = pgsource.NewQuestionSource(pool)
	default:
		loader = memory.NewStaticSource(sampleQuestions(cfg))
	}

	var source quiz.QuestionSource
	if redisClient != nil {
		source = redisinfra.NewQuestionCache(redisClient, loader, cacheTTL)
	} else {
		source = memory.NewQuestionCache(loader, cacheTTL)
	}

	var store quiz.SessionStore
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore()
	}

	refs := quiz.DifficultyRefs{
		Easy:         cfg.Content.Refs.Easy,
		Intermediate: cfg.Content.Refs.Intermediate,
		Legendary:    cfg.Content.Refs.Legendary,
	}
	engine, err := quiz.NewEngine(source, refs, quiz.WithDrawSize(cfg.Quiz.DrawSize))
	if err != nil {
		return err
	}

	handler := transport.NewHandler(engine, store)
	wsHandler := transport.NewWSHandler(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
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

// sampleQuestions provides a minimal demo pool per tier; swap in the CMS or
// Postgres source for production.
func sampleQuestions(cfg config.Config) map[string][]domain.Question {
	easy := []domain.Question{
		{
			ID:      "q-direwolf",
			Slug:    "stark-sigil",
			Text:    "What animal is the sigil of House Stark?",
			Choices: []string{"Lion", "Direwolf", "Stag", "Dragon"},
			Answer:  "Direwolf",
		},
		{
			ID:      "q-winterfell",
			Slug:    "stark-seat",
			Text:    "What is the seat of House Stark?",
			Choices: []string{"Casterly Rock", "Winterfell", "Highgarden"},
			Answer:  "Winterfell",
		},
		{
			ID:      "q-needle",
			Slug:    "arya-sword",
			Text:    "What does Arya name her sword?",
			Choices: []string{"Needle", "Oathkeeper", "Longclaw"},
			Answer:  "Needle",
		},
	}
	intermediate := []domain.Question{
		{
			ID:      "q-hodor",
			Slug:    "hodor-name",
			Text:    "What is Hodor's real name?",
			Choices: []string{"Walder", "Wyman", "Wylis"},
			Answer:  "Wylis",
		},
		{
			ID:      "q-valyrian",
			Slug:    "valar-morghulis",
			Text:    "What does 'Valar Morghulis' mean?",
			Choices: []string{"All men must die", "All men must serve", "Fire and blood"},
			Answer:  "All men must die",
		},
	}
	legendary := []domain.Question{
		{
			ID:      "q-azor",
			Slug:    "lightbringer-forger",
			Text:    "Who forged Lightbringer?",
			Choices: []string{"Azor Ahai", "Brandon the Builder", "Durran Godsgrief"},
			Answer:  "Azor Ahai",
		},
		{
			ID:      "q-aegon",
			Slug:    "conquest-year",
			Text:    "In what year did Aegon's Conquest begin?",
			Choices: []string{"2 BC", "1 AC", "12 AC"},
			Answer:  "2 BC",
		},
	}
	return map[string][]domain.Question{
		cfg.Content.Refs.Easy:         easy,
		cfg.Content.Refs.Intermediate: intermediate,
		cfg.Content.Refs.Legendary:    legendary,
	}
}
