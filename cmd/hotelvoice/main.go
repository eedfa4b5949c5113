package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/audio"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/concierge"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/config"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/crm"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/llm"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/rag"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/server"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/session"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/tools"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/tts"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("HOTEL_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("HOTEL_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Connect to Gemini (generation, summarization, embeddings).
	gemini, err := llm.New(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.EmbedModel)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := gemini.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("closing llm client")
		}
	}()

	// Load the knowledge index snapshot. A missing snapshot disables the RAG
	// tier; booking triggers and open chat still work.
	var index *rag.Index
	index, err = rag.Load(cfg.RAG.SnapshotPath, gemini)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.RAG.SnapshotPath).Msg("knowledge snapshot unavailable; RAG tier disabled")
		index = nil
	} else {
		log.Info().Int("passages", index.Len()).Msg("knowledge base loaded")
	}

	// Audio artifact store: Redis when configured, in-memory otherwise.
	var artifacts audio.Store
	if cfg.Redis.Addr != "" {
		redisStore, redisErr := audio.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.TTS.ArtifactTTL)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			if closeErr := redisStore.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("closing redis")
			}
		}()
		artifacts = redisStore
	} else {
		artifacts = audio.NewMemory(cfg.TTS.ArtifactTTL)
	}

	// CRM writer: Google Sheets when configured, local log otherwise.
	var writer crm.Writer
	if cfg.CRM.SpreadsheetID != "" {
		writer, err = crm.NewSheetsWriter(ctx, cfg.CRM.CredentialsFile, cfg.CRM.SpreadsheetID, cfg.CRM.SheetRange)
		if err != nil {
			return err
		}
		log.Info().Str("spreadsheet_id", cfg.CRM.SpreadsheetID).Msg("crm connected")
	} else {
		writer = crm.LogWriter{}
	}
	pipeline := crm.NewPipeline(gemini, writer, cfg.CRM.MaxAttempts)

	// Session store with idle eviction.
	sessions := session.NewStore(cfg.Session.IdleTTL)

	// Classification tiers, checked in order; open chat is the fallback.
	tiers := []concierge.Tier{
		concierge.NewToolTier(tools.NewAvailability()),
	}
	if index != nil {
		tiers = append(tiers, concierge.NewRAGTier(index, cfg.RAG.Threshold, cfg.RAG.TopK))
	}

	orchestrator := concierge.NewOrchestrator(
		sessions,
		gemini,
		tts.NewClient(cfg.TTS.Voice),
		artifacts,
		pipeline,
		tiers,
		concierge.Options{
			HistoryWindow:    cfg.LLM.HistoryWindow,
			GenerateTimeout:  cfg.LLM.Timeout,
			SynthesisTimeout: cfg.TTS.Timeout,
		},
	)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Session janitor.
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	srv := server.New(ctx, cfg, orchestrator, artifacts)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
