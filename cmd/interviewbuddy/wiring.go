package main

import (
	"context"
	"fmt"

	"github.com/PabloGalante/interviewbuddy/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/interviewbuddy/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/interviewbuddy/internal/adapters/storage/memory"
	"github.com/PabloGalante/interviewbuddy/internal/app/feedback"
	"github.com/PabloGalante/interviewbuddy/internal/app/generation"
	"github.com/PabloGalante/interviewbuddy/internal/app/grading"
	"github.com/PabloGalante/interviewbuddy/internal/app/interview"
	"github.com/PabloGalante/interviewbuddy/internal/app/session"
	"github.com/PabloGalante/interviewbuddy/internal/config"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

// services is everything the commands need, built once from config.
type services struct {
	cfg *config.Config

	orchestrator *generation.Orchestrator
	interviews   *interview.Service
	feedback     *feedback.Service

	interviewStore domain.InterviewStore
	answerStore    domain.AnswerStore

	closers []func() error
}

func buildServices(ctx context.Context, cfg *config.Config) (*services, error) {
	log := observability.Logger()

	// AI client: mock for local dev, Gemini otherwise
	var client domain.TextGenerator
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		client = llm.NewMockLLM()
	} else {
		log.Info("using Gemini client", "primary_model", cfg.PrimaryModel, "fallback_model", cfg.FallbackModel)
		gc, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = gc
	}

	s := &services{cfg: cfg}

	// Storage: Firestore or memory
	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		// 1 store, implements 2 interfaces
		s.interviewStore = fs
		s.answerStore = fs
		s.closers = append(s.closers, fs.Close)
	default:
		log.Info("using in-memory storage")
		s.interviewStore = memstore.NewInterviewStore()
		s.answerStore = memstore.NewAnswerStore()
	}

	runner := generation.NewRunner(client, generation.Models{
		Primary:  cfg.PrimaryModel,
		Fallback: cfg.FallbackModel,
	}, policyFrom(cfg.Retry))

	s.orchestrator = generation.NewOrchestrator(runner)
	s.interviews = interview.NewService(s.orchestrator, grading.NewGrader(runner), s.interviewStore, s.answerStore)
	s.feedback = feedback.NewService(s.interviewStore, s.answerStore)
	return s, nil
}

func (s *services) sessionManager(deps session.Deps) *session.Manager {
	deps.Interviews = s.interviewStore
	deps.Answers = s.answerStore
	return session.NewManager(deps, sessionOptions(s.cfg.Session))
}

func (s *services) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			observability.Logger().Warn("closing resource failed", "error", err)
		}
	}
}

func policyFrom(rc config.RetryConfig) generation.Policy {
	return generation.Policy{
		MaxRetries:      rc.MaxRetries,
		PrimaryAttempts: rc.PrimaryAttempts,
		AttemptTimeout:  rc.AttemptTimeout,
		Backoff:         generation.ExponentialBackoff(rc.BackoffBase),
	}
}

func sessionOptions(sc config.SessionConfig) session.Options {
	opts := session.DefaultOptions()
	opts.AdvanceDelay = sc.AdvanceDelay
	opts.AutoRead = sc.AutoRead
	opts.Voice.Lang = sc.VoiceLang
	opts.Voice.Region = sc.VoiceRegion
	opts.Rate = sc.Rate
	opts.Pitch = sc.Pitch
	opts.Volume = sc.Volume
	return opts
}
