// Package bootstrap wires configuration, infrastructure, and services
// into runnable API and worker processes.
package bootstrap

import (
	"context"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/out/memory"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/out/messaging"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/out/persistence"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/out/platform"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/out/vector"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/config"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/analyzer"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/fallback"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/llm"
	replyagent "github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/reply"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/ai"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/message"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/reply"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/infra/database"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/cache"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/httputil"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds every shared component the API and worker build on.
type Dependencies struct {
	Config *config.Config

	// Infrastructure
	DB    *pgxpool.Pool
	SQLDB *sqlx.DB
	Redis *redis.Client
	Cache *cache.RedisCache

	// Outbound adapters
	MessageRepo  out.MessageRepository
	AnalysisRepo out.AnalysisRepository
	ReplyRepo    out.ReplyRepository
	PersonaStore out.PersonaStore
	VectorStore  out.VectorStore
	AgentMemory  out.AgentMemory
	Producer     out.MessageProducer
	Gateway      out.PlatformGateway

	// AI pipeline
	LLMClient    *llm.Client
	Runner       *llm.Runner
	Orchestrator *analyzer.Orchestrator
	Fallback     *fallback.Processor

	// Services
	AIService      *ai.Service
	ReplyService   *reply.Service
	MessageService *message.Service
}

// NewDependencies builds the full dependency graph. The returned cleanup
// closes infrastructure connections in reverse order of creation.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, db.Close)

	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		if err := sqlDB.Close(); err != nil {
			logger.Default().WithError(err).Warn("failed to close sql connection pool")
		}
	})

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		if err := redisClient.Close(); err != nil {
			logger.Default().WithError(err).Warn("failed to close redis client")
		}
	})

	redisCache := cache.NewRedisCache(redisClient)

	// Outbound adapters
	messageRepo := persistence.NewMessageRepository(sqlDB)
	analysisRepo := persistence.NewAnalysisRepository(sqlDB)
	replyRepo := persistence.NewReplyRepository(sqlDB)
	personaStore := memory.NewCachedPersonaStore(
		persistence.NewPersonaStore(sqlDB),
		redisCache,
		cfg.PersonaCacheTTL(),
	)
	vectorStore := vector.NewStore(db)
	agentMemory := memory.NewRedisAgentMemory(redisClient, 0)
	producer := messaging.NewRedisProducer(redisClient, cfg.AnalyzeStream)

	relayCfg := httputil.DefaultClientConfig()
	relayCfg.ResponseTimeout = time.Duration(cfg.PlatformRelayTimeoutSec) * time.Second
	relayClient := httputil.NewClient(relayCfg)
	gateway := platform.NewRelayGateway(cfg.PlatformRelayURL, relayClient)

	// AI pipeline
	llmClient := llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenAIAPIKey,
		Model:          cfg.LLMModel,
		EmbeddingModel: cfg.EmbeddingModel,
		MaxTokens:      cfg.LLMMaxTokens,
		Temperature:    cfg.LLMTemperature,
		Timeout:        cfg.LLMTimeout(),
	})
	runner := llm.NewRunner(llmClient)
	orchestrator := analyzer.NewOrchestrator(runner)
	fallbackProcessor := fallback.NewProcessor()

	// Services
	aiService := ai.NewService(
		messageRepo,
		analysisRepo,
		replyRepo,
		vectorStore,
		personaStore,
		llmClient,
		orchestrator,
		fallbackProcessor,
		runner,
		ai.Config{
			ReplyPriorityThreshold: cfg.ReplyPriorityThreshold,
			NoReplyPatterns:        cfg.NoReplyPatterns,
			SearchMinScore:         cfg.SearchMinScore,
			SearchDefaultLimit:     cfg.SearchDefaultLimit,
		},
	)

	drafter := replyagent.NewAgent(llmClient, agentMemory)
	replyService := reply.NewService(messageRepo, replyRepo, personaStore, drafter, gateway)
	messageService := message.NewService(messageRepo, producer)

	deps := &Dependencies{
		Config:         cfg,
		DB:             db,
		SQLDB:          sqlDB,
		Redis:          redisClient,
		Cache:          redisCache,
		MessageRepo:    messageRepo,
		AnalysisRepo:   analysisRepo,
		ReplyRepo:      replyRepo,
		PersonaStore:   personaStore,
		VectorStore:    vectorStore,
		AgentMemory:    agentMemory,
		Producer:       producer,
		Gateway:        gateway,
		LLMClient:      llmClient,
		Runner:         runner,
		Orchestrator:   orchestrator,
		Fallback:       fallbackProcessor,
		AIService:      aiService,
		ReplyService:   replyService,
		MessageService: messageService,
	}

	return deps, cleanup, nil
}

// HealthCheck verifies the primary infrastructure connections.
func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if err := d.DB.Ping(ctx); err != nil {
		return err
	}
	return d.Redis.Ping(ctx).Err()
}
