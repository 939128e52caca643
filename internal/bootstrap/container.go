package bootstrap

import (
	"context"
	"log"
	"time"

	"agent-assist-be/internal/config"
	"agent-assist-be/internal/controller"
	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"
	"agent-assist-be/internal/pkg/serverutils"
	"agent-assist-be/internal/repository/contract"
	"agent-assist-be/internal/repository/memory"
	redisRepo "agent-assist-be/internal/repository/redis"
	"agent-assist-be/internal/service"
	"agent-assist-be/pkg/mlapi"
	"agent-assist-be/pkg/nlp"
	"agent-assist-be/pkg/recommend"
	"agent-assist-be/pkg/search"

	pktNats "agent-assist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	SuggestionController controller.ISuggestionController
	VersionController    controller.IVersionController

	// Loads and saves the conversation around each /whisper request
	ConversationMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production", cfg.App.LogLevel)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; without it suggestion events stay in-process
	var forwarder service.EventForwarder
	if cfg.Events.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. Conversation store
	contexts := newConversationStore(cfg.Store, c)

	// 4. Collaborators
	indexSearch, err := search.NewElasticIndexSearch(search.Config{
		Addresses:       cfg.Search.Addresses,
		Username:        cfg.Search.Username,
		Password:        cfg.Search.Password,
		APIKey:          cfg.Search.APIKey,
		Index:           cfg.Search.Index,
		NumberOfResults: cfg.Search.NumberOfResults,
	}, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize index search: %v", err)
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := indexSearch.Ping(pingCtx); err != nil {
		log.Printf("[WARN] Failed to reach Elasticsearch: %v", err)
	}
	cancelPing()

	mlClient := mlapi.NewClient(cfg.MLAPI.BaseURL, cfg.MLAPI.Timeout, sysLogger)
	analyzer := nlp.NewClient(cfg.NLP.BaseURL, cfg.NLP.IrrelevantIntents, cfg.NLP.Timeout, sysLogger)

	recommenders := recommend.NewRecommenders(
		indexSearch,
		mlapi.NewLastClickAnalytics(mlClient),
		mlapi.NewNearestDocuments(mlClient),
		mlapi.NewDocumentFacets(mlClient),
		mlapi.NewFilterDocuments(mlClient),
		recommend.Config{
			NumberOfWordsIntoQ:    cfg.Recommender.NumberOfWordsIntoQ,
			ContextEntitiesWindow: cfg.Recommender.ContextEntitiesWindow,
		},
		sysLogger,
	)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Events.Topic)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Events.Topic, forwarder, sysLogger)

	suggestionService := service.NewSuggestionService(
		recommenders,
		analyzer,
		publisherService,
		service.SuggestionServiceConfig{
			MinimumConfidence: cfg.Recommender.MinimumConfidence,
			Settings: entity.RecommenderSettings{
				UseLongQuerySearchRecommender:         cfg.Recommender.UseLongQuery,
				UsePreprocessedQuerySearchRecommender: cfg.Recommender.UsePreprocessedQuery,
				UseAnalyticsSearchRecommender:         cfg.Recommender.UseAnalytics,
				UseNearestDocumentsRecommender:        cfg.Recommender.UseNearestDocuments,
				UseFacetQuestionRecommender:           cfg.Recommender.UseFacetQuestions,
			},
		},
		sysLogger,
	)
	questionService := service.NewQuestionService(sysLogger)

	// 6. Controllers
	c.SuggestionController = controller.NewSuggestionController(suggestionService, questionService)
	c.VersionController = controller.NewVersionController(cfg.App.Name, cfg.App.Version)
	c.ConversationMiddleware = serverutils.ConversationContextMiddleware(contexts, sysLogger)

	return c
}

func newConversationStore(cfg config.StoreConfig, c *Container) contract.ConversationContextRepository {
	if cfg.Kind != "redis" {
		log.Printf("[INFO] Using Conversation Store: MEMORY (lifespan %s)", cfg.Lifespan)
		return memory.NewConversationContextRepository(cfg.Lifespan)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	log.Printf("[INFO] Using Conversation Store: REDIS (lifespan %s)", cfg.Lifespan)
	return redisRepo.NewConversationContextRepository(rdb, cfg.Lifespan)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
