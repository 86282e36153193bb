package bootstrap

import (
	"context"
	"errors"
	"log"
	"time"

	"cognimed-be/internal/config"
	"cognimed-be/internal/controller"
	"cognimed-be/internal/handler"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/pkg/mailer"
	"cognimed-be/internal/repository/memory"
	"cognimed-be/internal/repository/unitofwork"
	"cognimed-be/internal/service"
	"cognimed-be/internal/websocket"
	"cognimed-be/pkg/embedding"
	"cognimed-be/pkg/events"
	"cognimed-be/pkg/extractor"
	"cognimed-be/pkg/llm/factory"
	"cognimed-be/pkg/storage"
	"cognimed-be/pkg/vectorindex"

	pktNats "cognimed-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	UserController         controller.IUserController
	PostController         controller.IPostController
	ChatbotController      controller.IChatbotController
	PrescriptionController controller.IPrescriptionController
	IndexController        controller.IIndexController

	// Background services, started by main.go
	ConsumerService service.IConsumerService
	FeedService     *service.FeedService

	// Live feed
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub
}

func NewEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "hashing":
		log.Printf("[INFO] Using Embedding Provider: HASHING (offline)")
		return embedding.NewHashingProvider(embedding.DefaultHashingDimension)
	default:
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}
}

// NewPostIndex picks the index backend named by VECTOR_BACKEND.
func NewPostIndex(cfg *config.Config, uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider) service.PostIndex {
	if cfg.Index.Backend == service.BackendPgvector {
		log.Printf("[INFO] Using index backend: pgvector")
		checkPgvectorDimension(embedder)
		return service.NewPgvectorIndex(uowFactory, embedder)
	}
	log.Printf("[INFO] Using index backend: file (%s)", cfg.Index.Path)
	return service.NewFileIndex(cfg.Index.Path, embedder)
}

// checkPgvectorDimension refuses to start when the embedding provider cannot
// fill the vector(768) column. An unreachable provider only warns.
func checkPgvectorDimension(embedder embedding.EmbeddingProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := service.CheckPgvectorDimension(ctx, embedder)
	switch {
	case err == nil:
	case errors.Is(err, vectorindex.ErrDimensionMismatch):
		log.Fatalf("[FATAL] Embedding provider does not fit the pgvector column: %v", err)
	default:
		log.Printf("[WARN] Could not verify embedding dimension: %v", err)
	}
}

// NewIndexService wires the index without the HTTP stack, for the operator CLI.
// It has no rebuild queue; callers run Rebuild directly.
func NewIndexService(db *gorm.DB, cfg *config.Config, log logger.ILogger) service.IIndexService {
	uowFactory := unitofwork.NewRepositoryFactory(db)
	index := NewPostIndex(cfg, uowFactory, NewEmbeddingProvider(cfg))
	return service.NewIndexService(index, uowFactory, nil, cfg.Index.RebuildJob, log)
}

func newObjectStorage(cfg *config.Config) storage.ObjectStorage {
	if cfg.Storage.Provider == "cloudinary" {
		cld, err := storage.NewCloudinaryStorage(
			cfg.Storage.CloudinaryCloudName,
			cfg.Storage.CloudinaryAPIKey,
			cfg.Storage.CloudinaryAPISecret,
			cfg.Storage.CloudinaryFolder,
		)
		if err == nil {
			log.Printf("[INFO] Using object storage: CLOUDINARY")
			return cld
		}
		log.Printf("[WARN] Cloudinary unavailable, falling back to local storage: %v", err)
	}
	log.Printf("[INFO] Using object storage: LOCAL (%s)", cfg.Storage.UploadDir)
	return storage.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
}

func newRedis(cfg *config.Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Redis unreachable, live feed stays on this instance: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Rebuild queue
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	// 3. Providers
	embeddingProvider := NewEmbeddingProvider(cfg)
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Event bus. A nil *Publisher must not end up inside the interface.
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// 5. Live feed
	feedLogger := logger.NewIsolatedLogger("logs/feed.log")
	wsHub := websocket.NewHub(newRedis(cfg), feedLogger)

	var feedService *service.FeedService
	if natsSub != nil {
		feedService = service.NewFeedService(natsSub, wsHub, feedLogger)
	}

	// 6. Services
	postIndex := NewPostIndex(cfg, uowFactory, embeddingProvider)
	indexService := service.NewIndexService(postIndex, uowFactory, message.Publisher(pubSub), cfg.Index.RebuildJob, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.Index.RebuildJob, indexService, eventPublisher, sysLogger)

	area := extractor.NewPatientArea(cfg.App.StaticDir)
	documents := service.NewPatientDocumentService(area, memory.NewDocumentCache(0), sysLogger)

	authService := service.NewAuthService(uowFactory, emailService, cfg.Auth.AccessTokenExpiry, sysLogger)
	userService := service.NewUserService(uowFactory, indexService, sysLogger)
	postService := service.NewPostService(uowFactory, indexService, eventPublisher, sysLogger)
	chatbotService := service.NewChatbotService(
		uowFactory,
		indexService,
		documents,
		llmProvider,
		service.ChatbotOptions{
			RetrieveK:       cfg.Index.RetrieveK,
			PromptMaxChars:  cfg.Ai.PromptMaxChars,
			ProviderTimeout: cfg.Ai.ProviderTimeout,
		},
		sysLogger,
	)
	prescriptionService := service.NewPrescriptionService(
		uowFactory,
		newObjectStorage(cfg),
		extractor.NewImageExtractor(llmProvider),
		area,
		emailService,
		eventPublisher,
		cfg.Ai.ProviderTimeout,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		AuthController:         controller.NewAuthController(authService),
		UserController:         controller.NewUserController(userService),
		PostController:         controller.NewPostController(postService),
		ChatbotController:      controller.NewChatbotController(chatbotService),
		PrescriptionController: controller.NewPrescriptionController(prescriptionService),
		IndexController:        controller.NewIndexController(indexService),

		ConsumerService: consumerService,
		FeedService:     feedService,

		FeedHandler:  handler.NewFeedHandler(wsHub, feedLogger),
		WebSocketHub: wsHub,
	}
}

// Start runs the background workers until ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		log.Printf("[ERROR] Rebuild consumer failed to start: %v", err)
	}

	if c.FeedService != nil {
		if err := c.FeedService.Start(ctx); err != nil {
			log.Printf("[ERROR] Feed service failed to start: %v", err)
		}
	}
}
