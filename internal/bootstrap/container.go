package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"dealagent-be/internal/config"
	"dealagent-be/internal/controller"
	"dealagent-be/internal/handler"
	"dealagent-be/internal/pkg/logger"
	"dealagent-be/internal/pkg/mailer"
	"dealagent-be/internal/repository/memory"
	"dealagent-be/internal/repository/unitofwork"
	"dealagent-be/internal/service"
	"dealagent-be/internal/websocket"
	"dealagent-be/pkg/embedding"
	"dealagent-be/pkg/llm/factory"
	"dealagent-be/pkg/rag/search"
	"dealagent-be/pkg/websearch"

	pktNats "dealagent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		context.Background(),
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Static company profile fed to the strategic qualification stage.
	domainMetadata := loadDomainMetadata(cfg.Ai.DomainMetadataPath)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis (websearch cache + websocket cluster fan-out)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Pipeline plumbing
	llmLogger := initLLMLogger()
	searchOrchestrator := search.NewOrchestrator(embeddingProvider, llmLogger)
	webSearcher := websearch.NewDuckDuckGo(
		rdb,
		time.Duration(cfg.Search.WebCacheTTLMinutes)*time.Minute,
		llmLogger,
	)

	publisherService := service.NewPublisherService(pubSub, cfg.Keys.EmbedChunkTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedChunkTopic,
		uowFactory,
		embeddingProvider,
	)

	authService := service.NewAuthService(uowFactory, natsPub)

	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		llmProvider,
		searchOrchestrator,
		webSearcher,
		domainMetadata,
		emailService,
		natsPub,
		llmLogger,
	)

	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		searchOrchestrator,
		webSearcher,
		domainMetadata,
		sessionRepo,
		llmLogger,
	)

	// 4. Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, sysLogger) // Hub implements NotificationDelivery

	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(natsPub, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		AuthController:      controller.NewAuthController(authService),
		DocumentController:  controller.NewDocumentController(documentService),
		ChatController:      controller.NewChatController(chatService),

		ConsumerService: consumerService,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func loadDomainMetadata(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[WARN] Failed to read domain metadata from %s: %v", path, err)
		return ""
	}
	return string(data)
}
