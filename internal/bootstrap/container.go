package bootstrap

import (
	"context"
	"log"

	"school-concierge-be/internal/config"
	"school-concierge-be/internal/constant"
	"school-concierge-be/internal/controller"
	"school-concierge-be/internal/handler"
	"school-concierge-be/internal/pkg/logger"
	"school-concierge-be/internal/pkg/mailer"
	"school-concierge-be/internal/repository/memory"
	"school-concierge-be/internal/repository/unitofwork"
	"school-concierge-be/internal/service"
	"school-concierge-be/internal/websocket"
	"school-concierge-be/pkg/answers"
	"school-concierge-be/pkg/embedding"
	"school-concierge-be/pkg/formatter"
	"school-concierge-be/pkg/llm/factory"
	"school-concierge-be/pkg/policy"
	"school-concierge-be/pkg/resolve"
	"school-concierge-be/pkg/vectorindex"

	pktNats "school-concierge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	AuthController      controller.IAuthController
	ReviewController    controller.IReviewController
	KbController        controller.IKbController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	KbService        service.IKbService
	EscalationWorker *service.EscalationWorker

	// WebSockets & Push
	PushHandler  *handler.PushHandler
	WebSocketHub *websocket.Hub

	// Shared facades
	Logger logger.ILogger

	// StopAnswersWatch stops the fsnotify watcher on the curated table.
	StopAnswersWatch func() error
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
		cfg.App.ClientURL,
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
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.OpenAIEmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIEmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Curated answers + retrieval index
	answerTable, err := answers.Load(cfg.Answers.FilePath, cfg.Policy.FuzzyThreshold)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load answer table: %v", err)
	}
	log.Printf("[INFO] Answer table loaded: %d entries", answerTable.Size())

	stopWatch := func() error { return nil }
	if cfg.Answers.WatchEnabled && cfg.Answers.FilePath != "" {
		stop, err := answerTable.Watch(func(err error) {
			if err != nil {
				sysLogger.Error("Answers", "Hot reload failed, keeping previous table", map[string]interface{}{"error": err.Error()})
				return
			}
			sysLogger.Info("Answers", "Answer table reloaded from disk", map[string]interface{}{"entries": answerTable.Size()})
		})
		if err != nil {
			log.Printf("[WARN] Failed to watch answers file: %v", err)
		} else {
			stopWatch = stop
		}
	}

	index := vectorindex.New(nil)

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
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
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/push.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Domain Services
	resolver := resolve.New(
		answerTable,
		index,
		embeddingProvider,
		llmProvider,
		cfg.Ai.RetrievalTopK,
		nil,
	)

	escalationPolicy, err := policy.New(policy.Config{
		WindowEnabled:       cfg.Policy.WindowEnabled,
		WindowStart:         cfg.Policy.WindowStart,
		WindowEnd:           cfg.Policy.WindowEnd,
		Timezone:            cfg.Policy.Timezone,
		SensitiveKeywords:   cfg.Policy.SensitiveKeywords,
		ConfidenceThreshold: cfg.Policy.ConfidenceThreshold,
	}, nil)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build escalation policy: %v", err)
	}

	responseFormatter := formatter.New(constant.AssistantGreeting, constant.ClosingPrompt)
	resolutionCache := memory.NewResolutionCache()

	notifierService := service.NewNotifierService(natsPub, emailService, cfg.SMTP.AlertRecipient, sysLogger)

	assistantService := service.NewAssistantService(
		uowFactory,
		resolver,
		escalationPolicy,
		responseFormatter,
		resolutionCache,
		notifierService,
		wsHub,
		sysLogger,
	)

	reviewService := service.NewReviewService(uowFactory, wsHub, sysLogger)
	authService := service.NewAuthService(cfg.Moderator)

	publisherService := service.NewPublisherService(pubSub, cfg.Keys.KbTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.KbTopic,
		uowFactory,
		embeddingProvider,
		index,
	)
	kbService := service.NewKbService(uowFactory, publisherService, index, answerTable, sysLogger)

	// Alert Worker
	var escalationWorker *service.EscalationWorker
	if natsSub != nil {
		escalationWorker = service.NewEscalationWorker(natsSub, emailService, cfg.SMTP.AlertRecipient, sysLogger)
	}

	// Handler
	pushHandler := handler.NewPushHandler(wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		AuthController:      controller.NewAuthController(authService),
		ReviewController:    controller.NewReviewController(reviewService),
		KbController:        controller.NewKbController(kbService),

		ConsumerService:  consumerService,
		KbService:        kbService,
		EscalationWorker: escalationWorker,

		PushHandler:  pushHandler,
		WebSocketHub: wsHub,

		Logger:           sysLogger,
		StopAnswersWatch: stopWatch,
	}
}
