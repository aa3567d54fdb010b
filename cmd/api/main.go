package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/xavierca1/lead-capture/internal/infra/ai"
	"github.com/xavierca1/lead-capture/internal/infra/catalog"
	"github.com/xavierca1/lead-capture/internal/infra/database"
	"github.com/xavierca1/lead-capture/internal/infra/http/handlers"
	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
	"github.com/xavierca1/lead-capture/internal/infra/integration/gsheets"
	"github.com/xavierca1/lead-capture/internal/infra/integration/instagram"
	"github.com/xavierca1/lead-capture/internal/infra/integration/messenger"
	"github.com/xavierca1/lead-capture/internal/infra/integration/whatsapp"
	"github.com/xavierca1/lead-capture/internal/infra/mail"
	"github.com/xavierca1/lead-capture/internal/infra/memory"
	"github.com/xavierca1/lead-capture/internal/infra/queue"
	"github.com/xavierca1/lead-capture/internal/usecase"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

func main() {
	godotenv.Load()

	// 1. Tenant store: Postgres when configured, in-memory for local dev.
	var (
		db       *sql.DB
		leadRepo usecase.LeadRepositoryInterface
		userRepo usecase.UserRepositoryInterface
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		var err error
		db, err = database.NewDBConnection(dsn)
		if err != nil {
			log.Fatalf("db connect error: %v", err)
		}
		defer db.Close()

		if err := database.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("db schema error: %v", err)
		}

		leadRepo = database.NewLeadRepository(db)
		userRepo = database.NewUserRepository(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory store (dev mode)")
		leadRepo = memory.NewLeadRepo()
		userRepo = memory.NewUserRepo()
	}

	// 2. Catalog index, loaded once and read-only afterwards.
	catalogDir := os.Getenv("CATALOG_DIR")
	if catalogDir == "" {
		catalogDir = "data_center"
	}
	index, err := catalog.LoadDir(catalogDir)
	if err != nil {
		log.Fatalf("catalog load error: %v", err)
	}

	// 3. AI backends. Without an API key the service still runs with the
	// keyword heuristic and a static reply.
	openAIKey := os.Getenv("OPENAI_API_KEY")
	var (
		generator  usecase.AIResponderInterface
		classifier usecase.IntentClassifierInterface
	)
	if openAIKey != "" {
		client := ai.NewOpenAIClient(openAIKey, os.Getenv("OPENAI_MODEL"))
		generator = client
		classifier = client
	} else {
		log.Println("OPENAI_API_KEY not set, using keyword classifier and static replies")
		generator = ai.StaticResponder{}
		classifier = ai.KeywordClassifier{}
	}

	responder := usecase.NewCatalogResponder(index, generator)

	// 4. Outbound channel clients.
	waClient := whatsapp.NewClient(os.Getenv("WHATSAPP_ACCESS_TOKEN"), os.Getenv("WHATSAPP_PHONE_ID"))
	msClient := messenger.NewClient(os.Getenv("FB_PAGE_ACCESS_TOKEN"))
	igClient := instagram.NewClient(os.Getenv("INSTAGRAM_ACCESS_TOKEN"))

	// 5. Notification sinks.
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if smtpPort == 0 {
		smtpPort = 587
	}
	mailSender := mail.NewEmailSender(
		os.Getenv("SMTP_HOST"), smtpPort,
		os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"),
		os.Getenv("MAIL_FROM"),
	)
	notifier := mail.NewLeadNotifier(
		mailSender,
		waClient,
		splitList(os.Getenv("NOTIFICATION_EMAILS")),
		os.Getenv("ADMIN_WHATSAPP_NUMBER"),
	)

	// 6. Workflow dispatcher. With RabbitMQ configured, events go through
	// the queue and a worker delivers notifications; otherwise delivery
	// runs in-process, still off the request path.
	dispatcher := workflow.NewDispatcher()
	var rabbitMQ *queue.RabbitMQ
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		rabbitMQ, err = queue.NewRabbitMQ(url)
		if err != nil {
			log.Fatalf("rabbitmq error: %v", err)
		}
		defer rabbitMQ.Close()

		publisher := queue.NewEventPublisher(rabbitMQ.Ch)
		dispatcher.Register(workflow.EventLeadCreated, publisher)
		dispatcher.Register(workflow.EventLeadBecameHot, publisher)

		worker := queue.NewWorker(rabbitMQ.Ch, notifier)
		go worker.Start(queue.QueueName)
	} else {
		log.Println("RABBITMQ_URL not set, delivering notifications in-process")
		dispatcher.Register(workflow.EventLeadCreated, workflow.HandlerFunc(
			func(ctx context.Context, ev workflow.Event) error {
				middleware.RecordWorkflowEvent(string(ev.Kind))
				return notifier.NotifyNewLead(ctx, ev)
			}))
		dispatcher.Register(workflow.EventLeadBecameHot, workflow.HandlerFunc(
			func(ctx context.Context, ev workflow.Event) error {
				middleware.RecordWorkflowEvent(string(ev.Kind))
				return notifier.NotifyHotLead(ctx, ev)
			}))
	}
	// Lead rows are appended to a Google Sheet when sync is enabled. The sink
	// rides the dispatcher directly in both modes, off the request path.
	if os.Getenv("GOOGLE_SHEETS_SYNC") == "true" {
		sheetSync, err := gsheets.NewSync(context.Background(),
			os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
			option.WithCredentialsFile(os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE")),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
		if err != nil {
			log.Fatalf("google sheets error: %v", err)
		}
		dispatcher.Register(workflow.EventLeadCreated, sheetSync)
	}

	dispatcher.Register(workflow.EventNewMessage, workflow.HandlerFunc(
		func(_ context.Context, ev workflow.Event) error {
			middleware.RecordWorkflowEvent(string(ev.Kind))
			return nil
		}))

	// 7. The pipeline itself.
	orchestrator := usecase.NewConversationOrchestrator(leadRepo, responder, classifier, dispatcher)

	// 8. HTTP surface.
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Println("JWT_SECRET not set, protected endpoints use an insecure dev secret")
		jwtSecret = []byte("dev-secret-do-not-use")
	}

	chatHandler := handlers.NewChatHandler(orchestrator)
	waHandler := handlers.NewWhatsAppWebhookHandler(orchestrator, waClient, os.Getenv("WHATSAPP_VERIFY_TOKEN"))
	msHandler := handlers.NewMessengerWebhookHandler(orchestrator, msClient, os.Getenv("FB_VERIFY_TOKEN"), os.Getenv("FB_APP_SECRET"))
	igHandler := handlers.NewInstagramWebhookHandler(orchestrator, igClient, os.Getenv("INSTAGRAM_VERIFY_TOKEN"))
	leadHandler := handlers.NewLeadHandler(leadRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(leadRepo)
	searchHandler := handlers.NewProductSearchHandler(index)
	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret)
	var healthHandler *handlers.HealthHandler
	if rabbitMQ != nil {
		healthHandler = handlers.NewHealthHandler(db, rabbitMQ.Conn, openAIKey != "")
	} else {
		healthHandler = handlers.NewHealthHandler(db, nil, openAIKey != "")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: splitListDefault(os.Getenv("ALLOWED_ORIGINS"), []string{"*"}),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat/respond", chatHandler.HandleRespond)

		r.Get("/webhook/whatsapp/{tenantID}", waHandler.HandleVerify)
		r.Post("/webhook/whatsapp/{tenantID}", waHandler.HandleWebhook)
		r.Get("/webhook/messenger/{tenantID}", msHandler.HandleVerify)
		r.Post("/webhook/messenger/{tenantID}", msHandler.HandleWebhook)
		r.Get("/webhook/instagram/{tenantID}", igHandler.HandleVerify)
		r.Post("/webhook/instagram/{tenantID}", igHandler.HandleWebhook)

		r.Post("/products/search", searchHandler.HandleSearch)
		r.Get("/products/{productID}", searchHandler.HandleGetProduct)
		r.Get("/products/category/{category}", searchHandler.HandleByCategory)
		r.Get("/products/brand/{brand}", searchHandler.HandleByBrand)

		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/token", authHandler.HandleToken)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(jwtSecret))
			r.Get("/leads", leadHandler.HandleList)
			r.Get("/analytics/summary", analyticsHandler.HandleSummary)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("lead-capture listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitListDefault(raw string, def []string) []string {
	if list := splitList(raw); list != nil {
		return list
	}
	return def
}
