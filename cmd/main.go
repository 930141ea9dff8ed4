package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-SchedulingAgent/internal/agenda"
	getTranscriptHandler "github.com/m04kA/SMC-SchedulingAgent/internal/api/handlers/get_transcript"
	sendMessageHandler "github.com/m04kA/SMC-SchedulingAgent/internal/api/handlers/send_message"
	startConversationHandler "github.com/m04kA/SMC-SchedulingAgent/internal/api/handlers/start_conversation"
	"github.com/m04kA/SMC-SchedulingAgent/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingAgent/internal/config"
	conversationRepo "github.com/m04kA/SMC-SchedulingAgent/internal/infra/storage/conversation"
	stateRepo "github.com/m04kA/SMC-SchedulingAgent/internal/infra/storage/state"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/asaas"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/klingo"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/llm"
	conversationsService "github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations"
	handleTurnUC "github.com/m04kA/SMC-SchedulingAgent/internal/usecase/handle_turn"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/logger"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/simpletxmanager"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SchedulingAgent...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	klingoClient := klingo.NewClient(klingo.Config{
		BaseURL:       cfg.Klingo.BaseURL,
		AppToken:      cfg.Klingo.AppToken,
		RegisterToken: cfg.Klingo.RegisterToken,
		Timeout:       time.Duration(cfg.Klingo.Timeout) * time.Second,
		Specialty:     cfg.Klingo.Specialty,
		Exam:          cfg.Klingo.Exam,
		Plan:          cfg.Klingo.Plan,
	}, log)
	asaasClient := asaas.NewClient(
		cfg.Asaas.BaseURL,
		cfg.Asaas.APIKey,
		time.Duration(cfg.Asaas.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (Klingo=%s timeout=%ds, Asaas=%s timeout=%ds)",
		cfg.Klingo.BaseURL, cfg.Klingo.Timeout, cfg.Asaas.BaseURL, cfg.Asaas.Timeout)

	// Опциональный LLM-интерпретатор для распознавания имени врача
	var interpreter handleTurnUC.Interpreter
	if cfg.LLM.Enabled {
		interpreter = llm.NewAdapter(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.FallbackModel, log)
		log.Info("LLM interpreter enabled (model=%s, fallback=%s)", cfg.LLM.Model, cfg.LLM.FallbackModel)
	}

	// Кэш сокращенной агенды, общий для всех диалогов
	agendaCache := agenda.NewCache(klingoClient, time.Duration(cfg.Agenda.CacheTTL)*time.Second, nil)
	log.Info("Agenda cache initialized (ttl=%ds)", cfg.Agenda.CacheTTL)

	// Инициализируем репозитории (с метриками или без)
	var (
		convRepository  *conversationRepo.Repository
		stateRepository *stateRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		convRepository = conversationRepo.NewRepository(wrappedDB)
		stateRepository = stateRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		convRepository = conversationRepo.NewRepository(db)
		stateRepository = stateRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем use case диалога
	handleTurnUseCase := handleTurnUC.NewUseCase(
		agendaCache,
		klingoClient,
		asaasClient,
		interpreter,
		handleTurnUC.PaymentConfig{
			Value:       cfg.Payment.Value,
			Description: cfg.Payment.Description,
		},
		log,
	)

	// Инициализируем сервис бесед
	conversationsSvc := conversationsService.NewService(
		convRepository,
		stateRepository,
		handleTurnUseCase,
		txMgr,
		log,
	)

	// Инициализируем handlers
	startConversation := startConversationHandler.NewHandler(conversationsSvc, log)
	sendMessage := sendMessageHandler.NewHandler(conversationsSvc, log)
	getTranscript := getTranscriptHandler.NewHandler(conversationsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Все маршруты требуют X-User-ID header
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Создание беседы (ассистент отвечает приветствием)
	protected.HandleFunc("/conversations", startConversation.Handle).Methods(http.MethodPost)

	// Сообщение пользователя в беседе
	protected.HandleFunc("/conversations/{conversationId}/messages", sendMessage.Handle).Methods(http.MethodPost)

	// Полная выписка беседы
	protected.HandleFunc("/conversations/{conversationId}/messages", getTranscript.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
