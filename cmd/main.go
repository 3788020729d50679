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
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	completeAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/complete_appointments"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	createAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_availability"
	createServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_service"
	deleteAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_availability"
	deleteServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_service"
	detachPaymentMethodHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/detach_payment_method"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAppointmentEventsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment_events"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_service"
	healthzHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/healthz"
	listAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_appointments"
	listAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_availability"
	listPaymentMethodsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_payment_methods"
	listServicesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_services"
	listUserAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_user_appointments"
	payAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/pay_appointment"
	refundAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/refund_appointment"
	stripeWebhookHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/stripe_webhook"
	updateServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_service"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/idempotency"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/ratelimit"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	appointmentEventRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment_event"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	paymentEventRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/payment_event"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/mailer"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	availabilityService "github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	catalogService "github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
	paymentMethodsService "github.com/m04kA/SMC-AppointmentService/internal/service/paymentmethods"
	cancelAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_appointment"
	completeAppointmentsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/complete_appointments"
	confirmPaymentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/confirm_payment"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	deleteAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/delete_availability"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	payAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/pay_appointment"
	refundAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/refund_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// transactionManager общий интерфейс txmanager и simpletxmanager
type transactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// dbHandle источник запросов для репозиториев и health check
type dbHandle interface {
	dbmetrics.DBExecutor
	PingContext(ctx context.Context) error
}

// paymentGuard блокировка подтверждения оплаты по записи
type paymentGuard interface {
	Acquire(ctx context.Context, key string) (idempotency.ReleaseFunc, error)
}

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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
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
	log.Debug("Booking settings: cancellation_window_hours=%d, serialize_conflict_check=%t",
		cfg.Booking.CancellationWindowHours, cfg.Booking.SerializeConflictCheck)

	// Источник запросов и transaction manager (с метриками или без)
	var (
		executor dbHandle
		txMgr    transactionManager
	)
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)
		log.Info("Database metrics collection started")
		executor = wrappedDB
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		executor = db
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(executor)
	eventRepository := appointmentEventRepo.NewRepository(executor)
	availabilityRepository := availabilityRepo.NewRepository(executor)
	paymentEventRepository := paymentEventRepo.NewRepository(executor)
	serviceRepository := serviceRepo.NewRepository(executor)
	userRepository := userRepo.NewRepository(executor)

	// Redis: guard подтверждения оплаты и rate limit записи
	var (
		guard       paymentGuard = idempotency.NoopGuard{}
		rateCounter *ratelimit.RedisCounter
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unreachable at %s, continuing without guards: %v", cfg.Redis.Addr, err)
		} else {
			guard = idempotency.NewRedisGuard(rdb, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second, "appointments")
			rateCounter = ratelimit.NewRedisCounter(rdb, "appointments:rl")
			log.Info("Redis connected (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)
		}
		cancelPing()
	} else {
		log.Info("Redis disabled, payment confirmation relies on conditional updates only")
	}

	// Инициализируем интеграции
	var paymentProvider payments.Provider
	if cfg.Payments.Enabled() {
		paymentProvider = payments.NewStripeClient(cfg.Payments.StripeSecretKey, payments.StripeOptions{
			Currency:   cfg.Payments.Currency,
			SuccessURL: cfg.Payments.SuccessURL,
			CancelURL:  cfg.Payments.CancelURL,
		}, log)
		log.Info("Stripe payments enabled (currency=%s)", cfg.Payments.Currency)
	} else {
		paymentProvider = payments.NewDisabled()
		log.Warn("Stripe secret key is not set, payments are disabled")
	}
	webhookVerifier := payments.NewWebhookVerifier(
		cfg.Payments.StripeWebhookSecret,
		time.Duration(cfg.Payments.WebhookToleranceSeconds)*time.Second,
		cfg.Payments.AllowUnsignedWebhooks,
	)

	var mail confirmPaymentUC.Mailer
	if cfg.Mail.Enabled() {
		mail = mailer.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
		log.Info("SMTP mailer enabled (host=%s, port=%d)", cfg.Mail.SMTPHost, cfg.Mail.SMTPPort)
	} else {
		mail = mailer.NewLogSender(log, cfg.Mail.Environment)
		log.Info("SMTP is not configured, emails are logged")
	}

	demo := domain.DemoContent{
		ServiceTitles: cfg.Features.DemoServiceTitles,
		ImageMarker:   cfg.Features.DemoImageMarker,
		EmailDomain:   cfg.Features.DemoEmailDomain,
	}

	// Инициализируем сервисы
	catalogSvc := catalogService.NewService(
		serviceRepository,
		catalogService.Options{HideDemoContent: cfg.Features.HideDemoContent, Demo: demo},
		log,
	)
	availabilitySvc := availabilityService.NewService(availabilityRepository, log)
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		eventRepository,
		appointmentsService.Options{HideDemoContent: cfg.Features.HideDemoContent, Demo: demo},
		log,
	)
	paymentMethodsSvc := paymentMethodsService.NewService(userRepository, paymentProvider, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		serviceRepository,
		availabilityRepository,
		appointmentRepository,
		log,
	)

	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		userRepository,
		eventRepository,
		paymentProvider,
		txMgr,
		metricsCollector,
		createAppointmentUC.Options{SerializeConflictCheck: cfg.Booking.SerializeConflictCheck},
		log,
	)

	cancelAppointmentUseCase := cancelAppointmentUC.NewUseCase(
		appointmentRepository,
		eventRepository,
		paymentProvider,
		metricsCollector,
		cancelAppointmentUC.Options{CancellationWindowHours: cfg.Booking.CancellationWindowHours},
		log,
	)

	payAppointmentUseCase := payAppointmentUC.NewUseCase(
		appointmentRepository,
		userRepository,
		eventRepository,
		paymentProvider,
		guard,
		metricsCollector,
		log,
	)

	confirmPaymentUseCase := confirmPaymentUC.NewUseCase(
		appointmentRepository,
		userRepository,
		eventRepository,
		paymentEventRepository,
		paymentProvider,
		mail,
		guard,
		metricsCollector,
		log,
	)

	refundAppointmentUseCase := refundAppointmentUC.NewUseCase(
		appointmentRepository,
		eventRepository,
		paymentProvider,
		metricsCollector,
		log,
	)

	completeAppointmentsUseCase := completeAppointmentsUC.NewUseCase(
		appointmentRepository,
		eventRepository,
		metricsCollector,
		log,
	)

	deleteAvailabilityUseCase := deleteAvailabilityUC.NewUseCase(
		availabilityRepository,
		appointmentRepository,
		eventRepository,
		txMgr,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	listServices := listServicesHandler.NewHandler(catalogSvc, log)
	getService := getServiceHandler.NewHandler(catalogSvc, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	updateService := updateServiceHandler.NewHandler(catalogSvc, log)
	deleteService := deleteServiceHandler.NewHandler(catalogSvc, log)
	listAvailability := listAvailabilityHandler.NewHandler(availabilitySvc, log)
	createAvailability := createAvailabilityHandler.NewHandler(availabilitySvc, log)
	deleteAvailability := deleteAvailabilityHandler.NewHandler(deleteAvailabilityUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getAppointmentEvents := getAppointmentEventsHandler.NewHandler(appointmentsSvc, log)
	listUserAppointments := listUserAppointmentsHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(cancelAppointmentUseCase, log)
	payAppointment := payAppointmentHandler.NewHandler(payAppointmentUseCase, log)
	refundAppointment := refundAppointmentHandler.NewHandler(refundAppointmentUseCase, log)
	completeAppointments := completeAppointmentsHandler.NewHandler(completeAppointmentsUseCase, log)
	listPaymentMethods := listPaymentMethodsHandler.NewHandler(paymentMethodsSvc, log)
	detachPaymentMethod := detachPaymentMethodHandler.NewHandler(paymentMethodsSvc, log)
	stripeWebhook := stripeWebhookHandler.NewHandler(webhookVerifier, confirmPaymentUseCase, log)
	healthz := healthzHandler.NewHandler(executor, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", healthz.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Каталог услуг
	api.HandleFunc("/services", listServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}", getService.Handle).Methods(http.MethodGet)

	// Окна доступности и свободные слоты
	api.HandleFunc("/availability", listAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// События платежного провайдера (подпись проверяется в handler)
	api.HandleFunc("/webhooks/stripe", stripeWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	// Создание записи (с ограничением частоты, если доступен Redis)
	var createHandler http.Handler = http.HandlerFunc(createAppointment.Handle)
	if rateCounter != nil && cfg.Redis.BookingRateLimit > 0 {
		createHandler = middleware.RateLimit(rateCounter, "create-appointment", cfg.Redis.BookingRateLimit, time.Minute, log)(createHandler)
		log.Info("Booking rate limit enabled: %d per minute", cfg.Redis.BookingRateLimit)
	}
	protected.Handle("/appointments", createHandler).Methods(http.MethodPost)

	// Записи пользователя
	protected.HandleFunc("/appointments", listUserAppointments.Handle).Methods(http.MethodGet)

	// Запись по ID и ее журнал (владелец или администратор)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/events", getAppointmentEvents.Handle).Methods(http.MethodGet)

	// Отмена и оплата сохраненной картой
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/pay", payAppointment.Handle).Methods(http.MethodPost)

	// --- Сохраненные карты ---
	protected.HandleFunc("/payments/methods", listPaymentMethods.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/payments/methods/{methodId}", detachPaymentMethod.Handle).Methods(http.MethodDelete)

	// ============================================================
	// ADMIN ROUTES (X-User-Role: ADMIN)
	// ============================================================

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	// --- Каталог ---
	admin.HandleFunc("/services", listServices.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/services/{serviceId}", updateService.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/services/{serviceId}", deleteService.Handle).Methods(http.MethodDelete)

	// --- Окна доступности ---
	admin.HandleFunc("/availability", createAvailability.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/availability/{windowId}", deleteAvailability.Handle).Methods(http.MethodDelete)

	// --- Записи ---
	admin.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/complete", completeAppointments.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/appointments/{appointmentId}/refund", refundAppointment.Handle).Methods(http.MethodPost)

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
