package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/admission/config"
	"github.com/yoockh/admission/internal/api/handlers"
	"github.com/yoockh/admission/internal/api/middleware"
	"github.com/yoockh/admission/internal/api/routes"
	"github.com/yoockh/admission/internal/cache"
	"github.com/yoockh/admission/internal/chatbot"
	"github.com/yoockh/admission/internal/logger"
	"github.com/yoockh/admission/internal/providers/llm"
	"github.com/yoockh/admission/internal/providers/recaptcha"
	"github.com/yoockh/admission/internal/providers/stt"
	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
	pgrepo "github.com/yoockh/admission/internal/repositories/postgres"
	"github.com/yoockh/admission/internal/seed"
	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/sessions"
	"github.com/yoockh/admission/internal/storage"
	"github.com/yoockh/admission/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	app := config.LoadApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init MongoDB
	if err := config.InitMongo(ctx); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	defer func() { _ = config.MongoClient.Disconnect(context.Background()) }()
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index error")
	}
	log.Info("MongoDB connected")

	// Init Redis (optional)
	if err := config.InitRedis(ctx); err != nil {
		if !errors.Is(err, config.ErrRedisDisabled) {
			log.WithError(err).Warn("Redis unavailable, using in-process stores")
		}
	} else {
		defer config.RedisClient.Close()
		log.Info("Redis connected")
	}

	// Init PostgreSQL (optional)
	var chatLogs pgrepo.ChatLogRepo
	if err := config.InitPostgres(); err != nil {
		if !errors.Is(err, config.ErrPostgresDisabled) {
			log.WithError(err).Warn("PostgreSQL unavailable, chat log disabled")
		}
	} else {
		chatLogs = pgrepo.NewChatLogRepo(config.PostgresDB)
		log.Info("PostgreSQL connected")
	}

	db := config.MongoDB()
	students := mongorepo.NewStudentRepo(db)
	universities := mongorepo.NewUniversityRepo(db)
	campuses := mongorepo.NewCampusRepo(db)
	departments := mongorepo.NewDepartmentRepo(db)
	programs := mongorepo.NewProgramRepo(db)
	faculty := mongorepo.NewFacultyRepo(db)
	admins := mongorepo.NewAdminRepo(db)
	subadmins := mongorepo.NewSubAdminRepo(db)

	oracle := newOracle(ctx, app, log)
	defer oracle.Close()

	seedData, err := seed.Load(app.SeedFile)
	if err != nil {
		log.WithError(err).Fatal("seed load error")
	}

	var (
		refCache cache.Cache
		store    sessions.Store
	)
	if config.RedisClient != nil {
		refCache = cache.NewRedisCache(config.RedisClient, "admission:")
		store = sessions.NewRedisStore(config.RedisClient, "admission:", app.SessionTTL)
	} else {
		refCache = cache.NewMemoryCache()
		mem := sessions.NewMemoryStore(app.SessionTTL)
		go mem.RunSweeper(ctx, 5*time.Minute)
		store = mem
	}

	reference := services.NewReferenceService(
		mongorepo.NewQuestionRepo(db),
		mongorepo.NewMaterialRepo(db),
		mongorepo.NewFileRepo(db),
		refCache,
		seedData.Material,
		log,
	)
	if err := reference.Seed(ctx, seedData); err != nil {
		log.WithError(err).Warn("seeding reference data failed")
	}

	engine := chatbot.NewEngine(oracle, reference, reference, students)

	var chatOpts []services.ChatOption
	if config.RedisClient != nil && chatLogs != nil {
		pool := &workers.ChatLogWorkerPool{
			Redis:      config.RedisClient,
			Logs:       chatLogs,
			NumWorkers: app.ChatLogWorkers,
			Logger:     log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("chat log workers")
		}
		chatOpts = append(chatOpts, services.WithTurnRecorder(workers.NewStreamRecorder(config.RedisClient)))
	}
	chat := services.NewChatService(engine, store, chatLogs, log, chatOpts...)

	tokens := services.NewTokenIssuer(app.JWTSecret, app.JWTTTL)
	if app.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set; logins will fail")
	}

	uploader, closeUploader := newUploader(ctx, app, log)
	defer closeUploader()

	universitySvc := services.NewUniversityService(universities, tokens)
	adminSvc := services.NewAdminService(admins, subadmins, tokens, log)
	if err := adminSvc.Bootstrap(ctx, app.AdminEmail, app.AdminPassword); err != nil {
		log.WithError(err).Warn("admin bootstrap failed")
	}
	dashboard := services.NewDashboardService(services.DashboardCounters{
		Universities: universities,
		SubAdmins:    subadmins,
		Students:     students,
		Campuses:     campuses,
		Departments:  departments,
		Faculty:      faculty,
		Programs:     programs,
	})

	var speech stt.Provider
	if app.SpeechEnabled {
		gs, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.WithError(err).Warn("speech client unavailable, voice input disabled")
		} else {
			defer gs.Close()
			speech = gs
		}
	}

	var verifier recaptcha.Verifier
	if app.RecaptchaSecret != "" {
		verifier = recaptcha.New(app.RecaptchaSecret, "")
	}

	deps := routes.Deps{
		Tokens:       tokens,
		Chat:         handlers.NewChatHandler(chat, speech, log, originChecker(app.CORSOrigins)),
		Students:     handlers.NewStudentHandler(services.NewStudentService(students, uploader, tokens), services.NewRecommendationService(students, reference, oracle, log)),
		Universities: handlers.NewUniversityHandler(universitySvc),
		Campuses:     handlers.NewCatalogHandler(services.NewCatalogService(services.CampusKind, campuses, universitySvc), "Campus", "campuses"),
		Departments:  handlers.NewCatalogHandler(services.NewCatalogService(services.DepartmentKind, departments, universitySvc), "Department", "departments"),
		Programs:     handlers.NewCatalogHandler(services.NewCatalogService(services.ProgramKind, programs, universitySvc), "Program", "programs"),
		Faculty:      handlers.NewCatalogHandler(services.NewCatalogService(services.FacultyKind, faculty, universitySvc), "Faculty", "faculty"),
		Admins:       handlers.NewAdminHandler(adminSvc, dashboard),
		Chatbot:      handlers.NewChatbotAdminHandler(reference),
		Recaptcha:    handlers.NewRecaptchaHandler(verifier),
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(app.CORSOrigins))
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + app.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", app.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newOracle prefers Vertex AI, then the Gemini REST API, else a provider that always reports not configured.
func newOracle(ctx context.Context, app config.App, log *logrus.Logger) llm.Provider {
	if app.VertexProject != "" {
		v, err := llm.NewVertexGemini(ctx, app.VertexProject, app.VertexLocation, app.GeminiModel)
		if err == nil {
			log.WithField("project", app.VertexProject).Info("oracle: vertex ai")
			return llm.Deadline{Provider: v, Timeout: app.OracleTimeout}
		}
		log.WithError(err).Warn("vertex ai unavailable")
	}
	if app.GeminiAPIKey != "" {
		opts := []llm.GeminiOption{llm.WithTimeout(app.OracleTimeout)}
		if app.GeminiModel != "" {
			opts = append(opts, llm.WithModel(app.GeminiModel))
		}
		if app.GeminiBaseURL != "" {
			opts = append(opts, llm.WithBaseURL(app.GeminiBaseURL))
		}
		log.Info("oracle: gemini api")
		return llm.NewGemini(app.GeminiAPIKey, opts...)
	}
	log.Warn("no oracle configured; chat replies will report it")
	return llm.Disabled{}
}

func newUploader(ctx context.Context, app config.App, log *logrus.Logger) (storage.Uploader, func()) {
	if app.GCSBucket != "" {
		g, err := storage.NewGCSUploader(ctx, app.GCSBucket, app.GCSPrefix)
		if err == nil {
			return g, func() { _ = g.Close() }
		}
		log.WithError(err).Warn("gcs unavailable, storing uploads on disk")
	}
	l, err := storage.NewLocalUploader(app.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("upload dir")
	}
	return l, func() {}
}

// originChecker restricts websocket upgrades to the CORS origins when any are configured.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allow := map[string]struct{}{}
	for _, o := range origins {
		allow[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		if o == "" {
			return true
		}
		_, ok := allow[o]
		return ok
	}
}
