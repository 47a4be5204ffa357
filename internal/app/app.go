package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Indieguru/indieguru-website-sub000/internal/app/server"
	"github.com/Indieguru/indieguru-website-sub000/internal/config"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http"
	"github.com/Indieguru/indieguru-website-sub000/internal/notify"
	"github.com/Indieguru/indieguru-website-sub000/internal/service"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/auth"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/availability"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/blog"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/booking"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/cohort"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/course"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/moderation"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/refund"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/session"
	"github.com/Indieguru/indieguru-website-sub000/internal/storage/elastic"
	"github.com/Indieguru/indieguru-website-sub000/internal/storage/minio_storage"
	"github.com/Indieguru/indieguru-website-sub000/internal/storage/payment"
	"github.com/Indieguru/indieguru-website-sub000/internal/storage/postgres"
	"github.com/Indieguru/indieguru-website-sub000/internal/storage/redisstore"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	ctx := context.Background()

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	migrator, err := NewMigrator(pg.Pool, postgres.Migrations)
	if err != nil {
		log.FatalErr("error creating migrator", err)
	}
	if err := migrator.Run(ctx); err != nil {
		log.FatalErr("error applying migrations", err)
	}
	if err := migrator.Close(); err != nil {
		log.ErrorErr("error closing migrator", err)
	}

	otpStore, err := redisstore.NewOTPRedis(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.FatalErr("error connecting to redis", err)
	}

	minioStorage, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Buckets)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	attachmentsBucket := cfg.Minio.Buckets["attachments"]
	attachments, err := minio_storage.NewAttachmentStorage(minioStorage, attachmentsBucket.Name, attachmentsBucket.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing attachments bucket", err)
	}

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	courseSearch := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
	if err := courseSearch.CreateIndexIfNotExist(ctx); err != nil {
		log.FatalErr("error preparing course search index", err)
	}

	userRepo := postgres.NewUserPostgres(pg.Pool)
	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	expertRepo := postgres.NewExpertPostgres(pg.Pool)
	sessionRepo := postgres.NewSessionPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	cohortRepo := postgres.NewCohortPostgres(pg.Pool)
	blogRepo := postgres.NewBlogPostgres(pg.Pool)

	gateway := payment.NewMidtransGateway(cfg.Payment.ServerKey, cfg.Payment.Production)
	linker := booking.NewRoomLinker(cfg.Booking.MeetingBaseURL)
	notifier := notify.NewLogNotifier(log)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "indieguru", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := auth.NewAuthService(log, jwtManager, userRepo, expertRepo, tokenRepo, otpStore, notifier, cfg.OTP.TTL, cfg.OTP.MaxAttempts)

	u := service.Collection{
		Auth:         authService,
		Availability: availability.NewService(log, expertRepo, sessionRepo),
		Booking:      booking.NewService(log, sessionRepo, userRepo, gateway, linker, cfg.Booking.HoldTTL),
		Session:      session.NewService(log, sessionRepo, expertRepo, attachments),
		Refund:       refund.NewService(log, sessionRepo, attachments),
		Moderation:   moderation.NewService(log, expertRepo, courseRepo, cohortRepo, blogRepo, courseSearch),
		Course:       course.NewService(log, courseRepo, expertRepo, courseSearch),
		Cohort:       cohort.NewService(log, cohortRepo, expertRepo),
		Blog:         blog.NewService(log, blogRepo, expertRepo, attachments),
	}

	r := http.InitRoutes(log, u, cfg.HTTPServer.CORSOrigins)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	err = srv.Shutdown()
	if err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
