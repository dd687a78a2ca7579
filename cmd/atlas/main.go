package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
	"github.com/voteagora/op-atlas-sub006/pkg/attestation"
	"github.com/voteagora/op-atlas-sub006/pkg/audit"
	"github.com/voteagora/op-atlas-sub006/pkg/config"
	"github.com/voteagora/op-atlas-sub006/pkg/datastore"
	"github.com/voteagora/op-atlas-sub006/pkg/effectguard"
	"github.com/voteagora/op-atlas-sub006/pkg/execctx"
	"github.com/voteagora/op-atlas-sub006/pkg/impersonate"
	"github.com/voteagora/op-atlas-sub006/pkg/metrics"
	"github.com/voteagora/op-atlas-sub006/pkg/notification"
	"github.com/voteagora/op-atlas-sub006/pkg/profile"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
	"github.com/voteagora/op-atlas-sub006/pkg/storage"
	"github.com/voteagora/op-atlas-sub006/pkg/tokengenerator"
	"github.com/voteagora/op-atlas-sub006/pkg/verification"
)

type Config struct {
	AppConfig           app.AppConfig
	DbConfig            config.DbConfig
	JwtConfig           config.JwtConfig
	ImpersonationConfig config.ImpersonationConfig
	SMTPConfig          config.SMTPConfig
	EffectsConfig       config.EffectsConfig
}

func (c Config) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     c.DbConfig.Host,
		Port:     c.DbConfig.Port,
		Database: c.DbConfig.Database,
		User:     c.DbConfig.User,
		Password: c.DbConfig.Password,
	}
}

func main() {

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	server.R.Handle("/metrics", promhttp.Handler())

	dbConfig := cfg.toDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	store := datastore.New(pool)

	registry := adminregistry.NewRegistry(cfg.ImpersonationConfig.Enabled, cfg.ImpersonationConfig.Admins())
	if !registry.IsEnabled() {
		slog.Info("Impersonation feature is disabled")
	}

	sink := audit.NewMultiSink(audit.NewLogSink(), audit.NewPostgresSink(pool))
	appMetrics := metrics.New()

	guard := effectguard.New(registry, sink, effectguard.WithMetrics(appMetrics))

	// jwt service
	generator := tokengenerator.NewJwtTokenGenerator(
		cfg.JwtConfig.JwtSecret,
		cfg.JwtConfig.Issuer,
		cfg.JwtConfig.Audience,
	)
	jwtService := tokengenerator.NewJwtService(
		generator,
		tokengenerator.WithCookieHttpOnly(cfg.JwtConfig.CookieHttpOnly),
		tokengenerator.WithCookieSecure(cfg.JwtConfig.CookieSecure),
	)

	// external effect collaborators
	var smtpConfig notification.SMTPConfig
	copier.Copy(&smtpConfig, &cfg.SMTPConfig)
	notifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		slog.Error("Failed creating email notifier", "err", err)
		os.Exit(-1)
	}

	uploader := storage.NewUploader(cfg.EffectsConfig.StorageBaseURL, cfg.EffectsConfig.StorageBucket)
	issuer := attestation.NewIssuer(cfg.EffectsConfig.AttestationEndpoint, cfg.EffectsConfig.AttestationAPIKey)
	verifier := verification.NewClient(cfg.EffectsConfig.VerificationBaseURL, cfg.EffectsConfig.VerificationAPIKey)

	factory := execctx.NewFactory(registry, store)

	impersonateService := impersonate.NewService(
		registry,
		store.Accounts(),
		sink,
		impersonate.WithMetrics(appMetrics),
	)
	impersonateHandle := impersonate.NewHandle(impersonateService, jwtService)

	profileService := profile.NewService(factory, guard, uploader, issuer, verifier, notifier)
	profileHandle := profile.NewHandle(profileService)

	resolver := session.NewResolver(registry)
	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtConfig.JwtSecret), nil)

	server.R.Group(func(r chi.Router) {
		r.Use(session.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(session.Middleware(resolver))

		impersonateHandle.RegisterRoutes(r)
		profileHandle.RegisterRoutes(r)
	})

	server.Run()

}
