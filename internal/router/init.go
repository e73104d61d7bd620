package router

import (
	"github.com/gatekit/gatekit/internal/application"
	"github.com/gatekit/gatekit/internal/container"
	pginfra "github.com/gatekit/gatekit/internal/infrastructure/postgres"
	handlers "github.com/gatekit/gatekit/internal/interface/http"
	"github.com/gatekit/gatekit/internal/router/modules"
)

// InitModules builds the repositories, services, and handlers from the
// container singletons and registers every feature module.
// Call once during application startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(container.GetPGPool())
	tokens := pginfra.NewTokenRepository(container.GetPGPool())

	// Keep the interface nil when no publisher is configured, so the typed
	// nil pointer never reaches a method call.
	var mail application.EmailEnqueuer
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	authSvc := application.NewAuthService(users, container.GetMFA(), container.GetAudit(), logger)
	accountSvc := application.NewAccountService(
		users,
		tokens,
		container.GetMFA(),
		mail,
		container.GetAudit(),
		logger,
		cfg.ConfirmURL,
		cfg.ResetPasswordURL,
		cfg.MailSendEnabled,
	)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetSessions(), logger)
	accountHandler := handlers.NewAccountHandler(accountSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetSessions(), users))
	r.Add(modules.NewAccountModule(accountHandler))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
