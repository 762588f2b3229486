package router

import (
	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/internal/container"
	pginfra "github.com/oksasatya/account-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/account-service/internal/interface/http"
	"github.com/oksasatya/account-service/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup after the container singletons
// are set.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	accounts := pginfra.NewAccountRepository(container.GetPGPool())
	tokens := pginfra.NewVerificationTokenRepository(container.GetPGPool())

	// Keep the notifier a typed nil-free interface so the service's nil check
	// stays meaningful when RabbitMQ is not configured.
	var pub application.EmailPublisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	verifications := application.NewVerificationService(tokens, cfg.VerificationTTL, container.GetLogger())
	service := application.NewService(
		accounts,
		verifications,
		container.GetJWT(),
		container.GetRedis(),
		pub,
		container.GetLogger(),
		cfg.AppName,
		cfg.VerifyEmailURL,
		cfg.MailSendEnabled,
	)

	handler := handlers.NewAccountHandler(service, container.GetLogger())
	r.Add(modules.NewAccountModule(handler, container.GetJWT()))
}
