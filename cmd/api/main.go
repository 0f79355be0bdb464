package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/auth"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/retention"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/subscription"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/events"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/notify"
	infrapdf "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/pdf"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/postgres"
	infrasdi "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi/signer"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/storage"
	httpRouter "github.com/diaghi13/fs-gymme-sub005/internal/interfaces/http"
	"github.com/diaghi13/fs-gymme-sub005/pkg/config"
	"github.com/diaghi13/fs-gymme-sub005/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("caricamento configurazione: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sdi_env", cfg.SDI.Env).
		Msg("avvio applicazione")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connessione a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	vatRateRepo := postgres.NewVatRateRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	xmlStore, err := storage.NewFileXMLStore(cfg.Storage.XMLDir)
	if err != nil {
		log.Fatal().Err(err).Msg("inizializzazione archivio XML")
	}

	// Bus eventi in-process: la vendita di un abbonamento attiva la
	// sottoscrizione del cliente senza allungare la transazione di vendita.
	bus := events.NewBus(log.Zerolog())
	provisioner := subscription.NewProvisioner(subscriptionRepo, saleRepo, log.Zerolog())
	bus.Subscribe(provisioner.Handle)

	sdiCfg := billing.SdIConfig{
		Environment:     cfg.SDI.Env,
		CertPath:        cfg.SDI.CertPath,
		CertKeyPath:     cfg.SDI.CertKeyPath,
		CertPassword:    cfg.SDI.CertPassword,
		MaxSendAttempts: cfg.SDI.MaxSendAttempts,
	}

	// Canale di trasmissione: in "dev" il SdI non viene mai contattato,
	// gli invii sono simulati e accettati subito.
	var submitter infrasdi.Submitter
	if cfg.SDI.Env == infrasdi.EnvironmentDev {
		submitter = infrasdi.NewSimulatedSubmitter(log.Zerolog())
	} else {
		endpoint := cfg.SDI.EndpointTest
		if cfg.SDI.Env == infrasdi.EnvironmentProduction {
			endpoint = cfg.SDI.EndpointProd
		}
		submitter = infrasdi.NewSOAPClient(cfg.SDI.Env, endpoint, time.Duration(cfg.SDI.TimeoutSeconds)*time.Second)
	}

	xmlBuilder := infrasdi.NewXMLBuilder()
	signerSvc := signer.NewXAdESSignatureService()
	notifier := notify.NewLogNotifier(log.Zerolog())

	saleUC := billing.NewCreateSaleUseCase(txRunner, customerRepo, vatRateRepo, saleRepo, bus, log.Zerolog())
	generateUC := billing.NewGenerateInvoiceUseCase(
		txRunner, saleRepo, companyRepo, customerRepo, invoiceRepo,
		xmlBuilder, signerSvc, xmlStore, sdiCfg, log.Zerolog(),
	)
	sendUC := billing.NewSendInvoiceUseCase(txRunner, invoiceRepo, xmlStore, submitter, notifier, sdiCfg, log.Zerolog())
	preserveUC := billing.NewPreserveInvoiceUseCase(txRunner, xmlStore, log.Zerolog())
	notificationUC := billing.NewNotificationUseCase(txRunner, notifier, log.Zerolog())
	customerUC := billing.NewCustomerUseCase(customerRepo)
	vatRateUC := billing.NewVatRateUseCase(vatRateRepo)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewPDFUseCase(invoiceRepo, saleRepo, companyRepo, customerRepo, pdfGenerator)

	sweeper := retention.NewSweeper(txRunner, invoiceRepo, xmlStore, retention.Config{
		Years:         cfg.Retention.Years,
		WarningMonths: cfg.Retention.WarningMonths,
	}, log.Zerolog())

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI in locale: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Gymme Fatture API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		SaleUC:         saleUC,
		GenerateUC:     generateUC,
		SendUC:         sendUC,
		PreserveUC:     preserveUC,
		PDFUC:          pdfUC,
		NotificationUC: notificationUC,
		CustomerUC:     customerUC,
		VatRateUC:      vatRateUC,
		Sweeper:        sweeper,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("server HTTP terminato")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("segnale di arresto ricevuto, chiusura del server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("arresto del server")
	}

	// Drena gli handler di evento ancora in corso prima di uscire.
	bus.Wait()

	log.Info().Msg("applicazione arrestata")
}
