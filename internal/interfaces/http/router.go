package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/auth"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/retention"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
)

// RouterDeps dipendenze per il router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	SaleUC         *billing.CreateSaleUseCase
	GenerateUC     *billing.GenerateInvoiceUseCase
	SendUC         *billing.SendInvoiceUseCase
	PreserveUC     *billing.PreserveInvoiceUseCase
	PDFUC          *billing.PDFUseCase
	NotificationUC *billing.NotificationUseCase
	CustomerUC     *billing.CustomerUseCase
	VatRateUC      *billing.VatRateUseCase
	Sweeper        *retention.Sweeper
	JWTSecret      string
}

// Router registra le rotte dell'API.
// Ruoli: operatore registra vendite e clienti; contabile gestisce la
// fatturazione e la conservazione; admin può tutto.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (pubblico)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Notifiche SdI: endpoint di callback del canale accreditato, fuori
	// dall'autenticazione a token utente.
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	api.Post("/sdi/notifications", notificationHandler.Apply)

	// Rotte protette (richiedono Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	anyStaff := RequireRole(entity.RoleAdmin, entity.RoleOperatore, entity.RoleContabile)
	accounting := RequireRole(entity.RoleAdmin, entity.RoleContabile)

	// Clienti (protetto)
	customers := protected.Group("/customers", anyStaff)
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)

	// Aliquote IVA (lettura per tutti gli operatori, scrittura contabile)
	vatRates := protected.Group("/vat-rates")
	vatRateHandler := NewVatRateHandler(deps.VatRateUC)
	vatRates.Get("/", anyStaff, vatRateHandler.List)
	vatRates.Post("/", accounting, vatRateHandler.Create)

	// Vendite (protetto)
	sales := protected.Group("/sales", anyStaff)
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.Get)
	sales.Post("/:id/finalize", saleHandler.Finalize)

	// Fatture elettroniche (protetto, contabilità)
	invoiceHandler := NewInvoiceHandler(deps.GenerateUC, deps.SendUC, deps.PreserveUC, deps.PDFUC)
	sales.Post("/:id/invoice", accounting, invoiceHandler.Generate)

	invoices := protected.Group("/invoices", accounting)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Post("/:id/send", invoiceHandler.Send)
	invoices.Post("/:id/resend", invoiceHandler.Resend)
	invoices.Get("/:id/status", invoiceHandler.Status)
	invoices.Get("/:id/xml", invoiceHandler.XML)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Post("/:id/preserve", invoiceHandler.Preserve)
	invoices.Get("/:id/attempts", invoiceHandler.Attempts)

	// Conformità e ritenzione (protetto, contabilità)
	compliance := protected.Group("/compliance", accounting)
	complianceHandler := NewComplianceHandler(deps.Sweeper)
	compliance.Post("/sweep", complianceHandler.Sweep)
	compliance.Get("/dashboard", complianceHandler.Dashboard)
}
