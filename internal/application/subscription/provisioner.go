// Package subscription attiva gli abbonamenti originati dalle righe di
// vendita con periodo di validità. Consuma gli eventi post-commit del flusso
// vendite: la creazione della riga e quella dell'abbonamento restano
// disaccoppiate e testabili separatamente.
package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

// Provisioner crea l'abbonamento alla ricezione di SaleRowCreatedEvent.
type Provisioner struct {
	subscriptionRepo repository.SubscriptionRepository
	saleRepo         repository.SaleRepository
	log              zerolog.Logger
}

// NewProvisioner costruisce il provisioner.
func NewProvisioner(subscriptionRepo repository.SubscriptionRepository, saleRepo repository.SaleRepository, log zerolog.Logger) *Provisioner {
	return &Provisioner{subscriptionRepo: subscriptionRepo, saleRepo: saleRepo, log: log}
}

// Handle processa un evento. Idempotente per riga di vendita: un evento
// duplicato non crea un secondo abbonamento.
func (p *Provisioner) Handle(event billing.SaleRowCreatedEvent) {
	existing, _ := p.subscriptionRepo.GetBySaleRow(event.SaleRowID)
	if existing != nil {
		p.log.Debug().Str("sale_row_id", event.SaleRowID).Msg("abbonamento già presente, evento ignorato")
		return
	}

	now := time.Now()
	sub := &entity.Subscription{
		ID:         uuid.New().String(),
		CompanyID:  event.CompanyID,
		CustomerID: event.CustomerID,
		SaleRowID:  event.SaleRowID,
		Name:       event.Description,
		StartDate:  event.ServiceStart,
		EndDate:    event.ServiceEnd,
		Status:     entity.SubscriptionStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.subscriptionRepo.Create(sub); err != nil {
		p.log.Error().Str("sale_row_id", event.SaleRowID).Err(err).Msg("creazione abbonamento fallita")
		return
	}
	if err := p.saleRepo.SetRowSubscription(event.SaleRowID, sub.ID); err != nil {
		p.log.Error().Str("sale_row_id", event.SaleRowID).Err(err).Msg("collegamento riga-abbonamento fallito")
	}

	p.log.Info().
		Str("subscription_id", sub.ID).
		Str("customer_id", sub.CustomerID).
		Time("start", sub.StartDate).
		Time("end", sub.EndDate).
		Msg("abbonamento attivato da vendita")
}
