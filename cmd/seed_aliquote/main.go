package main

import (
	"context"
	"errors"
	"time"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/postgres"
	"github.com/diaghi13/fs-gymme-sub005/pkg/config"
	"github.com/diaghi13/fs-gymme-sub005/pkg/logger"
)

// Seed del listino aliquote IVA. Idempotente: i codici già presenti
// vengono saltati, quindi si può rilanciare senza effetti collaterali.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("caricamento configurazione: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connessione a PostgreSQL")
	}
	defer pool.Close()

	vatRateUC := billing.NewVatRateUseCase(postgres.NewVatRateRepository(pool))

	seed := []dto.CreateVatRateRequest{
		{Code: "IVA22", Description: "Aliquota ordinaria", Percentage: "22", Visible: true},
		{Code: "IVA10", Description: "Aliquota ridotta", Percentage: "10", Visible: true},
		{Code: "IVA5", Description: "Aliquota ridotta 5%", Percentage: "5", Visible: true},
		{Code: "IVA4", Description: "Aliquota minima", Percentage: "4", Visible: true},
		{Code: "ESENTE", Description: "Esente art. 10 DPR 633/72", Percentage: "0", Natura: "N4", Visible: true},
		{Code: "FUORICAMPO", Description: "Non soggetta ad IVA", Percentage: "0", Natura: "N2.2", Visible: false},
	}

	created, skipped := 0, 0
	for _, req := range seed {
		if _, err := vatRateUC.Create(ctx, req); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("code", req.Code).Msg("seed aliquota")
		}
		created++
	}

	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Msg("seed aliquote IVA completato")
}
