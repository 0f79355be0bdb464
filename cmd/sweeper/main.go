package main

import (
	"context"
	"flag"
	"time"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/retention"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/postgres"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/storage"
	"github.com/diaghi13/fs-gymme-sub005/pkg/config"
	"github.com/diaghi13/fs-gymme-sub005/pkg/logger"
)

// Sweep di ritenzione da cron: anonimizza i dati personali delle fatture
// oltre la finestra legale di conservazione, palestra per palestra.
// Con -company si limita a una sola palestra.
func main() {
	companyID := flag.String("company", "", "limita lo sweep a una sola palestra")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("caricamento configurazione: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connessione a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	xmlStore, err := storage.NewFileXMLStore(cfg.Storage.XMLDir)
	if err != nil {
		log.Fatal().Err(err).Msg("apertura archivio XML")
	}

	sweeper := retention.NewSweeper(txRunner, invoiceRepo, xmlStore, retention.Config{
		Years:         cfg.Retention.Years,
		WarningMonths: cfg.Retention.WarningMonths,
	}, log.Zerolog())

	var targets []string
	if *companyID != "" {
		targets = []string{*companyID}
	} else {
		const pageSize = 100
		for offset := 0; ; offset += pageSize {
			companies, err := companyRepo.List(pageSize, offset)
			if err != nil {
				log.Fatal().Err(err).Msg("elenco palestre")
			}
			for _, c := range companies {
				targets = append(targets, c.ID)
			}
			if len(companies) < pageSize {
				break
			}
		}
	}

	totalFound, totalAnonymized, totalFailed := 0, 0, 0
	for _, id := range targets {
		result, err := sweeper.Run(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("company_id", id).Msg("sweep fallito")
			continue
		}
		totalFound += result.Found
		totalAnonymized += result.Anonymized
		totalFailed += result.Failed
		for _, failure := range result.Failures {
			log.Warn().Str("company_id", id).Str("detail", failure).Msg("anonimizzazione non riuscita")
		}
	}

	log.Info().
		Int("companies", len(targets)).
		Int("found", totalFound).
		Int("anonymized", totalAnonymized).
		Int("failed", totalFailed).
		Msg("sweep di ritenzione completato")
}
