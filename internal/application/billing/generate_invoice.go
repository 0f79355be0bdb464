package billing

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	infrasdi "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi"
	"github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi/signer"
	pkgsdi "github.com/diaghi13/fs-gymme-sub005/pkg/sdi"
)

// SdIConfig configurazione del canale SdI per i casi d'uso di fatturazione.
type SdIConfig struct {
	Environment     string // dev, test, prod
	CertPath        string // certificato di firma (.p12 o PEM); vuoto = XML non firmato
	CertKeyPath     string
	CertPassword    string
	MaxSendAttempts int
}

// GenerateInvoiceUseCase trasforma una vendita finalizzata nella sua fattura
// elettronica: XML FatturaPA, firma opzionale, persistenza di file e riga in
// un'unica transazione con stato GENERATED.
type GenerateInvoiceUseCase struct {
	txRunner     BillingTxRunner
	saleRepo     repository.SaleRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	xmlBuilder   *infrasdi.XMLBuilder
	xmlSigner    pkgsdi.Signer
	xmlStore     XMLStore
	cfg          SdIConfig
	log          zerolog.Logger
}

// NewGenerateInvoiceUseCase costruisce il caso d'uso.
func NewGenerateInvoiceUseCase(
	txRunner BillingTxRunner,
	saleRepo repository.SaleRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	xmlBuilder *infrasdi.XMLBuilder,
	xmlSigner pkgsdi.Signer,
	xmlStore XMLStore,
	cfg SdIConfig,
	log zerolog.Logger,
) *GenerateInvoiceUseCase {
	return &GenerateInvoiceUseCase{
		txRunner:     txRunner,
		saleRepo:     saleRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		xmlBuilder:   xmlBuilder,
		xmlSigner:    xmlSigner,
		xmlStore:     xmlStore,
		cfg:          cfg,
		log:          log,
	}
}

// Generate genera la fattura (o nota di credito) della vendita. La scrittura
// del file XML e l'inserimento della riga avvengono nella stessa transazione:
// in caso di errore il file viene rimosso e la riga non esiste.
func (uc *GenerateInvoiceUseCase) Generate(ctx context.Context, companyID, userID, saleID string, in dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	docType := in.DocumentType
	if docType == "" {
		docType = entity.DocumentTypeInvoice
	}
	if docType != entity.DocumentTypeInvoice && docType != entity.DocumentTypeCreditNote {
		return nil, domain.ErrValidation
	}

	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil || sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if !sale.CanInvoice() {
		return nil, fmt.Errorf("%w: la vendita è in stato %s", domain.ErrValidation, sale.Status)
	}
	if !sale.Reconcile() {
		return nil, fmt.Errorf("%w: i totali della vendita non quadrano con le righe", domain.ErrValidation)
	}

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, domain.ErrNotFound
	}
	if err := pkgsdi.ValidatePartitaIVA(company.PartitaIVA); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	customer, err := uc.customerRepo.GetByID(sale.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CodiceFiscale == "" && customer.PartitaIVA == "" {
		return nil, fmt.Errorf("%w: il cliente è privo di codice fiscale e partita IVA", domain.ErrValidation)
	}

	// Unicità: al più una fattura attiva per vendita e tipo documento.
	// Una fattura scartata dal SdI può essere sostituita: la nuova
	// generazione, con progressivo proprio, diventa la fattura attiva e
	// la scartata resta in archivio come storia.
	existing, err := uc.invoiceRepo.GetActiveBySale(saleID, docType)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil && !existing.CanBeSuperseded() {
		return nil, domain.ErrDuplicateInvoice
	}

	// Una nota di credito presuppone la fattura originale già accettata.
	if docType == entity.DocumentTypeCreditNote {
		original, err := uc.invoiceRepo.GetActiveBySale(saleID, entity.DocumentTypeInvoice)
		if err != nil || original == nil {
			return nil, fmt.Errorf("%w: nessuna fattura originale per la vendita", domain.ErrConflict)
		}
		if original.Status != entity.InvoiceStatusAccepted {
			return nil, fmt.Errorf("%w: la fattura originale è in stato %s, non ACCEPTED", domain.ErrConflict, original.Status)
		}
	}

	cert, err := uc.loadSigningCert()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &entity.ElectronicInvoice{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		SaleID:          saleID,
		DocumentType:    docType,
		TransmissionID:  uuid.New().String(),
		Status:          entity.InvoiceStatusGenerated,
		StatusUpdatedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = uc.txRunner.RunGenerate(ctx, func(saleRepo repository.SaleRepository, invoiceRepo repository.InvoiceRepository) error {
		progressivo, err := invoiceRepo.NextProgressivo(companyID)
		if err != nil {
			return err
		}
		inv.Progressivo = progressivo

		xmlData, err := uc.xmlBuilder.Build(&infrasdi.BuildContext{
			Company:      company,
			Customer:     customer,
			Sale:         sale,
			DocumentType: docType,
			Progressivo:  progressivo,
		})
		if err != nil {
			return fmt.Errorf("generazione XML FatturaPA: %w", err)
		}

		if cert != nil {
			xmlData, err = uc.xmlSigner.Sign(xmlData, *cert)
			if err != nil {
				return fmt.Errorf("firma XAdES: %w", err)
			}
		}

		// Scrittura idempotente: il nome file dipende solo da società e
		// progressivo, rigenerare sovrascrive lo stesso percorso.
		inv.XMLPath = infrasdi.FileName(company.PartitaIVA, progressivo)
		if err := uc.xmlStore.Write(inv.XMLPath, xmlData); err != nil {
			return fmt.Errorf("scrittura XML: %w", err)
		}

		if err := invoiceRepo.Create(inv); err != nil {
			// la riga non è stata scritta: il file orfano va rimosso
			_ = uc.xmlStore.Remove(inv.XMLPath)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("sale_id", saleID).
		Str("document_type", docType).
		Str("progressivo", inv.Progressivo).
		Msg("fattura elettronica generata")

	return toInvoiceResponse(inv), nil
}

// GetInvoice restituisce la fattura, con controllo di tenant.
func (uc *GenerateInvoiceUseCase) GetInvoice(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toInvoiceResponse(inv), nil
}

// GetInvoiceXML restituisce il contenuto XML archiviato, così com'è.
func (uc *GenerateInvoiceUseCase) GetInvoiceXML(ctx context.Context, companyID, id string) (fileName string, data []byte, err error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil || inv == nil {
		return "", nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return "", nil, domain.ErrForbidden
	}
	data, err = uc.xmlStore.Read(inv.XMLPath)
	if err != nil {
		return "", nil, err
	}
	return inv.XMLPath, data, nil
}

// ListInvoices restituisce le fatture della palestra, filtrabili per stato.
func (uc *GenerateInvoiceUseCase) ListInvoices(ctx context.Context, companyID, status string, page dto.PageRequest) ([]*dto.InvoiceResponse, error) {
	page.DefaultPage()
	invoices, err := uc.invoiceRepo.ListByCompany(companyID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return out, nil
}

// ListAttempts restituisce il registro tentativi della fattura.
func (uc *GenerateInvoiceUseCase) ListAttempts(ctx context.Context, companyID, id string) ([]dto.SendAttemptResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	attempts, err := uc.invoiceRepo.ListAttempts(id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SendAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, dto.SendAttemptResponse{
			AttemptNumber: a.AttemptNumber,
			Outcome:       a.Outcome,
			Errors:        a.Errors,
			ExternalID:    a.ExternalID,
			UserID:        a.UserID,
			CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// loadSigningCert carica il certificato di firma se configurato.
// Nil senza errore = XML non firmato (ammesso sui canali accreditati).
func (uc *GenerateInvoiceUseCase) loadSigningCert() (*tls.Certificate, error) {
	if uc.cfg.CertPath == "" {
		return nil, nil
	}
	var (
		cert tls.Certificate
		err  error
	)
	lower := strings.ToLower(uc.cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		cert, err = signer.LoadFromP12(uc.cfg.CertPath, uc.cfg.CertPassword)
	} else {
		cert, err = signer.LoadFromPEM(uc.cfg.CertPath, uc.cfg.CertKeyPath)
	}
	if err != nil {
		return nil, fmt.Errorf("caricamento certificato di firma: %w", err)
	}
	return &cert, nil
}

func toInvoiceResponse(inv *entity.ElectronicInvoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              inv.ID,
		SaleID:          inv.SaleID,
		DocumentType:    inv.DocumentType,
		Progressivo:     inv.Progressivo,
		Status:          inv.Status,
		StatusMessage:   inv.StatusMessage,
		StatusUpdatedAt: inv.StatusUpdatedAt.Format(time.RFC3339),
		TransmissionID:  inv.TransmissionID,
		ExternalID:      inv.ExternalID,
		SendAttempts:    inv.SendAttempts,
		PreservationRef: inv.PreservationRef,
		XMLPath:         inv.XMLPath,
	}
	if inv.LastAttemptAt != nil {
		resp.LastAttemptAt = inv.LastAttemptAt.Format(time.RFC3339)
	}
	if inv.PreservedAt != nil {
		resp.PreservedAt = inv.PreservedAt.Format(time.RFC3339)
	}
	return resp
}
