package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	infrasdi "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi"
)

func TestGenerate_FatturaDaVenditaFinalizzata(t *testing.T) {
	env := newGenerateTestEnv()

	resp, err := env.useCase().Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})

	require.NoError(t, err)
	assert.Equal(t, entity.DocumentTypeInvoice, resp.DocumentType)
	assert.Equal(t, entity.InvoiceStatusGenerated, resp.Status)
	assert.Equal(t, "00001", resp.Progressivo)
	assert.Equal(t, "IT00743110157_00001.xml", resp.XMLPath)
	assert.NotEmpty(t, resp.TransmissionID)

	// il file archiviato è un FatturaPA con i dati della vendita
	data, err := env.store.Read(resp.XMLPath)
	require.NoError(t, err)
	xml := string(data)
	assert.Contains(t, xml, "FatturaElettronica")
	assert.Contains(t, xml, "00743110157")
	assert.Contains(t, xml, "Abbonamento mensile")
	assert.Contains(t, xml, "TD01")
}

func TestGenerate_SecondaFatturaRifiutata(t *testing.T) {
	env := newGenerateTestEnv()
	uc := env.useCase()

	_, err := uc.Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})
	require.NoError(t, err)

	_, err = uc.Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoice, "al più una fattura attiva per vendita")
}

func TestGenerate_LoScartoConsenteUnDocumentoCorretto(t *testing.T) {
	env := newGenerateTestEnv()
	uc := env.useCase()

	first, err := uc.Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})
	require.NoError(t, err)

	// il SdI scarta il documento: la correzione richiede una nuova
	// generazione, non il reinvio degli stessi byte
	rejected := env.invoices.invoices[first.ID]
	rejected.Status = entity.InvoiceStatusRejected
	rejected.CreatedAt = time.Now().Add(-time.Hour)

	second, err := uc.Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "00002", second.Progressivo, "il documento corretto ha un progressivo proprio")
	assert.Equal(t, entity.InvoiceStatusGenerated, second.Status)

	// la scartata resta in archivio come storia, la nuova è quella attiva
	active, err := env.invoices.GetActiveBySale("sale-001", entity.DocumentTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, entity.InvoiceStatusRejected, env.invoices.invoices[first.ID].Status)

	// con la sostituta attiva una terza generazione è di nuovo un duplicato
	_, err = uc.Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoice)
}

func TestGenerate_VenditaInBozza(t *testing.T) {
	env := newGenerateTestEnv()
	env.sales.sales["sale-001"].Status = entity.SaleStatusDraft

	_, err := env.useCase().Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, env.store.files, "nessun file deve essere scritto")
}

func TestGenerate_TotaliNonQuadrati(t *testing.T) {
	env := newGenerateTestEnv()
	env.sales.sales["sale-001"].TotalGross = decimal.NewFromFloat(999.99)

	_, err := env.useCase().Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "non quadrano")
}

func TestGenerate_VenditaDiAltraSocieta(t *testing.T) {
	env := newGenerateTestEnv()

	_, err := env.useCase().Generate(context.Background(), "company-999", "user-001", "sale-001", dto.GenerateInvoiceRequest{})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGenerate_TipoDocumentoSconosciuto(t *testing.T) {
	env := newGenerateTestEnv()

	_, err := env.useCase().Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{DocumentType: "TD99"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerate_NotaDiCreditoSenzaFatturaOriginale(t *testing.T) {
	env := newGenerateTestEnv()

	_, err := env.useCase().Generate(context.Background(), "company-001", "user-001", "sale-001",
		dto.GenerateInvoiceRequest{DocumentType: entity.DocumentTypeCreditNote})

	assert.ErrorIs(t, err, domain.ErrConflict, "la nota di credito presuppone la fattura originale")
}

func TestGenerate_NotaDiCreditoRichiedeOriginaleAccettata(t *testing.T) {
	env := newGenerateTestEnv()
	uc := env.useCase()

	original, err := uc.Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})
	require.NoError(t, err)

	// originale solo trasmessa: la nota di credito deve attendere l'esito
	env.invoices.invoices[original.ID].Status = entity.InvoiceStatusSent
	_, err = uc.Generate(context.Background(), "company-001", "user-001", "sale-001",
		dto.GenerateInvoiceRequest{DocumentType: entity.DocumentTypeCreditNote})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// originale accettata dal SdI: la nota di credito passa
	env.invoices.invoices[original.ID].Status = entity.InvoiceStatusAccepted
	creditNote, err := uc.Generate(context.Background(), "company-001", "user-001", "sale-001",
		dto.GenerateInvoiceRequest{DocumentType: entity.DocumentTypeCreditNote})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentTypeCreditNote, creditNote.DocumentType)
	assert.Equal(t, "00002", creditNote.Progressivo, "il progressivo è condiviso tra TD01 e TD04")

	data, err := env.store.Read(creditNote.XMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TD04")
}

func TestGenerate_RollbackRimuoveIlFile(t *testing.T) {
	env := newGenerateTestEnv()
	env.invoices.failCreate = true

	_, err := env.useCase().Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})

	require.Error(t, err)
	assert.Empty(t, env.store.files, "il file orfano va rimosso quando la riga non viene scritta")
}

func TestListInvoices_FiltroPerStato(t *testing.T) {
	env := newGenerateTestEnv()
	uc := env.useCase()

	resp, err := uc.Generate(context.Background(), "company-001", "user-001", "sale-001", dto.GenerateInvoiceRequest{})
	require.NoError(t, err)
	env.invoices.invoices[resp.ID].Status = entity.InvoiceStatusSent

	sent, err := uc.ListInvoices(context.Background(), "company-001", entity.InvoiceStatusSent, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	generated, err := uc.ListInvoices(context.Background(), "company-001", entity.InvoiceStatusGenerated, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, generated)
}

// ── fake e ambiente di test ─────────────────────────────────────────────

type generateTestEnv struct {
	sales    *fakeSaleRepo
	invoices *fakeInvoiceRepo
	store    *fakeXMLStore
}

func newGenerateTestEnv() *generateTestEnv {
	serviceStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	serviceEnd := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	sale := &entity.Sale{
		ID:         "sale-001",
		CompanyID:  "company-001",
		CustomerID: "customer-001",
		Status:     entity.SaleStatusSaved,
		Date:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Currency:   "EUR",
		TotalNet:   decimal.NewFromFloat(40.98),
		TotalVat:   decimal.NewFromFloat(9.02),
		TotalGross: decimal.NewFromFloat(50.00),
		Rows: []entity.SaleRow{
			{
				ID:            "row-001",
				SaleID:        "sale-001",
				Description:   "Abbonamento mensile sala pesi",
				Quantity:      decimal.NewFromInt(1),
				UnitPriceNet:  decimal.NewFromFloat(40.98),
				VatRateID:     "vat-22",
				VatPercentage: decimal.NewFromInt(22),
				TotalNet:      decimal.NewFromFloat(40.98),
				VatAmount:     decimal.NewFromFloat(9.02),
				TotalGross:    decimal.NewFromFloat(50.00),
				ServiceStart:  &serviceStart,
				ServiceEnd:    &serviceEnd,
			},
		},
		Payments: []entity.Payment{
			{ID: "pay-001", SaleID: "sale-001", MethodCode: "MP08", DueDate: serviceStart, Amount: decimal.NewFromFloat(50.00)},
		},
	}

	return &generateTestEnv{
		sales:    &fakeSaleRepo{sales: map[string]*entity.Sale{"sale-001": sale}},
		invoices: newFakeInvoiceRepo(),
		store:    &fakeXMLStore{files: map[string][]byte{}},
	}
}

func (e *generateTestEnv) useCase() *GenerateInvoiceUseCase {
	company := &fakeCompanyRepo{company: &entity.Company{
		ID:            "company-001",
		Name:          "Palestra Olimpia SSD",
		PartitaIVA:    "00743110157",
		RegimeFiscale: "RF01",
		Address:       "Via Roma 1",
		CAP:           "20100",
		City:          "Milano",
		Province:      "MI",
		Country:       "IT",
	}}
	customer := &fakeCustomerRepo{customer: &entity.Customer{
		ID:            "customer-001",
		CompanyID:     "company-001",
		Name:          "Mario Rossi",
		CodiceFiscale: "RSSMRA85T10A562S",
		Address:       "Via Verdi 2",
		CAP:           "20100",
		City:          "Milano",
		Province:      "MI",
		Country:       "IT",
	}}
	cfg := SdIConfig{Environment: "test", MaxSendAttempts: 5}
	return NewGenerateInvoiceUseCase(
		&generateTxRunner{sales: e.sales, invoices: e.invoices},
		e.sales, company, customer, e.invoices,
		infrasdi.NewXMLBuilder(), nil, e.store, cfg, zerolog.Nop(),
	)
}

type generateTxRunner struct {
	sales    *fakeSaleRepo
	invoices *fakeInvoiceRepo
}

func (r *generateTxRunner) RunGenerate(ctx context.Context, fn func(repository.SaleRepository, repository.InvoiceRepository) error) error {
	return fn(r.sales, r.invoices)
}

func (r *generateTxRunner) RunSend(ctx context.Context, fn func(repository.InvoiceRepository) error) error {
	return fn(r.invoices)
}

func (r *generateTxRunner) RunSale(ctx context.Context, fn func(repository.SaleRepository) error) error {
	return fn(r.sales)
}

type fakeSaleRepo struct {
	sales map[string]*entity.Sale
}

func (r *fakeSaleRepo) Create(sale *entity.Sale) error {
	r.sales[sale.ID] = sale
	return nil
}

func (r *fakeSaleRepo) CreateRow(row *entity.SaleRow) error         { return nil }
func (r *fakeSaleRepo) CreatePayment(payment *entity.Payment) error { return nil }

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

func (r *fakeSaleRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.sales {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) UpdateStatus(id, status string) error {
	if s, ok := r.sales[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *fakeSaleRepo) SetRowSubscription(rowID, subscriptionID string) error { return nil }

func (r *fakeSaleRepo) NextProgressivo(companyID string, year int) (string, error) {
	return "1/2025", nil
}

type fakeCompanyRepo struct {
	company *entity.Company
}

func (r *fakeCompanyRepo) Create(company *entity.Company) error { return nil }

func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	if r.company == nil || r.company.ID != id {
		return nil, domain.ErrNotFound
	}
	return r.company, nil
}

func (r *fakeCompanyRepo) GetByPartitaIVA(partitaIVA string) (*entity.Company, error) {
	if r.company == nil || !strings.EqualFold(r.company.PartitaIVA, partitaIVA) {
		return nil, domain.ErrNotFound
	}
	return r.company, nil
}

func (r *fakeCompanyRepo) Update(company *entity.Company) error { return nil }

func (r *fakeCompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	return []*entity.Company{r.company}, nil
}

type fakeCustomerRepo struct {
	customer *entity.Customer
}

func (r *fakeCustomerRepo) Create(customer *entity.Customer) error { return nil }

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	if r.customer == nil || r.customer.ID != id {
		return nil, domain.ErrNotFound
	}
	return r.customer, nil
}

func (r *fakeCustomerRepo) GetByCompanyAndCodiceFiscale(companyID, codiceFiscale string) (*entity.Customer, error) {
	if r.customer == nil || r.customer.CompanyID != companyID || r.customer.CodiceFiscale != codiceFiscale {
		return nil, domain.ErrNotFound
	}
	return r.customer, nil
}

func (r *fakeCustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	return []*entity.Customer{r.customer}, nil
}

func (r *fakeCustomerRepo) Update(customer *entity.Customer) error { return nil }
func (r *fakeCustomerRepo) Delete(id string) error                 { return nil }
