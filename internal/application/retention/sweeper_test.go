package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

func TestRun_AnonimizzaLeFattureOltreLaFinestra(t *testing.T) {
	env := newSweepTestEnv(7)
	env.addInvoice("inv-old-1", "cust-1", yearsAgo(8))
	env.addInvoice("inv-old-2", "cust-2", yearsAgo(9))
	env.addInvoice("inv-recent", "cust-3", yearsAgo(1))

	result, err := env.sweeper().Run(context.Background(), "company-001")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 2, result.Anonymized)
	assert.Equal(t, 0, result.Failed)

	assert.NotNil(t, env.invoices.invoices["inv-old-1"].AnonymizedAt)
	assert.NotNil(t, env.invoices.invoices["inv-old-2"].AnonymizedAt)
	assert.Nil(t, env.invoices.invoices["inv-recent"].AnonymizedAt, "le fatture recenti non si toccano")

	assert.True(t, env.customers.customers["cust-1"].IsAnonymized())
	assert.Equal(t, "CLIENTE ANONIMIZZATO", env.customers.customers["cust-1"].Name)
	assert.Empty(t, env.customers.customers["cust-1"].CodiceFiscale)
	assert.False(t, env.customers.customers["cust-3"].IsAnonymized())
}

func TestRun_RiscriveAncheLXMLArchiviato(t *testing.T) {
	env := newSweepTestEnv(7)
	env.addInvoice("inv-old", "cust-1", yearsAgo(8))

	path := env.invoices.invoices["inv-old"].XMLPath
	require.NotEmpty(t, path)
	require.Contains(t, string(env.xmlStore.files[path]), "Mario Rossi")

	result, err := env.sweeper().Run(context.Background(), "company-001")

	require.NoError(t, err)
	require.Equal(t, 1, result.Anonymized)

	rewritten := string(env.xmlStore.files[path])
	assert.NotContains(t, rewritten, "Mario Rossi")
	assert.NotContains(t, rewritten, "RSSMRA85T10A562S")
	assert.NotContains(t, rewritten, "Via Roma 1")
	assert.Contains(t, rewritten, "CLIENTE ANONIMIZZATO")
	assert.Contains(t, rewritten, "50.00", "i totali fiscali restano intatti")
	assert.Contains(t, rewritten, "9.02", "l'imposta resta intatta")
}

func TestRun_FallisceSeLXMLNonSiRilegge(t *testing.T) {
	env := newSweepTestEnv(7)
	env.addInvoice("inv-old", "cust-1", yearsAgo(8))
	delete(env.xmlStore.files, env.invoices.invoices["inv-old"].XMLPath)

	result, err := env.sweeper().Run(context.Background(), "company-001")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Nil(t, env.invoices.invoices["inv-old"].AnonymizedAt,
		"la fattura non si marca se l'archivio non è stato riscritto")
}

func TestRun_ProsegueOltreIFallimentiPerRecord(t *testing.T) {
	env := newSweepTestEnv(7)
	env.addInvoice("inv-ok", "cust-1", yearsAgo(8))
	env.addInvoice("inv-broken", "cust-missing", yearsAgo(8))
	env.addInvoice("inv-ok-2", "cust-2", yearsAgo(8))
	delete(env.customers.customers, "cust-missing")

	result, err := env.sweeper().Run(context.Background(), "company-001")

	require.NoError(t, err, "il passaggio completa anche con record falliti")
	assert.Equal(t, 3, result.Found)
	assert.Equal(t, 2, result.Anonymized)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "inv-broken")
}

func TestRun_IgnoraLeFattureGiaAnonimizzate(t *testing.T) {
	env := newSweepTestEnv(7)
	env.addInvoice("inv-done", "cust-1", yearsAgo(8))
	done := time.Now()
	env.invoices.invoices["inv-done"].AnonymizedAt = &done

	result, err := env.sweeper().Run(context.Background(), "company-001")

	require.NoError(t, err)
	assert.Equal(t, 0, result.Found, "le già trattate non rientrano nel passaggio")
}

func TestDashboard_ClassificazioneEPercentuali(t *testing.T) {
	env := newSweepTestEnv(10)
	env.addInvoice("inv-expired", "cust-1", yearsAgo(11))
	env.addInvoice("inv-near", "cust-2", time.Now().AddDate(-10, 2, 0)) // scade tra ~2 mesi
	env.addInvoice("inv-ok-1", "cust-3", yearsAgo(1))
	env.addInvoice("inv-ok-2", "cust-4", yearsAgo(2))

	dash, err := env.sweeper().Dashboard(context.Background(), "company-001")

	require.NoError(t, err)
	assert.Equal(t, 4, dash.Total)
	assert.Equal(t, 1, dash.NonCompliant)
	assert.Equal(t, 1, dash.NearExpiry)
	assert.Equal(t, 2, dash.Compliant)
	assert.InDelta(t, 50.0, dash.CompliantPercent, 0.01)
	assert.InDelta(t, 25.0, dash.NearExpiryPercent, 0.01)
}

// ── fake e ambiente di test ─────────────────────────────────────────────

func yearsAgo(n int) time.Time {
	return time.Now().AddDate(-n, 0, 0)
}

// fatturaArchiviata è un estratto del tracciato archiviato: serve a
// verificare che lo sweeper cancelli l'identità del cliente lasciando
// intatti gli importi.
const fatturaArchiviata = `<?xml version="1.0" encoding="UTF-8"?>
<p:FatturaElettronica xmlns:p="http://ivaservizi.agenziaentrate.gov.it/docs/xsd/fatture/v1.2" versione="FPR12">
  <FatturaElettronicaHeader>
    <CessionarioCommittente>
      <DatiAnagrafici>
        <CodiceFiscale>RSSMRA85T10A562S</CodiceFiscale>
        <Anagrafica>
          <Denominazione>Mario Rossi</Denominazione>
        </Anagrafica>
      </DatiAnagrafici>
      <Sede>
        <Indirizzo>Via Roma 1</Indirizzo>
        <CAP>20100</CAP>
        <Comune>Milano</Comune>
        <Provincia>MI</Provincia>
        <Nazione>IT</Nazione>
      </Sede>
    </CessionarioCommittente>
  </FatturaElettronicaHeader>
  <FatturaElettronicaBody>
    <DatiGenerali>
      <DatiGeneraliDocumento>
        <ImportoTotaleDocumento>50.00</ImportoTotaleDocumento>
      </DatiGeneraliDocumento>
    </DatiGenerali>
    <DatiBeniServizi>
      <DatiRiepilogo>
        <AliquotaIVA>22.00</AliquotaIVA>
        <ImponibileImporto>40.98</ImponibileImporto>
        <Imposta>9.02</Imposta>
      </DatiRiepilogo>
    </DatiBeniServizi>
  </FatturaElettronicaBody>
</p:FatturaElettronica>`

type sweepTestEnv struct {
	invoices  *fakeInvoiceRepo
	sales     *fakeSaleRepo
	customers *fakeCustomerRepo
	xmlStore  *fakeXMLStore
	years     int
}

func newSweepTestEnv(years int) *sweepTestEnv {
	return &sweepTestEnv{
		invoices:  &fakeInvoiceRepo{invoices: map[string]*entity.ElectronicInvoice{}},
		sales:     &fakeSaleRepo{sales: map[string]*entity.Sale{}},
		customers: &fakeCustomerRepo{customers: map[string]*entity.Customer{}},
		xmlStore:  &fakeXMLStore{files: map[string][]byte{}},
		years:     years,
	}
}

func (e *sweepTestEnv) addInvoice(id, customerID string, createdAt time.Time) {
	saleID := "sale-" + id
	xmlPath := id + ".xml"
	e.invoices.invoices[id] = &entity.ElectronicInvoice{
		ID:        id,
		CompanyID: "company-001",
		SaleID:    saleID,
		Status:    entity.InvoiceStatusAccepted,
		XMLPath:   xmlPath,
		CreatedAt: createdAt,
	}
	e.xmlStore.files[xmlPath] = []byte(fatturaArchiviata)
	e.sales.sales[saleID] = &entity.Sale{ID: saleID, CompanyID: "company-001", CustomerID: customerID}
	if _, ok := e.customers.customers[customerID]; !ok {
		e.customers.customers[customerID] = &entity.Customer{
			ID:            customerID,
			CompanyID:     "company-001",
			Name:          "Mario Rossi",
			CodiceFiscale: "RSSMRA85T10A562S",
		}
	}
}

func (e *sweepTestEnv) sweeper() *Sweeper {
	cfg := Config{Years: e.years, WarningMonths: 3}
	return NewSweeper(&fakeRetentionTx{env: e}, e.invoices, e.xmlStore, cfg, zerolog.Nop())
}

type fakeXMLStore struct {
	files map[string][]byte
}

func (s *fakeXMLStore) Read(path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, errors.New("file non trovato: " + path)
	}
	return data, nil
}

func (s *fakeXMLStore) Write(path string, data []byte) error {
	s.files[path] = data
	return nil
}

type fakeRetentionTx struct {
	env *sweepTestEnv
}

func (r *fakeRetentionTx) RunRetention(ctx context.Context, fn func(
	repository.InvoiceRepository,
	repository.SaleRepository,
	repository.CustomerRepository,
) error) error {
	return fn(r.env.invoices, r.env.sales, r.env.customers)
}

type fakeInvoiceRepo struct {
	invoices map[string]*entity.ElectronicInvoice
}

func (r *fakeInvoiceRepo) Create(*entity.ElectronicInvoice) error        { return nil }
func (r *fakeInvoiceRepo) NextProgressivo(string) (string, error)        { return "", nil }
func (r *fakeInvoiceRepo) CreateAttempt(*entity.SendAttempt) error       { return nil }
func (r *fakeInvoiceRepo) ListAttempts(string) ([]*entity.SendAttempt, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.ElectronicInvoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (r *fakeInvoiceRepo) GetByIDForUpdate(id string) (*entity.ElectronicInvoice, error) {
	return r.GetByID(id)
}

func (r *fakeInvoiceRepo) GetActiveBySale(string, string) (*entity.ElectronicInvoice, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) GetByTransmissionID(string) (*entity.ElectronicInvoice, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) GetByExternalID(string) (*entity.ElectronicInvoice, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) Update(inv *entity.ElectronicInvoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) ListByCompany(string, string, int, int) ([]*entity.ElectronicInvoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) ListOlderThan(companyID string, cutoff time.Time, onlyNotAnonymized bool, limit int) ([]*entity.ElectronicInvoice, error) {
	var out []*entity.ElectronicInvoice
	for _, inv := range r.invoices {
		if inv.CompanyID != companyID || !inv.CreatedAt.Before(cutoff) {
			continue
		}
		if onlyNotAnonymized && inv.AnonymizedAt != nil {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) CountByAge(companyID string, deadline, warning time.Time) (expired, nearExpiry, compliant int, err error) {
	for _, inv := range r.invoices {
		if inv.CompanyID != companyID {
			continue
		}
		switch {
		case inv.CreatedAt.Before(deadline) && inv.AnonymizedAt == nil:
			expired++
		case inv.CreatedAt.Before(warning) && inv.AnonymizedAt == nil:
			nearExpiry++
		default:
			compliant++
		}
	}
	return expired, nearExpiry, compliant, nil
}

type fakeSaleRepo struct {
	sales map[string]*entity.Sale
}

func (r *fakeSaleRepo) Create(*entity.Sale) error              { return nil }
func (r *fakeSaleRepo) CreateRow(*entity.SaleRow) error        { return nil }
func (r *fakeSaleRepo) CreatePayment(*entity.Payment) error    { return nil }
func (r *fakeSaleRepo) UpdateStatus(string, string) error      { return nil }
func (r *fakeSaleRepo) SetRowSubscription(string, string) error { return nil }
func (r *fakeSaleRepo) NextProgressivo(string, int) (string, error) {
	return "", nil
}

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, errors.New("vendita non trovata")
	}
	return sale, nil
}

func (r *fakeSaleRepo) ListByCompany(string, int, int) ([]*entity.Sale, error) {
	return nil, nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func (r *fakeCustomerRepo) Create(*entity.Customer) error { return nil }
func (r *fakeCustomerRepo) Delete(string) error           { return nil }

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByCompanyAndCodiceFiscale(string, string) (*entity.Customer, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeCustomerRepo) ListByCompany(string, int, int) ([]*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	r.customers[c.ID] = c
	return nil
}
