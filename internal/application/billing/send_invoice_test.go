package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	infrasdi "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi"
)

func TestSend_TrasmissionePresaInCarico(t *testing.T) {
	env := newSendTestEnv(entity.InvoiceStatusGenerated)
	env.submitter.result = &infrasdi.SubmitResult{ExternalID: "sdi-12345", Accepted: true, RawReply: "<RispostaSdIRiceviFile/>"}

	resp, err := env.useCase().Send(context.Background(), "company-001", "user-001", "inv-001")

	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, resp.Status)
	assert.Equal(t, "sdi-12345", resp.ExternalID)
	assert.Equal(t, 1, resp.SendAttempts)

	require.Len(t, env.repo.attempts, 1, "un invio produce esattamente una riga nel registro")
	attempt := env.repo.attempts[0]
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.Equal(t, entity.InvoiceStatusSent, attempt.Outcome)
	assert.Equal(t, "sdi-12345", attempt.ExternalID)
	assert.Equal(t, "user-001", attempt.UserID)
}

func TestSend_StatoNonInviabile(t *testing.T) {
	for _, s := range []string{
		entity.InvoiceStatusSent,
		entity.InvoiceStatusAccepted,
		entity.InvoiceStatusRejected,
		entity.InvoiceStatusRejectedFinal,
	} {
		env := newSendTestEnv(s)

		_, err := env.useCase().Send(context.Background(), "company-001", "user-001", "inv-001")

		assert.ErrorIs(t, err, domain.ErrNotSendable, "lo stato %s non ammette il primo invio", s)
		assert.Empty(t, env.repo.attempts, "nessuna riga tentativo deve essere scritta da %s", s)
		assert.Equal(t, 0, env.submitter.calls, "nessuna chiamata di rete deve partire da %s", s)
	}
}

func TestSend_ErroreDiTrasporto(t *testing.T) {
	env := newSendTestEnv(entity.InvoiceStatusGenerated)
	env.submitter.err = errors.New("timeout della richiesta")

	_, err := env.useCase().Send(context.Background(), "company-001", "user-001", "inv-001")

	assert.ErrorIs(t, err, domain.ErrGatewayTransport, "un errore di rete è ripetibile, non uno scarto")

	// il tentativo e lo stato SEND_FAILED vanno comunque a commit
	inv := env.repo.invoices["inv-001"]
	assert.Equal(t, entity.InvoiceStatusSendFailed, inv.Status)
	assert.True(t, inv.CanResend(), "la fattura deve restare reinviabile")
	require.Len(t, env.repo.attempts, 1)
	assert.Equal(t, entity.InvoiceStatusSendFailed, env.repo.attempts[0].Outcome)
	assert.Contains(t, env.repo.attempts[0].ResponsePayload, "timeout")
	assert.Contains(t, env.repo.attempts[0].RequestPayload, inv.XMLPath,
		"anche il tentativo fallito registra la richiesta inoltrata")
}

func TestSend_ScartoSincronoDelSdI(t *testing.T) {
	env := newSendTestEnv(entity.InvoiceStatusGenerated)
	env.submitter.result = &infrasdi.SubmitResult{
		Accepted: false,
		Errors:   []string{"EI01: file non integro", "EI03: duplicato"},
		RawReply: "<RispostaSdIRiceviFile><Errore/></RispostaSdIRiceviFile>",
	}

	_, err := env.useCase().Send(context.Background(), "company-001", "user-001", "inv-001")

	assert.ErrorIs(t, err, domain.ErrExchangeRejection)
	assert.Contains(t, err.Error(), "EI01", "gli scarti parsati devono arrivare al chiamante")

	inv := env.repo.invoices["inv-001"]
	assert.Equal(t, entity.InvoiceStatusRejected, inv.Status)
	assert.Contains(t, inv.StatusMessage, "EI01")
	require.Len(t, env.repo.attempts, 1)
	assert.Equal(t, entity.InvoiceStatusRejected, env.repo.attempts[0].Outcome)
	assert.Contains(t, env.repo.attempts[0].Errors, "EI01")
	assert.Equal(t, 1, env.notifier.rejected, "lo scarto deve allertare gli operatori")
}

func TestResend_DaScartoRimetteInCodaETrasmette(t *testing.T) {
	env := newSendTestEnv(entity.InvoiceStatusRejected)
	env.repo.invoices["inv-001"].SendAttempts = 1
	env.submitter.result = &infrasdi.SubmitResult{ExternalID: "sdi-67890", Accepted: true}

	resp, err := env.useCase().Resend(context.Background(), "company-001", "user-001", "inv-001")

	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, resp.Status)
	assert.Equal(t, 2, resp.SendAttempts, "il contatore è monotono attraverso i reinvii")
	require.Len(t, env.repo.attempts, 1)
	assert.Equal(t, 2, env.repo.attempts[0].AttemptNumber)
}

func TestResend_RifiutatoSuStatiNonReinviabili(t *testing.T) {
	for _, s := range []string{
		entity.InvoiceStatusGenerated,
		entity.InvoiceStatusSent,
		entity.InvoiceStatusAccepted,
		entity.InvoiceStatusRejectedFinal,
	} {
		env := newSendTestEnv(s)

		_, err := env.useCase().Resend(context.Background(), "company-001", "user-001", "inv-001")

		assert.ErrorIs(t, err, domain.ErrNotSendable, "lo stato %s non ammette il reinvio", s)
		assert.Empty(t, env.repo.attempts)
	}
}

func TestResend_BudgetEsauritoRendeDefinitivoLoScarto(t *testing.T) {
	env := newSendTestEnv(entity.InvoiceStatusRejected)
	env.repo.invoices["inv-001"].SendAttempts = 5

	_, err := env.useCase().Resend(context.Background(), "company-001", "user-001", "inv-001")

	assert.ErrorIs(t, err, domain.ErrSendBudgetExhausted)
	assert.Equal(t, entity.InvoiceStatusRejectedFinal, env.repo.invoices["inv-001"].Status)
	assert.Equal(t, 0, env.submitter.calls)
}

func TestSend_FatturaDiAltraSocieta(t *testing.T) {
	env := newSendTestEnv(entity.InvoiceStatusGenerated)

	_, err := env.useCase().Send(context.Background(), "company-999", "user-001", "inv-001")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, env.repo.attempts)
}

// ── fake e ambiente di test ─────────────────────────────────────────────

type sendTestEnv struct {
	repo      *fakeInvoiceRepo
	store     *fakeXMLStore
	submitter *fakeSubmitter
	notifier  *fakeNotifier
}

func newSendTestEnv(status string) *sendTestEnv {
	repo := newFakeInvoiceRepo()
	repo.invoices["inv-001"] = &entity.ElectronicInvoice{
		ID:           "inv-001",
		CompanyID:    "company-001",
		SaleID:       "sale-001",
		DocumentType: entity.DocumentTypeInvoice,
		Progressivo:  "00001",
		XMLPath:      "IT00743110157_00001.xml",
		Status:       status,
	}
	return &sendTestEnv{
		repo:      repo,
		store:     &fakeXMLStore{files: map[string][]byte{"IT00743110157_00001.xml": []byte("<FatturaElettronica/>")}},
		submitter: &fakeSubmitter{},
		notifier:  &fakeNotifier{},
	}
}

func (e *sendTestEnv) useCase() *SendInvoiceUseCase {
	cfg := SdIConfig{Environment: "test", MaxSendAttempts: 5}
	return NewSendInvoiceUseCase(&fakeTxRunner{repo: e.repo}, e.repo, e.store, e.submitter, e.notifier, cfg, zerolog.Nop())
}

type fakeTxRunner struct {
	repo *fakeInvoiceRepo
}

func (r *fakeTxRunner) RunGenerate(ctx context.Context, fn func(repository.SaleRepository, repository.InvoiceRepository) error) error {
	return fn(nil, r.repo)
}

func (r *fakeTxRunner) RunSend(ctx context.Context, fn func(repository.InvoiceRepository) error) error {
	return fn(r.repo)
}

func (r *fakeTxRunner) RunSale(ctx context.Context, fn func(repository.SaleRepository) error) error {
	return fn(nil)
}

type fakeInvoiceRepo struct {
	invoices   map[string]*entity.ElectronicInvoice
	attempts   []*entity.SendAttempt
	next       int
	failCreate bool
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*entity.ElectronicInvoice{}}
}

func (r *fakeInvoiceRepo) Create(inv *entity.ElectronicInvoice) error {
	if r.failCreate {
		return domain.ErrConflict
	}
	if _, ok := r.invoices[inv.ID]; ok {
		return domain.ErrConflict
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) NextProgressivo(companyID string) (string, error) {
	r.next++
	return fmt.Sprintf("%05d", r.next), nil
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

func (r *fakeInvoiceRepo) GetActiveBySale(saleID, documentType string) (*entity.ElectronicInvoice, error) {
	var active *entity.ElectronicInvoice
	for _, inv := range r.invoices {
		if inv.SaleID != saleID || inv.DocumentType != documentType {
			continue
		}
		if active == nil || inv.CreatedAt.After(active.CreatedAt) {
			active = inv
		}
	}
	if active == nil {
		return nil, domain.ErrNotFound
	}
	return active, nil
}

func (r *fakeInvoiceRepo) Update(inv *entity.ElectronicInvoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) ListByCompany(companyID, status string, limit, offset int) ([]*entity.ElectronicInvoice, error) {
	var out []*entity.ElectronicInvoice
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID && (status == "" || inv.Status == status) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) GetByTransmissionID(transmissionID string) (*entity.ElectronicInvoice, error) {
	for _, inv := range r.invoices {
		if inv.TransmissionID == transmissionID {
			return inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) GetByExternalID(externalID string) (*entity.ElectronicInvoice, error) {
	for _, inv := range r.invoices {
		if inv.ExternalID == externalID {
			return inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) CreateAttempt(attempt *entity.SendAttempt) error {
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *fakeInvoiceRepo) ListAttempts(invoiceID string) ([]*entity.SendAttempt, error) {
	var out []*entity.SendAttempt
	for _, a := range r.attempts {
		if a.InvoiceID == invoiceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListOlderThan(companyID string, cutoff time.Time, onlyNotAnonymized bool, limit int) ([]*entity.ElectronicInvoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) CountByAge(companyID string, deadline, warning time.Time) (int, int, int, error) {
	return 0, 0, 0, nil
}

type fakeXMLStore struct {
	files map[string][]byte
}

func (s *fakeXMLStore) Write(path string, data []byte) error {
	s.files[path] = data
	return nil
}

func (s *fakeXMLStore) Read(path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (s *fakeXMLStore) Remove(path string) error {
	delete(s.files, path)
	return nil
}

type fakeSubmitter struct {
	result *infrasdi.SubmitResult
	err    error
	calls  int
}

func (s *fakeSubmitter) Submit(ctx context.Context, fileName string, xmlData []byte) (*infrasdi.SubmitResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fakeNotifier struct {
	rejected int
	accepted int
}

func (n *fakeNotifier) NotifyRejected(inv *entity.ElectronicInvoice, errs string) { n.rejected++ }
func (n *fakeNotifier) NotifyAccepted(inv *entity.ElectronicInvoice)              { n.accepted++ }
