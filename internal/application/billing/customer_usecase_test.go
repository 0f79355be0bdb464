package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
)

func TestCreateCustomer_AnagraficaValida(t *testing.T) {
	uc := NewCustomerUseCase(&fakeCustomerRepo{})

	resp, err := uc.Create(context.Background(), "company-001", dto.CreateCustomerRequest{
		Name:          "Mario Rossi",
		CodiceFiscale: "rssmra85t10a562s", // normalizzato in maiuscolo
		City:          "Milano",
		Province:      "mi",
	})

	require.NoError(t, err)
	assert.Equal(t, "RSSMRA85T10A562S", resp.CodiceFiscale)
	assert.Equal(t, "company-001", resp.CompanyID)
	assert.False(t, resp.Anonymized)
}

func TestCreateCustomer_CodiceFiscaleMalformato(t *testing.T) {
	uc := NewCustomerUseCase(&fakeCustomerRepo{})

	// carattere di controllo alterato
	_, err := uc.Create(context.Background(), "company-001", dto.CreateCustomerRequest{
		Name:          "Mario Rossi",
		CodiceFiscale: "RSSMRA85T10A562X",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateCustomer_PartitaIVAMalformata(t *testing.T) {
	uc := NewCustomerUseCase(&fakeCustomerRepo{})

	for _, piva := range []string{
		"00743110158", // cifra di controllo alterata
		"0074311015",  // troppo corta
		"0074311015A", // non numerica
	} {
		_, err := uc.Create(context.Background(), "company-001", dto.CreateCustomerRequest{
			Name:       "Palestra Olimpia SSD",
			PartitaIVA: piva,
		})
		assert.ErrorIs(t, err, domain.ErrValidation, "la partita IVA %s deve essere respinta", piva)
	}
}

func TestCreateCustomer_PartitaIVAValida(t *testing.T) {
	uc := NewCustomerUseCase(&fakeCustomerRepo{})

	resp, err := uc.Create(context.Background(), "company-001", dto.CreateCustomerRequest{
		Name:       "Palestra Olimpia SSD",
		PartitaIVA: "00743110157",
	})

	require.NoError(t, err)
	assert.Equal(t, "00743110157", resp.PartitaIVA)
}

func TestCreateCustomer_IdentificativoFiscaleObbligatorio(t *testing.T) {
	uc := NewCustomerUseCase(&fakeCustomerRepo{})

	_, err := uc.Create(context.Background(), "company-001", dto.CreateCustomerRequest{Name: "Mario Rossi"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "codice fiscale o partita IVA")
}

func TestCreateCustomer_CodiceDestinatarioDiSetteCaratteri(t *testing.T) {
	uc := NewCustomerUseCase(&fakeCustomerRepo{})

	_, err := uc.Create(context.Background(), "company-001", dto.CreateCustomerRequest{
		Name:               "Mario Rossi",
		CodiceFiscale:      "RSSMRA85T10A562S",
		CodiceDestinatario: "ABC",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateCustomer_DuplicatoPerCodiceFiscale(t *testing.T) {
	uc := NewCustomerUseCase(&fakeCustomerRepo{customer: &entity.Customer{
		ID:            "customer-001",
		CompanyID:     "company-001",
		Name:          "Mario Rossi",
		CodiceFiscale: "RSSMRA85T10A562S",
	}})

	_, err := uc.Create(context.Background(), "company-001", dto.CreateCustomerRequest{
		Name:          "Mario Rossi",
		CodiceFiscale: "RSSMRA85T10A562S",
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
}
