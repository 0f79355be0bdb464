package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	pkgsdi "github.com/diaghi13/fs-gymme-sub005/pkg/sdi"
)

// CustomerUseCase gestisce l'anagrafica clienti della società.
type CustomerUseCase struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerUseCase costruisce il caso d'uso.
func NewCustomerUseCase(customerRepo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{customerRepo: customerRepo}
}

// Create registra un nuovo cliente. Codice fiscale e partita IVA sono
// validati formalmente; il codice fiscale è deduplicato per società.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: denominazione obbligatoria", domain.ErrValidation)
	}
	cf := strings.ToUpper(strings.TrimSpace(in.CodiceFiscale))
	if cf != "" {
		if err := pkgsdi.ValidateCodiceFiscale(cf); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	piva := strings.TrimSpace(in.PartitaIVA)
	if piva != "" {
		if err := pkgsdi.ValidatePartitaIVA(piva); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	if cf == "" && piva == "" {
		return nil, fmt.Errorf("%w: codice fiscale o partita IVA obbligatori", domain.ErrValidation)
	}
	if in.CodiceDestinatario != "" && len(in.CodiceDestinatario) != 7 {
		return nil, fmt.Errorf("%w: codice destinatario di 7 caratteri", domain.ErrValidation)
	}

	if cf != "" {
		existing, err := uc.customerRepo.GetByCompanyAndCodiceFiscale(companyID, cf)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: cliente con codice fiscale %s già presente", domain.ErrConflict, cf)
		}
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:                 uuid.New().String(),
		CompanyID:          companyID,
		Name:               strings.TrimSpace(in.Name),
		CodiceFiscale:      cf,
		PartitaIVA:         piva,
		CodiceDestinatario: strings.ToUpper(in.CodiceDestinatario),
		PEC:                strings.TrimSpace(in.PEC),
		Address:            in.Address,
		CAP:                in.CAP,
		City:               in.City,
		Province:           strings.ToUpper(in.Province),
		Country:            "IT",
		Email:              in.Email,
		Phone:              in.Phone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Get restituisce il cliente, se appartiene alla società.
func (uc *CustomerUseCase) Get(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.customerRepo.GetByID(id)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toCustomerResponse(customer), nil
}

// List elenca i clienti della società.
func (uc *CustomerUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	customers, err := uc.customerRepo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:                 c.ID,
		CompanyID:          c.CompanyID,
		Name:               c.Name,
		CodiceFiscale:      c.CodiceFiscale,
		PartitaIVA:         c.PartitaIVA,
		CodiceDestinatario: c.CodiceDestinatario,
		PEC:                c.PEC,
		Address:            c.Address,
		City:               c.City,
		Email:              c.Email,
		Anonymized:         c.IsAnonymized(),
	}
}
