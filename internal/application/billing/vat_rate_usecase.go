package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	pkgsdi "github.com/diaghi13/fs-gymme-sub005/pkg/sdi"
)

// VatRateUseCase gestisce il catalogo delle aliquote IVA (dato di
// riferimento: inserito da seed o da amministrazione, mai calcolato).
type VatRateUseCase struct {
	vatRateRepo repository.VatRateRepository
}

// NewVatRateUseCase costruisce il caso d'uso.
func NewVatRateUseCase(vatRateRepo repository.VatRateRepository) *VatRateUseCase {
	return &VatRateUseCase{vatRateRepo: vatRateRepo}
}

// Create registra una nuova aliquota. Un'aliquota a zero deve dichiarare il
// codice Natura che finirà in fattura.
func (uc *VatRateUseCase) Create(ctx context.Context, in dto.CreateVatRateRequest) (*dto.VatRateResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, fmt.Errorf("%w: codice aliquota obbligatorio", domain.ErrValidation)
	}
	pct, err := decimal.NewFromString(in.Percentage)
	if err != nil || pct.IsNegative() {
		return nil, fmt.Errorf("%w: percentuale non valida", domain.ErrValidation)
	}
	natura := strings.ToUpper(strings.TrimSpace(in.Natura))
	if pct.IsZero() && natura == "" {
		return nil, fmt.Errorf("%w: aliquota zero senza codice Natura", domain.ErrValidation)
	}
	if natura != "" && !pkgsdi.IsValidNatura(natura) {
		return nil, fmt.Errorf("%w: codice Natura %s non valido", domain.ErrValidation, natura)
	}

	existing, err := uc.vatRateRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: aliquota %s già presente", domain.ErrConflict, code)
	}

	now := time.Now()
	rate := &entity.VatRate{
		ID:          uuid.New().String(),
		Code:        code,
		Description: in.Description,
		Percentage:  pct,
		Natura:      natura,
		Visible:     in.Visible,
		Withholding: in.Withholding,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.vatRateRepo.Create(rate); err != nil {
		return nil, err
	}
	return toVatRateResponse(rate), nil
}

// List elenca le aliquote, opzionalmente solo quelle visibili nei listini.
func (uc *VatRateUseCase) List(ctx context.Context, onlyVisible bool) ([]*dto.VatRateResponse, error) {
	rates, err := uc.vatRateRepo.List(onlyVisible)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.VatRateResponse, 0, len(rates))
	for _, r := range rates {
		out = append(out, toVatRateResponse(r))
	}
	return out, nil
}

func toVatRateResponse(r *entity.VatRate) *dto.VatRateResponse {
	return &dto.VatRateResponse{
		ID:          r.ID,
		Code:        r.Code,
		Description: r.Description,
		Percentage:  r.Percentage.String(),
		Natura:      r.Natura,
		Visible:     r.Visible,
		Withholding: r.Withholding,
	}
}
