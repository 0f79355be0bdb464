package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/money"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	"github.com/diaghi13/fs-gymme-sub005/pkg/sdi"
)

const dateLayout = "2006-01-02"

// CreateSaleUseCase crea una vendita con righe e pagamenti, calcolando i
// totali con la politica di arrotondamento per riga. Dopo il commit pubblica
// un evento per ogni riga con periodo di validità (abbonamenti).
type CreateSaleUseCase struct {
	txRunner     BillingTxRunner
	customerRepo repository.CustomerRepository
	vatRateRepo  repository.VatRateRepository
	saleRepo     repository.SaleRepository
	events       EventPublisher
	log          zerolog.Logger
}

// NewCreateSaleUseCase costruisce il caso d'uso.
func NewCreateSaleUseCase(
	txRunner BillingTxRunner,
	customerRepo repository.CustomerRepository,
	vatRateRepo repository.VatRateRepository,
	saleRepo repository.SaleRepository,
	events EventPublisher,
	log zerolog.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		vatRateRepo:  vatRateRepo,
		saleRepo:     saleRepo,
		events:       events,
		log:          log,
	}
}

// CreateSale valida l'ingresso, calcola i totali e persiste vendita, righe e
// pagamenti in un'unica transazione.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, companyID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.CustomerID == "" || len(in.Rows) == 0 {
		return nil, domain.ErrValidation
	}

	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	saleDate := time.Now()
	if in.Date != "" {
		saleDate, err = time.Parse(dateLayout, in.Date)
		if err != nil {
			return nil, domain.ErrValidation
		}
	}
	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		Status:     entity.SaleStatusDraft,
		Date:       saleDate,
		Currency:   currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Finalize {
		sale.Status = entity.SaleStatusSaved
	}

	// Calcolo righe: aliquota risolta dal codice, totali arrotondati per riga.
	var totalNet, totalVat, totalGross decimal.Decimal
	for _, rowIn := range in.Rows {
		if rowIn.Quantity.LessThanOrEqual(decimal.Zero) || rowIn.UnitPriceNet.IsNegative() {
			return nil, domain.ErrValidation
		}
		rate, err := uc.vatRateRepo.GetByCode(rowIn.VatRateCode)
		if err != nil || rate == nil {
			return nil, domain.ErrValidation
		}
		if rate.IsExempt() && rate.Natura == "" {
			// un'aliquota zero senza natura non è serializzabile in fattura
			return nil, domain.ErrValidation
		}

		amounts := money.RowTotals(rowIn.UnitPriceNet, rowIn.Quantity, rowIn.DiscountPercent, rowIn.DiscountAbsolute, rate.Percentage)

		row := entity.SaleRow{
			ID:               uuid.New().String(),
			SaleID:           sale.ID,
			Description:      sdi.Sanitize(rowIn.Description),
			Quantity:         rowIn.Quantity,
			UnitPriceNet:     rowIn.UnitPriceNet,
			DiscountPercent:  rowIn.DiscountPercent,
			DiscountAbsolute: rowIn.DiscountAbsolute,
			VatRateID:        rate.ID,
			VatPercentage:    rate.Percentage,
			VatNatura:        rate.Natura,
			TotalNet:         amounts.TotalNet,
			VatAmount:        amounts.VatAmount,
			TotalGross:       amounts.TotalGross,
		}
		if rowIn.ServiceStart != "" && rowIn.ServiceEnd != "" {
			start, err1 := time.Parse(dateLayout, rowIn.ServiceStart)
			end, err2 := time.Parse(dateLayout, rowIn.ServiceEnd)
			if err1 != nil || err2 != nil || end.Before(start) {
				return nil, domain.ErrValidation
			}
			row.ServiceStart = &start
			row.ServiceEnd = &end
		}
		sale.Rows = append(sale.Rows, row)
		totalNet = totalNet.Add(amounts.TotalNet)
		totalVat = totalVat.Add(amounts.VatAmount)
		totalGross = totalGross.Add(amounts.TotalGross)
	}
	sale.TotalNet = totalNet.Round(2)
	sale.TotalVat = totalVat.Round(2)
	sale.TotalGross = totalGross.Round(2)

	// Pagamenti: la somma deve coprire esattamente il lordo.
	var paymentsTotal decimal.Decimal
	for _, payIn := range in.Payments {
		if !isValidPaymentMethod(payIn.MethodCode) || payIn.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrValidation
		}
		due := saleDate
		if payIn.DueDate != "" {
			due, err = time.Parse(dateLayout, payIn.DueDate)
			if err != nil {
				return nil, domain.ErrValidation
			}
		}
		sale.Payments = append(sale.Payments, entity.Payment{
			ID:         uuid.New().String(),
			SaleID:     sale.ID,
			MethodCode: payIn.MethodCode,
			DueDate:    due,
			Amount:     payIn.Amount,
		})
		paymentsTotal = paymentsTotal.Add(payIn.Amount)
	}
	if len(sale.Payments) > 0 && !paymentsTotal.Round(2).Equal(sale.TotalGross) {
		return nil, domain.ErrValidation
	}

	err = uc.txRunner.RunSale(ctx, func(saleRepo repository.SaleRepository) error {
		progressivo, err := saleRepo.NextProgressivo(companyID, saleDate.Year())
		if err != nil {
			return err
		}
		sale.Progressivo = progressivo
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for i := range sale.Rows {
			if err := saleRepo.CreateRow(&sale.Rows[i]); err != nil {
				return err
			}
		}
		for i := range sale.Payments {
			if err := saleRepo.CreatePayment(&sale.Payments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Eventi post-commit: una riga con periodo di validità origina un
	// abbonamento, ma solo a vendita finalizzata e mai dentro la transazione.
	if sale.IsFinalized() {
		uc.publishSubscriptionEvents(sale)
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("progressivo", sale.Progressivo).
		Str("total_gross", sale.TotalGross.StringFixed(2)).
		Msg("vendita creata")

	return toSaleResponse(sale), nil
}

// FinalizeSale chiude una vendita in bozza rendendola immutabile e
// fatturabile. La finalizzazione fa scattare il provisioning degli
// abbonamenti per le righe con periodo di validità.
func (uc *CreateSaleUseCase) FinalizeSale(ctx context.Context, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil || sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if sale.Status != entity.SaleStatusDraft {
		return nil, fmt.Errorf("%w: la vendita è in stato %s, non draft", domain.ErrConflict, sale.Status)
	}

	err = uc.txRunner.RunSale(ctx, func(saleRepo repository.SaleRepository) error {
		return saleRepo.UpdateStatus(id, entity.SaleStatusSaved)
	})
	if err != nil {
		return nil, err
	}
	sale.Status = entity.SaleStatusSaved

	uc.publishSubscriptionEvents(sale)

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("progressivo", sale.Progressivo).
		Msg("vendita finalizzata")

	return toSaleResponse(sale), nil
}

func (uc *CreateSaleUseCase) publishSubscriptionEvents(sale *entity.Sale) {
	for i := range sale.Rows {
		row := &sale.Rows[i]
		if !row.IsSubscription() || row.SubscriptionID != "" {
			continue
		}
		uc.events.Publish(SaleRowCreatedEvent{
			CompanyID:    sale.CompanyID,
			CustomerID:   sale.CustomerID,
			SaleID:       sale.ID,
			SaleRowID:    row.ID,
			Description:  row.Description,
			ServiceStart: *row.ServiceStart,
			ServiceEnd:   *row.ServiceEnd,
			OccurredAt:   time.Now(),
		})
	}
}

// GetSale restituisce la vendita completa, con controllo di tenant.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil || sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toSaleResponse(sale), nil
}

// ListSales elenca le vendite della società.
func (uc *CreateSaleUseCase) ListSales(ctx context.Context, companyID string, page dto.PageRequest) ([]*dto.SaleResponse, error) {
	page.DefaultPage()
	sales, err := uc.saleRepo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	return out, nil
}

func isValidPaymentMethod(code string) bool {
	return sdi.ValidPaymentMethodCodes[code]
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:          s.ID,
		CompanyID:   s.CompanyID,
		CustomerID:  s.CustomerID,
		Status:      s.Status,
		Date:        s.Date.Format(dateLayout),
		Progressivo: s.Progressivo,
		Currency:    s.Currency,
		TotalNet:    s.TotalNet,
		TotalVat:    s.TotalVat,
		TotalGross:  s.TotalGross,
	}
	for _, r := range s.Rows {
		rowResp := dto.SaleRowResponse{
			ID:             r.ID,
			Description:    r.Description,
			Quantity:       r.Quantity,
			UnitPriceNet:   r.UnitPriceNet,
			VatPercentage:  r.VatPercentage,
			VatNatura:      r.VatNatura,
			TotalNet:       r.TotalNet,
			VatAmount:      r.VatAmount,
			TotalGross:     r.TotalGross,
			SubscriptionID: r.SubscriptionID,
		}
		if r.ServiceStart != nil {
			rowResp.ServiceStart = r.ServiceStart.Format(dateLayout)
		}
		if r.ServiceEnd != nil {
			rowResp.ServiceEnd = r.ServiceEnd.Format(dateLayout)
		}
		resp.Rows = append(resp.Rows, rowResp)
	}
	for _, p := range s.Payments {
		resp.Payments = append(resp.Payments, dto.SalePaymentResponse{
			ID:         p.ID,
			MethodCode: p.MethodCode,
			DueDate:    p.DueDate.Format(dateLayout),
			Amount:     p.Amount,
		})
	}
	return resp
}
