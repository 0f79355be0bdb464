package billing

import (
	"context"
	"fmt"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

// PDFUseCase genera la resa grafica (PDF) di una fattura elettronica a partire
// dagli stessi dati di vendita che hanno prodotto l'XML.
type PDFUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	saleRepo     repository.SaleRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	generator    InvoicePDFGenerator
}

// NewPDFUseCase costruisce il caso d'uso.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	saleRepo repository.SaleRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo:  invoiceRepo,
		saleRepo:     saleRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		generator:    generator,
	}
}

// DownloadInvoicePDF carica fattura, vendita e anagrafiche e genera il PDF.
//
// Restituisce:
//   - (pdfBytes, filename, nil) in caso di successo.
//   - domain.ErrNotFound  se la fattura non esiste.
//   - domain.ErrForbidden se la fattura non appartiene alla società del token.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, companyID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: lettura fattura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, "", domain.ErrForbidden
	}

	sale, err := uc.saleRepo.GetByID(inv.SaleID)
	if err != nil || sale == nil {
		return nil, "", fmt.Errorf("pdf: lettura vendita: %w", err)
	}
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, "", fmt.Errorf("pdf: lettura società: %w", err)
	}
	customer, err := uc.customerRepo.GetByID(sale.CustomerID)
	if err != nil || customer == nil {
		return nil, "", fmt.Errorf("pdf: lettura cliente: %w", err)
	}

	pdfBytes, err = uc.generator.Generate(sale, inv, company, customer)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generazione fallita: %w", err)
	}

	filename = fmt.Sprintf("fattura_%s.pdf", inv.Progressivo)
	return pdfBytes, filename, nil
}
