package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

const referenceOpeningStock = "opening_stock"

// OpeningStockRow una línea del archivo de saldos iniciales.
type OpeningStockRow struct {
	Line     int // línea en el archivo, para los mensajes de error
	SKU      string
	Location string
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal
}

// OpeningStockResult resumen de una importación.
type OpeningStockResult struct {
	ImportID string
	Rows     int
	Total    decimal.Decimal
}

// OpeningStockImporter carga saldos iniciales como ajustes de entrada. Un archivo es una transacción:
// si una fila falla no queda nada importado.
type OpeningStockImporter struct {
	txRunner ports.TxRunner
	ledger   *Ledger
}

// NewOpeningStockImporter construye el importador.
func NewOpeningStockImporter(txRunner ports.TxRunner, ledger *Ledger) *OpeningStockImporter {
	return &OpeningStockImporter{txRunner: txRunner, ledger: ledger}
}

// Import aplica rows para la empresa. userID puede ir vacío (proceso batch).
func (im *OpeningStockImporter) Import(ctx context.Context, companyID, userID string, rows []OpeningStockRow) (*OpeningStockResult, error) {
	if len(rows) == 0 {
		return nil, domain.ErrEmptyItems.WithMessage("el archivo no tiene filas")
	}
	res := &OpeningStockResult{ImportID: uuid.New().String(), Total: decimal.Zero}
	err := im.txRunner.Run(ctx, func(repos repository.Repos) error {
		for _, row := range rows {
			product, err := repos.Products.GetByCompanyAndSKU(ctx, companyID, strings.TrimSpace(row.SKU))
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound.WithMessage(fmt.Sprintf("línea %d: SKU %q no existe", row.Line, row.SKU))
			}
			_, err = im.ledger.Increase(ctx, repos, product.ID, row.Location, row.Quantity, MovementRef{
				CompanyID:     companyID,
				Type:          entity.MovementTypeAdjustment,
				ReferenceType: referenceOpeningStock,
				ReferenceID:   res.ImportID,
				Reason:        "saldo inicial",
				CreatedBy:     userID,
				UnitCost:      row.UnitCost,
			})
			if err != nil {
				return fmt.Errorf("línea %d: %w", row.Line, err)
			}
			res.Rows++
			res.Total = res.Total.Add(row.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
