// import_stock carga saldos iniciales de inventario desde un CSV separado por punto y coma:
//
//	sku;location;quantity;unit_cost
//
// Acepta UTF-8 o ISO-8859-1 (exportaciones de sistemas anteriores). unit_cost es opcional.
//
// Uso: go run ./cmd/import_stock -company <uuid> [-user <uuid>] archivo.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "ID de la empresa (obligatorio)")
	userID := flag.String("user", "", "ID del usuario que registra el ajuste")
	flag.Parse()
	if *companyID == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_stock -company <uuid> [-user <uuid>] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("abrir archivo")
	}
	rows, err := readRows(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	im := inventory.NewOpeningStockImporter(postgres.NewTxRunner(pool, cfg.DB.LockTimeout), inventory.NewLedger(nil))
	res, err := im.Import(ctx, *companyID, *userID, rows)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("importación revertida")
		os.Exit(1)
	}
	log.Info().
		Str("file", path).
		Str("import_id", res.ImportID).
		Int("rows", res.Rows).
		Str("total", res.Total.String()).
		Msg("saldos iniciales importados")
}
