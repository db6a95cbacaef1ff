// migrate aplica o revierte las migraciones embebidas del esquema.
//
// Uso: go run ./cmd/migrate [up|down|steps N|version|force V]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/erp-core/internal/infrastructure/migration"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	m, err := migration.New(cfg.DB.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch cmd {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps", "force":
		if len(args) < 2 {
			return fmt.Errorf("%s requiere un número", cmd)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%s: número inválido %q", cmd, args[1])
		}
		if cmd == "steps" {
			return m.Steps(n)
		}
		return m.Force(n)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("comando desconocido %q (up|down|steps N|version|force V)", cmd)
	}
}
