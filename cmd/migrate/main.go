// migrate aplica o revierte las migraciones del esquema.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate steps -1
//	go run ./cmd/migrate version
//
// Lee la conexión de las mismas variables que la API (DATABASE_URL o DB_*).
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/almacen-faceid/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-faceid/pkg/config"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: migrate up|down|steps <n>|version")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	defer func() { _ = m.Close() }()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(os.Args) < 3 {
			log.Fatal().Msg("steps requiere un número (ej. -1)")
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatal().Err(convErr).Msg("número de pasos inválido")
		}
		err = m.Steps(n)
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal().Err(verr).Msg("leer versión")
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return
	default:
		log.Fatal().Str("command", os.Args[1]).Msg("comando desconocido")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("migración fallida")
	}
}
