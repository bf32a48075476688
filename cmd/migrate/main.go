package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/dotacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/dotacion-api/pkg/config"
	"github.com/jhoicas/dotacion-api/pkg/logger"
)

func main() {
	logLevel := flag.String("log-level", "info", "nivel de log (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: *logLevel, Service: "migrate"})

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	defer func() {
		if err := mg.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	log.Info().Str("command", command).Msg("CLI de migraciones")

	switch command {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "step":
		n, perr := intArg(args, "step <n>")
		if perr != nil {
			log.Fatal().Err(perr).Msg("argumento inválido")
		}
		err = mg.Steps(n)
	case "force":
		v, perr := intArg(args, "force <version>")
		if perr != nil {
			log.Fatal().Err(perr).Msg("argumento inválido")
		}
		err = mg.Force(v)
	case "version":
		version, dirty, verr := mg.Version()
		if verr != nil {
			err = verr
			break
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("versión actual")
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("migración fallida")
	}
}

func intArg(args []string, usage string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("uso: migrate %s", usage)
	}
	return strconv.Atoi(args[1])
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Uso: migrate [flags] <comando> [args]

Comandos:
  up                aplica todas las migraciones pendientes
  down              revierte todas las migraciones
  step <n>          aplica n migraciones (negativo revierte)
  force <version>   fija la versión sin ejecutar (sale de estado dirty)
  version           muestra la versión actual

Flags:`)
	flag.PrintDefaults()
}
