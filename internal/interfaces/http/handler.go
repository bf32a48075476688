package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// base dependencias compartidas por los handlers: validación de DTOs y logger.
type base struct {
	validate *validator.Validate
	log      zerolog.Logger
}

func newBase(log zerolog.Logger) base {
	return base{validate: newValidator(), log: log}
}
