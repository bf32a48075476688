package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// HeaderIdempotencyKey header que identifica un POST para no aplicarlo dos veces.
const HeaderIdempotencyKey = "Idempotency-Key"

// Idempotency marca la clave antes de ejecutar el handler. La segunda petición con la misma
// clave (por usuario) dentro del TTL recibe 409 DUPLICATE_REQUEST. Si el handler responde
// con error (>= 400) la clave se libera para permitir el reintento.
// Sin header la petición pasa sin control.
func Idempotency(store repository.IdempotencyStore, ttl time.Duration, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > 128 {
			return badRequest(c, "INVALID_IDEMPOTENCY_KEY", "Idempotency-Key admite hasta 128 caracteres")
		}
		scoped := GetUserID(c) + ":" + c.Path() + ":" + key
		first, err := store.MarkProcessed(c.Context(), scoped, ttl)
		if err != nil {
			log.Error().Err(err).Msg("store de idempotencia no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar la Idempotency-Key, intente más tarde"})
		}
		if !first {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "solicitud ya procesada (Idempotency-Key repetida)"})
		}
		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if ferr := store.Forget(c.Context(), scoped); ferr != nil {
				log.Warn().Err(ferr).Msg("no se pudo liberar la Idempotency-Key")
			}
		}
		return err
	}
}
