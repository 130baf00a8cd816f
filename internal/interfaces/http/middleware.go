package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
)

// HTTPObserver recibe la duración y el estado de cada petición atendida.
type HTTPObserver interface {
	HTTPRequest(method, route string, status int, elapsed time.Duration)
}

// RequestTimeout acota el contexto de la petición. Los casos de uso lo usan como tope de
// espera (locks de stock, lecturas); la escritura ya iniciada no se cancela.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// ObserveRequests registra método, ruta (plantilla) y estado de cada petición.
func ObserveRequests(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		obs.HTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

// RateLimit limita globalmente las peticiones que pasan por el handler (token bucket).
// Sin lugar en el bucket responde 429 sin esperar.
func RateLimit(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || limiter.Allow() {
			return c.Next()
		}
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
			Code:    "RATE_LIMITED",
			Message: "demasiadas solicitudes, intente de nuevo",
		})
	}
}

// NewWriteLimiter construye el limitador de escrituras; perSecond <= 0 lo deshabilita.
func NewWriteLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
