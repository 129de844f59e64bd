package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"libapi/internal/config"
	"libapi/internal/model"
	"libapi/internal/service"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Authors  service.CatalogService[model.Author]
	Genres   service.CatalogService[model.Genre]
	Books    service.CatalogService[model.Book]
	Lendings service.CatalogService[model.BookLending]
	Lending  service.LendingService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, paging config.PagingConfig, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", Metrics(gatherer))

	authors := app.Group("/authors")
	authors.Get("/", List(svc.Authors, paging))
	authors.Post("/", Create[model.Author, authorRequest](svc.Authors))
	authors.Get("/:id", Get(svc.Authors))
	authors.Put("/:id", Update[model.Author, authorRequest](svc.Authors))
	authors.Delete("/:id", Delete(svc.Authors))

	genres := app.Group("/genres")
	genres.Get("/", List(svc.Genres, paging))
	genres.Post("/", Create[model.Genre, genreRequest](svc.Genres))
	genres.Get("/:id", Get(svc.Genres))
	genres.Put("/:id", Update[model.Genre, genreRequest](svc.Genres))
	genres.Delete("/:id", Delete(svc.Genres))

	books := app.Group("/books")
	books.Get("/", List(svc.Books, paging))
	books.Post("/", Create[model.Book, bookRequest](svc.Books))
	books.Get("/:id", Get(svc.Books))
	books.Put("/:id", Update[model.Book, bookRequest](svc.Books))
	books.Delete("/:id", Delete(svc.Books))
	books.Post("/:id/lend", Lend(svc.Lending))

	lendings := app.Group("/lendings")
	lendings.Get("/", List(svc.Lendings, paging))
	lendings.Get("/:id", Get(svc.Lendings))
	lendings.Post("/:id/return", Return(svc.Lending))
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics serves the Prometheus exposition of gatherer.
func Metrics(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
