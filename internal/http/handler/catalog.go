package handler

import (
	"github.com/gofiber/fiber/v2"

	"libapi/internal/config"
	"libapi/internal/repository"
	"libapi/internal/service"
)

// parseID reads the positive :id route parameter.
func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

// pageQuery applies paging defaults: a missing page is the first one, a
// missing size is the configured default and sizes above the maximum are
// clamped.
func pageQuery(q listQuery, paging config.PagingConfig) service.ListQuery {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = paging.DefaultPageSize
	}
	if paging.MaxPageSize > 0 && q.PageSize > paging.MaxPageSize {
		q.PageSize = paging.MaxPageSize
	}
	return service.ListQuery{Search: q.Search, Page: q.Page, PageSize: q.PageSize}
}

// List handles GET /<collection>?search=&page=&pageSize=.
func List[T repository.Entity](svc service.CatalogService[T], paging config.PagingConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q listQuery
		if err := c.QueryParser(&q); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
		}
		if err := validate.Struct(q); err != nil {
			return writeValidationError(c, err)
		}

		res, err := svc.List(c.UserContext(), pageQuery(q, paging))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Get handles GET /<collection>/:id.
func Get[T repository.Entity](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		item, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// Create handles POST /<collection> with a JSON body of type R.
func Create[T repository.Entity, R entityRequest[T]](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeValidationError(c, err)
		}

		item, err := svc.Create(c.UserContext(), req.toEntity())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// Update handles PUT /<collection>/:id; the body replaces the whole entity.
func Update[T repository.Entity, R entityRequest[T]](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req R
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeValidationError(c, err)
		}

		item, err := svc.Update(c.UserContext(), id, req.toEntity())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// Delete handles DELETE /<collection>/:id.
func Delete[T repository.Entity](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
