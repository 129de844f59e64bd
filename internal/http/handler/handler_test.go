package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"libapi/internal/config"
	"libapi/internal/model"
	"libapi/internal/service"
	serviceMocks "libapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPaging = config.PagingConfig{DefaultPageSize: 10, MaxPageSize: 50}

type testServices struct {
	authors  *serviceMocks.MockCatalogService[model.Author]
	genres   *serviceMocks.MockCatalogService[model.Genre]
	books    *serviceMocks.MockCatalogService[model.Book]
	lendings *serviceMocks.MockCatalogService[model.BookLending]
	lending  *serviceMocks.MockLendingService
}

func newTestApp(t *testing.T) (*fiber.App, testServices) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := testServices{
		authors:  new(serviceMocks.MockCatalogService[model.Author]),
		genres:   new(serviceMocks.MockCatalogService[model.Genre]),
		books:    new(serviceMocks.MockCatalogService[model.Book]),
		lendings: new(serviceMocks.MockCatalogService[model.BookLending]),
		lending:  new(serviceMocks.MockLendingService),
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, db, Services{
		Authors:  m.authors,
		Genres:   m.genres,
		Books:    m.books,
		Lendings: m.lendings,
		Lending:  m.lending,
	}, testPaging, prometheus.NewRegistry())
	return app, m
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "libapi_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	app := fiber.New()
	app.Get("/metrics", Metrics(reg))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "libapi_test_total 1")
}

func TestListAuthors(t *testing.T) {
	app, m := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		page := &service.Page[model.Author]{
			Items: []model.Author{{ID: 4, FirstName: "Ann"}},
			Total: 7, Page: 2, PageSize: 3, TotalPages: 3,
		}
		m.authors.On("List", mock.Anything, service.ListQuery{Search: "ann", Page: 2, PageSize: 3}).Return(page, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/authors?search=ann&page=2&pageSize=3", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(7), body["total"])
		assert.Equal(t, float64(2), body["page"])
		assert.Equal(t, float64(3), body["pageSize"])
		assert.Equal(t, float64(3), body["totalPages"])
		assert.Len(t, body["data"], 1)
		m.authors.AssertExpectations(t)
	})

	t.Run("defaults and clamps paging", func(t *testing.T) {
		m.authors.On("List", mock.Anything, service.ListQuery{Page: 1, PageSize: 10}).Return(&service.Page[model.Author]{}, nil).Once()
		m.authors.On("List", mock.Anything, service.ListQuery{Page: 1, PageSize: 50}).Return(&service.Page[model.Author]{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/authors", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/authors?pageSize=500", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.authors.AssertExpectations(t)
	})

	t.Run("invalid query", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/authors?page=abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_QUERY", decodeError(t, resp).Error.Code)

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/authors?page=-1", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Contains(t, body.Error.Message, "page")
	})

	t.Run("service error", func(t *testing.T) {
		m.authors.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/authors", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
	})
}

func TestGetBook(t *testing.T) {
	app, m := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		book := &model.Book{ID: 3, Title: "Dune", Author: &model.Author{ID: 1, LastName: "Herbert"}}
		m.books.On("Get", mock.Anything, int64(3)).Return(book, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/books/3", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got model.Book
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "Dune", got.Title)
		require.NotNil(t, got.Author)
		assert.Equal(t, "Herbert", got.Author.LastName)
	})

	t.Run("not found", func(t *testing.T) {
		m.books.On("Get", mock.Anything, int64(9)).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/books/9", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-4"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/books/"+id, nil))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, id)
			assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
		}
	})
	m.books.AssertExpectations(t)
}

func TestCreateAuthor(t *testing.T) {
	app, m := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		m.authors.On("Create", mock.Anything, &model.Author{FirstName: "Ann", LastName: "Leckie"}).
			Return(&model.Author{ID: 1, FirstName: "Ann", LastName: "Leckie"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/authors", `{"first_name":" Ann ","last_name":"Leckie"}`))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got model.Author
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, int64(1), got.ID)
		m.authors.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/authors", `{"last_name":"Leckie"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, "first_name is required", body.Error.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/authors", `{"first_name":`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestCreateGenre_Conflict(t *testing.T) {
	app, m := newTestApp(t)
	m.genres.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: %w", service.ErrConflict, errors.New("UNIQUE constraint failed"))).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/genres", `{"name":"Fantasy"}`))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "CONFLICT", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "UNIQUE")
	m.genres.AssertExpectations(t)
}

func TestUpdateBook(t *testing.T) {
	app, m := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		want := &model.Book{Title: "Dune", ISBN: "978-0441013593", AuthorID: 1, GenreID: 2, PublishedYear: 1965}
		m.books.On("Update", mock.Anything, int64(5), want).Return(&model.Book{ID: 5, Title: "Dune"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/books/5",
			`{"title":"Dune","isbn":"978-0441013593","author_id":1,"genre_id":2,"published_year":1965}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.books.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPut, "/books/5", `{"title":"Dune","isbn":"x","author_id":0,"genre_id":2}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Message, "author_id is required")
	})
}

func TestDeleteAuthor(t *testing.T) {
	app, m := newTestApp(t)

	m.authors.On("Delete", mock.Anything, int64(2)).Return(nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/authors/2", nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	m.authors.On("Delete", mock.Anything, int64(3)).Return(fmt.Errorf("%w: fk", service.ErrConflict)).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/authors/3", nil))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	m.authors.AssertExpectations(t)
}

func TestLend(t *testing.T) {
	app, m := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		req := service.LendRequest{BorrowerName: "Breq", BorrowerEmail: "breq@radch.example", Days: 7}
		m.lending.On("Lend", mock.Anything, int64(4), req).Return(&model.BookLending{ID: 1, BookID: 4}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/books/4/lend",
			`{"borrower_name":"Breq","borrower_email":"breq@radch.example","days":7}`))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("unavailable", func(t *testing.T) {
		m.lending.On("Lend", mock.Anything, int64(5), mock.Anything).Return(nil, service.ErrBookUnavailable).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/books/5/lend",
			`{"borrower_name":"Breq","borrower_email":"breq@radch.example"}`))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "BOOK_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/books/5/lend",
			`{"borrower_name":"Breq","borrower_email":"not-an-email"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "borrower_email must be a valid email address", decodeError(t, resp).Error.Message)
	})
	m.lending.AssertExpectations(t)
}

func TestReturn(t *testing.T) {
	app, m := newTestApp(t)

	m.lending.On("Return", mock.Anything, int64(8)).Return(nil, service.ErrAlreadyReturned).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/lendings/8/return", nil))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_RETURNED", decodeError(t, resp).Error.Code)

	m.lending.On("Return", mock.Anything, int64(9)).Return(&model.BookLending{ID: 9}, nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/lendings/9/return", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.lending.AssertExpectations(t)
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
}
