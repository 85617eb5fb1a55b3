package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shorter/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, fullURL string) (*entity.URL, error)
	UpdateDestination(ctx context.Context, shortCode, fullURL string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	ExtendExpiration(ctx context.Context, shortCode string, days int) (*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	now      func() time.Time
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		now:      time.Now,
	}
}

// renderError writes err as plain text. Domain failures map to client errors,
// everything else is logged and reported as a server error.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, entity.ErrInvalidURL):
		status, msg = http.StatusBadRequest, entity.ErrInvalidURL.Error()
	case errors.Is(err, entity.ErrDuplicateURL):
		status, msg = http.StatusConflict, entity.ErrDuplicateURL.Error()
	case errors.Is(err, entity.ErrURLNotFound):
		status, msg = http.StatusNotFound, entity.ErrURLNotFound.Error()
	default:
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		status, msg = http.StatusInternalServerError, serverErrorMsg
	}

	render.Status(r, status)
	render.PlainText(w, r, msg)
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.PlainText(w, r, msg)
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(w, r, emptyRequestBodyMsg)
			return
		}

		badRequest(w, r, invalidRequestBodyMsg)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		badRequest(w, r, validationErrorMessage(err))
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.FullURL)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, shortenResponse{ShortURL: url.ShortURL})
}

func (h *urlHandler) updateDestination(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortUrl")
	destinationURL := r.URL.Query().Get("destinationUrl")

	if _, err := h.useCase.UpdateDestination(r.Context(), shortCode, destinationURL); err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, true)
}

func (h *urlHandler) getDestination(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortUrl")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, destinationResponse{DestinationURL: url.FullURL})
}

func (h *urlHandler) extendExpiration(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortUrl")

	days, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil {
		badRequest(w, r, invalidDayMsg)
		return
	}

	if _, err := h.useCase.ExtendExpiration(r.Context(), shortCode, days); err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, true)
}

func (h *urlHandler) getURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortUrl")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url, h.now()))
}
