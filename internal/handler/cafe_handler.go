package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cafe-service/internal/model"
	"cafe-service/internal/store"
	"cafe-service/pkg/logger"
	"cafe-service/prometheus"
)

// CafeStore is the store surface the cafe endpoints depend on.
type CafeStore interface {
	ListAll(ctx context.Context) ([]model.Cafe, error)
	ListByTitle(ctx context.Context, fragment string) ([]model.Cafe, error)
	Create(ctx context.Context, params store.CafeParams) (*model.Cafe, error)
}

var cafeStore CafeStore

// InitCafeHandler wires the cafe endpoints to a store.
func InitCafeHandler(s CafeStore) {
	cafeStore = s
}

// createCafeRequest is the POST body envelope. Unknown fields inside "cafe"
// are dropped during binding rather than rejected.
type createCafeRequest struct {
	Cafe *store.CafeParams `json:"cafe"`
}

// ListCafes handles GET /api/v1/cafes with an optional title filter
func ListCafes(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCafeOperation("list")

	ctx := c.Request().Context()

	var (
		cafes []model.Cafe
		err   error
	)

	// An empty title param means "no filter", same as omitting it.
	if title := c.QueryParam("title"); title != "" {
		log.Info("Listing cafes by title", zap.String("title", title))
		cafes, err = cafeStore.ListByTitle(ctx, title)
	} else {
		log.Info("Listing all cafes")
		cafes, err = cafeStore.ListAll(ctx)
	}
	if err != nil {
		log.Error("Failed to list cafes", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve cafes",
		})
	}

	sortNewestFirst(cafes)
	if cafes == nil {
		cafes = []model.Cafe{}
	}

	log.Info("Cafes retrieved", zap.Int("count", len(cafes)))
	return c.JSON(http.StatusOK, cafes)
}

// CreateCafe handles POST /api/v1/cafes
func CreateCafe(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCafeOperation("create")

	var req createCafeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Cafe == nil {
		log.Warn("Request body missing cafe envelope")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "cafe parameter is required",
		})
	}

	cafe, err := cafeStore.Create(c.Request().Context(), *req.Cafe)
	if err != nil {
		var verrs store.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("Cafe validation failed",
				zap.String("title", req.Cafe.Title),
				zap.Any("errors", verrs))
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error": verrs,
			})
		}
		log.Error("Failed to create cafe",
			zap.String("title", req.Cafe.Title),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create cafe",
		})
	}

	log.Info("Cafe created",
		zap.Uint("cafe_id", cafe.ID),
		zap.String("title", cafe.Title))
	return c.JSON(http.StatusCreated, cafe)
}

// sortNewestFirst orders cafes by creation time, newest first. Ordering is a
// handler concern so the store's reads stay filter-only.
func sortNewestFirst(cafes []model.Cafe) {
	sort.SliceStable(cafes, func(i, j int) bool {
		return cafes[i].CreatedAt.After(cafes[j].CreatedAt)
	})
}
