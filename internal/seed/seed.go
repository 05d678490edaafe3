package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cafe-service/internal/model"
	"cafe-service/internal/store"
	"cafe-service/prometheus"
)

// CafeStore is the store surface the loader needs.
type CafeStore interface {
	Create(ctx context.Context, params store.CafeParams) (*model.Cafe, error)
}

// Result summarizes one seed run.
type Result struct {
	Created int
	Skipped int
	Failed  int
}

// Loader populates the store from a remote JSON document containing an array
// of cafe objects. It runs outside the HTTP surface, at bootstrap.
type Loader struct {
	store  CafeStore
	client *http.Client
	log    *zap.Logger
}

func NewLoader(s CafeStore, log *zap.Logger) *Loader {
	return &Loader{
		store:  s,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Load fetches the seed document and creates each cafe through the store.
// Rows that fail validation (typically duplicates on a re-seed) are skipped;
// storage failures are counted and the run continues. Only fetch or decode
// problems abort the run.
func (l *Loader) Load(ctx context.Context, url string) (Result, error) {
	var result Result

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result, fmt.Errorf("failed to build seed request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("failed to fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("unexpected seed response status: %s", resp.Status)
	}

	var cafes []store.CafeParams
	if err := json.NewDecoder(resp.Body).Decode(&cafes); err != nil {
		return result, fmt.Errorf("failed to decode seed data: %w", err)
	}

	for _, params := range cafes {
		_, err := l.store.Create(ctx, params)
		switch {
		case err == nil:
			result.Created++
			prometheus.RecordSeedResult("created")
		case isValidationError(err):
			result.Skipped++
			prometheus.RecordSeedResult("skipped")
			l.log.Debug("Skipping seed cafe", zap.String("title", params.Title), zap.Error(err))
		default:
			result.Failed++
			prometheus.RecordSeedResult("failed")
			l.log.Warn("Failed to seed cafe", zap.String("title", params.Title), zap.Error(err))
		}
	}

	return result, nil
}

func isValidationError(err error) bool {
	var verrs store.ValidationErrors
	return errors.As(err, &verrs)
}
