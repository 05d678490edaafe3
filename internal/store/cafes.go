package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cafe-service/internal/model"
	"cafe-service/prometheus"
)

// CafeParams carries the caller-supplied fields for a new cafe. Fields not
// listed here are not accepted by the store.
type CafeParams struct {
	Title    string         `json:"title"`
	Address  string         `json:"address"`
	Picture  *string        `json:"picture"`
	Hours    datatypes.JSON `json:"hours"`
	Criteria pq.StringArray `json:"criteria"`
}

// CafeStore owns the cafe schema, validation rules and persistence.
type CafeStore struct {
	db *gorm.DB
}

func NewCafeStore(db *gorm.DB) *CafeStore {
	return &CafeStore{db: db}
}

// ListAll returns every stored cafe in storage order. Ordering policy is the
// caller's job.
func (s *CafeStore) ListAll(ctx context.Context) ([]model.Cafe, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var cafes []model.Cafe
	if err := s.db.WithContext(ctx).Find(&cafes).Error; err != nil {
		return nil, err
	}
	return cafes, nil
}

// ListByTitle returns the cafes whose title contains the given fragment,
// case-insensitively. LIKE metacharacters in the fragment match literally.
func (s *CafeStore) ListByTitle(ctx context.Context, fragment string) ([]model.Cafe, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var cafes []model.Cafe
	pattern := "%" + escapeLike(fragment) + "%"
	if err := s.db.WithContext(ctx).Where("title ILIKE ?", pattern).Find(&cafes).Error; err != nil {
		return nil, err
	}
	return cafes, nil
}

// Create validates the params and persists a new cafe. A validation failure
// is returned as ValidationErrors and leaves the store untouched. The
// (title, address) uniqueness rule is checked upfront inside the insert
// transaction, with the database's unique index as the backstop for races.
func (s *CafeStore) Create(ctx context.Context, params CafeParams) (*model.Cafe, error) {
	if verrs := params.validate(); len(verrs) > 0 {
		return nil, verrs
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	cafe := model.Cafe{
		Title:    params.Title,
		Address:  params.Address,
		Picture:  params.Picture,
		Hours:    params.Hours,
		Criteria: params.Criteria,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Cafe{}).
			Where("title = ? AND address = ?", params.Title, params.Address).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ValidationErrors{"title": {MsgTaken}}
		}
		return tx.Create(&cafe).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent create; same outcome as the
			// upfront check.
			return nil, ValidationErrors{"title": {MsgTaken}}
		}
		return nil, err
	}
	return &cafe, nil
}

func (p CafeParams) validate() ValidationErrors {
	verrs := ValidationErrors{}
	if strings.TrimSpace(p.Title) == "" {
		verrs.add("title", MsgBlank)
	}
	if strings.TrimSpace(p.Address) == "" {
		verrs.add("address", MsgBlank)
	}
	return verrs
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(fragment string) string {
	return likeEscaper.Replace(fragment)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
