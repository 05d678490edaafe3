package store

import (
	"context"
	"os"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cafe-service/internal/model"
)

// newTestStore connects to the database named by TEST_DATABASE_URL and
// returns a store over a clean cafes table. Tests are skipped when the
// variable is unset so the unit suite stays runnable without Postgres.
func newTestStore(t *testing.T) *CafeStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set - skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Cafe{}))
	require.NoError(t, db.Exec("TRUNCATE TABLE cafes RESTART IDENTITY").Error)

	return NewCafeStore(db)
}

func TestCreatePersistsCafe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	picture := "https://example.com/cafe.jpg"
	hours := datatypes.JSON(`{"Mon":["09:00-17:00"],"Tue":["10:00-14:00","15:00-18:00"]}`)

	cafe, err := s.Create(ctx, CafeParams{
		Title:    "Blue Bottle",
		Address:  "300 Webster St",
		Picture:  &picture,
		Hours:    hours,
		Criteria: pq.StringArray{"Wifi", "Coffee"},
	})
	require.NoError(t, err)
	assert.NotZero(t, cafe.ID)
	assert.False(t, cafe.CreatedAt.IsZero())

	// Read back and confirm structured fields survive untouched.
	cafes, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, cafes, 1)
	assert.Equal(t, "Blue Bottle", cafes[0].Title)
	assert.Equal(t, "300 Webster St", cafes[0].Address)
	require.NotNil(t, cafes[0].Picture)
	assert.Equal(t, picture, *cafes[0].Picture)
	assert.Equal(t, string(hours), string(cafes[0].Hours))
	assert.Equal(t, pq.StringArray{"Wifi", "Coffee"}, cafes[0].Criteria)
}

func TestCreateRejectsDuplicateTitleAddress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	params := CafeParams{Title: "Blue Bottle", Address: "300 Webster St"}

	_, err := s.Create(ctx, params)
	require.NoError(t, err)

	_, err = s.Create(ctx, params)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, ValidationErrors{"title": {MsgTaken}}, verrs)

	// Exactly one row, the failed create wrote nothing.
	cafes, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cafes, 1)

	// Same title at a different address is a different cafe.
	_, err = s.Create(ctx, CafeParams{Title: "Blue Bottle", Address: "1 Ferry Building"})
	require.NoError(t, err)
}

func TestCreateBlankFieldsWriteNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, CafeParams{})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, ValidationErrors{
		"title":   {MsgBlank},
		"address": {MsgBlank},
	}, verrs)

	cafes, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, cafes)
}

func TestListByTitleMatchesSubstringCaseInsensitively(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, c := range []CafeParams{
		{Title: "Blue Bottle", Address: "300 Webster St"},
		{Title: "blue cup", Address: "12 Main St"},
		{Title: "Red Door", Address: "9 Oak Ave"},
	} {
		_, err := s.Create(ctx, c)
		require.NoError(t, err)
	}

	cafes, err := s.ListByTitle(ctx, "blue")
	require.NoError(t, err)
	titles := make([]string, 0, len(cafes))
	for _, c := range cafes {
		titles = append(titles, c.Title)
	}
	assert.ElementsMatch(t, []string{"Blue Bottle", "blue cup"}, titles)
}

func TestListByTitleTreatsLikeMetacharactersLiterally(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, c := range []CafeParams{
		{Title: "100% Arabica", Address: "1 Bean St"},
		{Title: "100x Arabica", Address: "2 Bean St"},
	} {
		_, err := s.Create(ctx, c)
		require.NoError(t, err)
	}

	cafes, err := s.ListByTitle(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, cafes, 1)
	assert.Equal(t, "100% Arabica", cafes[0].Title)
}

func TestListAllIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, c := range []CafeParams{
		{Title: "Blue Bottle", Address: "300 Webster St"},
		{Title: "Red Door", Address: "9 Oak Ave"},
	} {
		_, err := s.Create(ctx, c)
		require.NoError(t, err)
	}

	first, err := s.ListAll(ctx)
	require.NoError(t, err)
	second, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
