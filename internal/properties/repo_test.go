package properties

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
	"github.com/minpaku-suite/minpaku-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Property{}))
	return db
}

func TestSaveAndFindRoundTrip(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	property := &models.Property{
		Name:            "Kyoto Machiya",
		Currency:        enums.CurrencyJPY,
		BaseNightlyRate: decimal.NewFromInt(10000),
		SeasonRates: []models.SeasonRate{
			{
				Name:        "Sakura",
				Start:       time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
				End:         time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
				NightlyRate: decimal.NewFromInt(20000),
			},
		},
		IncludedGuests: 2,
		MaxGuests:      4,
	}
	require.NoError(t, repo.Save(ctx, property))
	require.NotEqual(t, uuid.Nil, property.ID)

	loaded, err := repo.Find(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kyoto Machiya", loaded.Name)
	assert.True(t, loaded.BaseNightlyRate.Equal(decimal.NewFromInt(10000)))
	require.Len(t, loaded.SeasonRates, 1)
	assert.Equal(t, "Sakura", loaded.SeasonRates[0].Name)
}

func TestFindNotFound(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.Find(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListOrdersByName(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Osaka Loft", "Kyoto Machiya", "Tokyo Flat"} {
		require.NoError(t, repo.Save(ctx, &models.Property{
			Name:            name,
			Currency:        enums.CurrencyJPY,
			BaseNightlyRate: decimal.NewFromInt(8000),
		}))
	}

	list, err := repo.List(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Kyoto Machiya", list[0].Name)
	assert.Equal(t, "Tokyo Flat", list[2].Name)
}

func TestDelete(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	property := &models.Property{Name: "Onsen Cabin", Currency: enums.CurrencyJPY, BaseNightlyRate: decimal.NewFromInt(12000)}
	require.NoError(t, repo.Save(ctx, property))
	require.NoError(t, repo.Delete(ctx, property.ID))

	_, err := repo.Find(ctx, property.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
