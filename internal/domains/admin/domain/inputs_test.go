package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
)

func strPtr(s string) *string { return &s }

func TestItemInput_DefaultsCategory(t *testing.T) {
	item, err := ItemInput{Name: "Burger", Price: "10"}.Item()
	require.NoError(t, err)
	assert.Equal(t, catalogdomain.CategoryMain, item.Category)
	assert.True(t, decimal.NewFromInt(10).Equal(item.UnitPrice))
}

func TestSettingsPatch_MergesTheme(t *testing.T) {
	current := settingsdomain.Business{
		BusinessName:   "Stand",
		TaxRatePercent: decimal.RequireFromString("8.25"),
		Theme:          map[string]string{"primary": "indigo"},
	}
	next, err := SettingsPatch{Theme: map[string]string{"accent": "purple"}}.Apply(current)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"primary": "indigo", "accent": "purple"}, next.Theme)
	assert.Len(t, current.Theme, 1, "current settings are not modified")

	_, err = SettingsPatch{TaxRatePercent: strPtr("eight")}.Apply(current)
	require.ErrorIs(t, err, settingsdomain.ErrInvalidTaxRate)

	_, err = SettingsPatch{}.Apply(current)
	require.ErrorIs(t, err, ErrEmptyPatch)
}

func TestConfirmation_Expired(t *testing.T) {
	now := time.Now()
	c := Confirmation{ExpiresAt: now.Add(time.Second)}
	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(time.Second)))
}

func TestItemForm_Reset(t *testing.T) {
	form := ItemForm{Name: "Soda", Price: "1", Category: "drink"}
	assert.Equal(t, ItemInput{Name: "Soda", Price: "1", Category: "drink"}, form.Input())
	form.Reset()
	assert.Equal(t, ItemForm{}, form)
}
