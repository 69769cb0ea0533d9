package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
)

type CatalogReader interface {
	CurrentSnapshot() []catalogdomain.Item
}

type SettingsReader interface {
	Current() settingsdomain.Business
}

// CatalogAPI serves the mirrored catalog and settings.
type CatalogAPI struct {
	catalog  CatalogReader
	settings SettingsReader
}

func NewCatalogAPI(catalog CatalogReader, settings SettingsReader) CatalogAPI {
	return CatalogAPI{catalog: catalog, settings: settings}
}

// Get /v1/catalog
// List the items currently mirrored from the remote catalog
func (api *CatalogAPI) ListCatalog(c *gin.Context) {
	items := api.catalog.CurrentSnapshot()
	result := make([]CatalogItem, 0, len(items))
	for _, item := range items {
		result = append(result, toCatalogItem(item))
	}
	c.JSON(http.StatusOK, result)
}

// Get /v1/settings
// Business settings in effect
func (api *CatalogAPI) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, toSettings(api.settings.Current()))
}

func toCatalogItem(item catalogdomain.Item) CatalogItem {
	return CatalogItem{
		Id:        item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice.StringFixed(2),
		Category:  string(item.Category),
	}
}

func toSettings(b settingsdomain.Business) Settings {
	return Settings{
		BusinessName:   b.BusinessName,
		TaxRatePercent: b.TaxRatePercent.String(),
		Theme:          b.Theme,
	}
}
