package posserver

type CatalogItem struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Category  string `json:"category"`
}

type Settings struct {
	BusinessName   string            `json:"businessName"`
	TaxRatePercent string            `json:"taxRatePercent"`
	Theme          map[string]string `json:"theme,omitempty"`
}
