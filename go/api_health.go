package posserver

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// HealthCheck is satisfied by every mirror.
type HealthCheck interface {
	Healthy() bool
	LastError() error
}

type HealthAPI struct {
	checks map[string]HealthCheck
}

func NewHealthAPI(checks map[string]HealthCheck) HealthAPI {
	return HealthAPI{checks: checks}
}

type componentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type healthReport struct {
	Status     string            `json:"status"`
	Components []componentHealth `json:"components"`
}

// Get /healthz
// Mirror subscription health
func (api *HealthAPI) Healthz(c *gin.Context) {
	report := healthReport{Status: "ok", Components: make([]componentHealth, 0, len(api.checks))}
	for name, check := range api.checks {
		component := componentHealth{Name: name, Healthy: check.Healthy()}
		if err := check.LastError(); err != nil {
			component.Error = err.Error()
		}
		if !component.Healthy {
			report.Status = "degraded"
		}
		report.Components = append(report.Components, component)
	}
	sort.Slice(report.Components, func(i, j int) bool { return report.Components[i].Name < report.Components[j].Name })
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
