package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	admindomain "github.com/Apurer/go-gin-pos-server/internal/domains/admin/domain"
	adminports "github.com/Apurer/go-gin-pos-server/internal/domains/admin/ports"
)

// AdminAPI exposes catalog, employee and settings maintenance.
type AdminAPI struct {
	gateway adminports.Gateway
}

func NewAdminAPI(gateway adminports.Gateway) AdminAPI {
	return AdminAPI{gateway: gateway}
}

// Post /v1/admin/items
// Create a catalog item. A rejected form is echoed back for correction.
func (api *AdminAPI) CreateItem(c *gin.Context) {
	var payload ItemCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	form := &admindomain.ItemForm{Name: payload.Name, Price: string(payload.Price), Category: payload.Category}
	id, err := api.gateway.SubmitItemForm(c.Request.Context(), form)
	if err != nil {
		problem, ok := responder.Map(err)
		if !ok {
			respondServiceError(c, err)
			return
		}
		respondProblem(c, problem.WithExtension("form", ItemCreate{Name: form.Name, Price: Amount(form.Price), Category: form.Category}))
		return
	}
	c.JSON(http.StatusCreated, Created{Id: id})
}

// Patch /v1/admin/items/:itemId
// Update the given item fields
func (api *AdminAPI) UpdateItem(c *gin.Context) {
	id, ok := bindPathParam(c, "itemId")
	if !ok {
		return
	}
	var payload ItemUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	patch := admindomain.ItemPatch{Name: payload.Name, Price: payload.Price.ptr(), Category: payload.Category}
	if err := api.gateway.UpdateItem(c.Request.Context(), id, patch); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /v1/admin/items/:itemId
// Request deletion of an item; it is removed only once confirmed
func (api *AdminAPI) DeleteItem(c *gin.Context) {
	id, ok := bindPathParam(c, "itemId")
	if !ok {
		return
	}
	confirmation, err := api.gateway.RequestItemDeletion(c.Request.Context(), id)
	api.respondConfirmation(c, http.StatusAccepted, confirmation, err)
}

// Post /v1/admin/employees
// Create an employee
func (api *AdminAPI) CreateEmployee(c *gin.Context) {
	var payload EmployeeCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	id, err := api.gateway.CreateEmployee(c.Request.Context(), admindomain.EmployeeInput{Username: payload.Username, Password: payload.Password})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Created{Id: id})
}

// Patch /v1/admin/employees/:employeeId
// Update the given employee fields
func (api *AdminAPI) UpdateEmployee(c *gin.Context) {
	id, ok := bindPathParam(c, "employeeId")
	if !ok {
		return
	}
	var payload EmployeeUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	patch := admindomain.EmployeePatch{Username: payload.Username, Password: payload.Password}
	if err := api.gateway.UpdateEmployee(c.Request.Context(), id, patch); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /v1/admin/employees/:employeeId
// Request deletion of an employee; it is removed only once confirmed
func (api *AdminAPI) DeleteEmployee(c *gin.Context) {
	id, ok := bindPathParam(c, "employeeId")
	if !ok {
		return
	}
	confirmation, err := api.gateway.RequestEmployeeDeletion(c.Request.Context(), id)
	api.respondConfirmation(c, http.StatusAccepted, confirmation, err)
}

// Patch /v1/admin/settings
// Update business settings
func (api *AdminAPI) UpdateSettings(c *gin.Context) {
	var payload SettingsUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	patch := admindomain.SettingsPatch{
		BusinessName:   payload.BusinessName,
		TaxRatePercent: payload.TaxRatePercent.ptr(),
		Theme:          payload.Theme,
	}
	if err := api.gateway.UpdateSettings(c.Request.Context(), patch); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/admin/confirmations
// Pending deletions
func (api *AdminAPI) ListConfirmations(c *gin.Context) {
	pending := api.gateway.Pending(c.Request.Context())
	result := make([]Confirmation, 0, len(pending))
	for _, confirmation := range pending {
		result = append(result, toConfirmation(confirmation))
	}
	c.JSON(http.StatusOK, result)
}

// Post /v1/admin/confirmations/:token
// Confirm a pending deletion
func (api *AdminAPI) Confirm(c *gin.Context) {
	token, ok := bindPathParam(c, "token")
	if !ok {
		return
	}
	confirmation, err := api.gateway.Confirm(c.Request.Context(), token)
	api.respondConfirmation(c, http.StatusOK, confirmation, err)
}

// Delete /v1/admin/confirmations/:token
// Cancel a pending deletion
func (api *AdminAPI) Cancel(c *gin.Context) {
	token, ok := bindPathParam(c, "token")
	if !ok {
		return
	}
	if err := api.gateway.Cancel(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *AdminAPI) respondConfirmation(c *gin.Context, status int, confirmation admindomain.Confirmation, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(status, toConfirmation(confirmation))
}

func toConfirmation(confirmation admindomain.Confirmation) Confirmation {
	return Confirmation{
		Token:       confirmation.Token,
		Kind:        string(confirmation.Kind),
		TargetId:    confirmation.TargetID,
		Label:       confirmation.Label,
		RequestedAt: confirmation.RequestedAt,
		ExpiresAt:   confirmation.ExpiresAt,
	}
}
