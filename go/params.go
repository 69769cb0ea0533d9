package posserver

import (
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// bindPathParam binds a required simple-style path parameter.
func bindPathParam(c *gin.Context, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		responder.BadRequest(c, err.Error())
		return "", false
	}
	return value, true
}
