package controllers

import (
	"net/http"

	"khoomi-api-io/storefront/pkg/catalog"
	"khoomi-api-io/storefront/pkg/services"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/gin-gonic/gin"
)

type SelectionController struct {
	selectionService services.SelectionService
}

func InitSelectionController(selectionService services.SelectionService) *SelectionController {
	return &SelectionController{selectionService: selectionService}
}

// Resolve handles GET /products/:slug/selection?color=&size=
func (sc *SelectionController) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		sel := catalog.Selection{Color: c.Query("color"), Size: c.Query("size")}
		result, err := sc.selectionService.Resolve(ctx, c.Param("slug"), sel)
		if err != nil {
			util.HandleKindError(c, err)
			return
		}

		message := "success"
		if _, err := result.Resolution.Require(); err != nil {
			message = err.Error()
		}
		util.HandleSuccess(c, http.StatusOK, message, result)
	}
}
