package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// PageRequest lê page/limit da query string
func PageRequest(c *gin.Context) (sales.PageRequest, bool) {
	req, err := sales.ParsePageRequest(c.Query("page"), c.Query("limit"))
	if err != nil {
		WriteError(c, err)
		return req, false
	}
	return req, true
}

// Int64Param lê um parâmetro de rota inteiro positivo
func Int64Param(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(c, sales.Validation(name+" must be a positive integer", map[string]any{name: raw}))
		return 0, false
	}
	return id, true
}
