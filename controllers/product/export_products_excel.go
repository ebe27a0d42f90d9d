package productcontroller

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func ExportProductsToExcel(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := svc.ExportProducts(c.Request.Context(), middleware.Session(c), &buf); err != nil {
			respondError(c, log, err, "Failed to write Excel file")
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
