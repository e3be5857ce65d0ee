package v1

import (
	"net/http"

	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	dashboardUC domain.DashboardUsecase
}

func NewDashboardHandler(protected *gin.RouterGroup, dashboardUC domain.DashboardUsecase) {
	handler := &DashboardHandler{dashboardUC: dashboardUC}

	protected.GET("/dashboard", handler.Stats)
	protected.GET("/dashboard/export", handler.Export)
}

// Stats godoc
// @Summary      Dashboard overview
// @Description  Row counts per section, last update time and the section catalog.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.DashboardStats}
// @Failure      502  {object}  response.Response
// @Router       /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardUC.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Quiet(c, http.StatusOK, stats)
}

// Export godoc
// @Summary      Export portfolio content
// @Description  Downloads every section of the signed-in admin as an Excel workbook, one sheet per section.
// @Tags         dashboard
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      502  {object}  response.Response
// @Router       /dashboard/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	data, filename, err := h.dashboardUC.Export(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}
