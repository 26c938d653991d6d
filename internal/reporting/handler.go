package reporting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tollgate-lab/tollgate/internal/core/aggregation"
	httperr "github.com/tollgate-lab/tollgate/internal/core/errors"
)

// RegisterRoutes registers all report routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	reports := r.Group("/v1/reports")
	reports.GET("/revenue-per-hour", s.HandleRevenuePerHour)
	reports.GET("/top-plazas", s.HandleTopPlazas)
	reports.GET("/vehicle-types", s.HandleVehicleTypes)
}

// HandleRevenuePerHour handles GET /v1/reports/revenue-per-hour?city=
func (s *Service) HandleRevenuePerHour(c *gin.Context) {
	var query struct {
		City string `form:"city" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeInvalidParams(c, err)
		return
	}

	rows, err := s.RevenuePerHour(c.Request.Context(), query.City)
	if err != nil {
		writeReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HandleTopPlazas handles GET /v1/reports/top-plazas?limit=&month=
// month is YYYY-MM or RFC 3339; a missing limit ranks nothing.
func (s *Service) HandleTopPlazas(c *gin.Context) {
	var query struct {
		Limit int    `form:"limit"`
		Month string `form:"month" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeInvalidParams(c, err)
		return
	}

	month, err := aggregation.ParseMonth(query.Month)
	if err != nil {
		writeInvalidParams(c, err)
		return
	}

	rows, err := s.TopPlazasByRevenue(c.Request.Context(), query.Limit, month)
	if err != nil {
		writeReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HandleVehicleTypes handles GET /v1/reports/vehicle-types?plaza=
func (s *Service) HandleVehicleTypes(c *gin.Context) {
	var query struct {
		Plaza string `form:"plaza" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeInvalidParams(c, err)
		return
	}

	rows, err := s.VehicleTypeDistribution(c.Request.Context(), query.Plaza)
	if err != nil {
		writeReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func writeInvalidParams(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidQueryError,
		Message:   "Invalid query parameters",
		Details:   err.Error(),
	})
}

func writeReportError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("Report query timed out", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpStoreUnavailableError,
			Message:   "Report query timed out",
		})
		return
	}

	slog.Error("Report query failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to compute report",
	})
}
