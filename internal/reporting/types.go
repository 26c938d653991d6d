package reporting

import "github.com/shopspring/decimal"

// HourlyRevenue is the revenue collected in one UTC hour-of-day, across all dates.
type HourlyRevenue struct {
	Hour         int             `json:"hour"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// PlazaRevenue is one plaza's revenue within a month.
type PlazaRevenue struct {
	Plaza        string          `json:"plaza"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// VehicleTypeCount is the number of passages of one vehicle type at a plaza.
type VehicleTypeCount struct {
	VehicleType string `json:"vehicle_type"`
	Count       int64  `json:"count"`
}

// Report names used in QueryError and span operations.
const (
	ReportRevenuePerHour          = "revenue_per_hour"
	ReportTopPlazasByRevenue      = "top_plazas_by_revenue"
	ReportVehicleTypeDistribution = "vehicle_type_distribution"
)
