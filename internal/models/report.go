// internal/models/report.go
package models

import "time"

// PropertyReportData is the flat bag of planning attributes populated from
// council and LINZ responses.
type PropertyReportData struct {
	Address           string   `json:"address"`
	Zoning            string   `json:"zoning"`
	ZoneDescription   string   `json:"zoneDescription,omitempty"`
	Overlays          []string `json:"overlays"`
	Hazards           []string `json:"hazards"`
	ClimateZone       string   `json:"climateZone,omitempty"`
	WindZone          string   `json:"windZone,omitempty"`
	FloodProne        bool     `json:"floodProne"`
	CoastalErosion    bool     `json:"coastalErosion"`
	HeritageListed    bool     `json:"heritageListed"`
	WaterConnected    bool     `json:"waterConnected"`
	WastewaterNearby  bool     `json:"wastewaterNearby"`
	StormwaterNearby  bool     `json:"stormwaterNearby"`
	ParcelID          string   `json:"parcelId,omitempty"`
}

// ReportStatus is the payment/generation lifecycle of a premium report.
type ReportStatus string

const (
	ReportStatusPendingPayment ReportStatus = "pending_payment"
	ReportStatusPaid           ReportStatus = "paid"
	ReportStatusGenerated      ReportStatus = "generated"
	ReportStatusFailed         ReportStatus = "failed"
)

// PremiumReport is a generated consent-assessment report.
type PremiumReport struct {
	ID             string             `json:"id"`
	IdempotencyKey string             `json:"idempotencyKey"`
	Email          string             `json:"email,omitempty"`
	Intake         PropertyIntakeData `json:"intake"`
	Analysis       PropertyReportData `json:"analysis"`
	Summary        string             `json:"summary"`
	Markdown       string             `json:"markdown"`
	Status         ReportStatus       `json:"status"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}
