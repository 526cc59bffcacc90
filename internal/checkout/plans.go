// internal/checkout/plans.go
package checkout

import (
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/models"
)

// plans is the static pricing table. Prices are NZD cents.
var plans = []models.PricingPlan{
	{
		ID:    "basic-assessment",
		Name:  "Basic Assessment",
		Price: 0,
		Features: []string{
			"Zoning and overlay summary",
			"Consent likelihood indication",
			"Chat-based property Q&A",
		},
	},
	{
		ID:    "premium-report",
		Name:  "Premium Property Report",
		Price: 4900,
		Features: []string{
			"Everything in Basic",
			"Full hazard and infrastructure analysis",
			"Written feasibility assessment",
			"Downloadable report document",
		},
	},
	{
		ID:    "pro-monthly",
		Name:  "Professional Monthly",
		Price: 9900,
		Features: []string{
			"Unlimited premium reports",
			"Priority report generation",
			"Email and SMS notifications",
		},
		IsSubscription: true,
	},
}

// Plans returns the full pricing table.
func Plans() []models.PricingPlan {
	out := make([]models.PricingPlan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan.
func PlanByID(id string) (*models.PricingPlan, error) {
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, apperrors.NewPlanNotFoundError(id)
}
