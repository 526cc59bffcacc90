// internal/intake/validation.go
package intake

import (
	"fmt"
	"strings"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/validation"
	"canibuildit/internal/models"
)

// requiredFields returns the presence-checked field names for a step.
// Budget requiredness is a config decision, not a per-page variant.
func (s *Service) requiredFields(step models.WizardStep) []string {
	switch step {
	case models.StepPersonalInfo:
		return []string{"name", "address"}
	case models.StepProjectDetails:
		required := []string{"projectType", "projectDescription"}
		if s.config.RequireBudget {
			required = append(required, "budget")
		}
		return required
	default:
		return nil
	}
}

// validateStep gates a Next transition on the current step's required fields.
func (s *Service) validateStep(step models.WizardStep, data models.PropertyIntakeData) error {
	fields := map[string]string{
		"name":               data.Name,
		"address":            data.Address,
		"projectType":        string(data.ProjectType),
		"projectDescription": data.ProjectDescription,
		"budget":             data.Budget,
	}

	missing := validation.RequireNonEmpty(fields, s.requiredFields(step))
	if len(missing) > 0 {
		return apperrors.NewWizardStepBlockedError(
			fmt.Sprintf("step %d: missing %s", step, strings.Join(missing, ", ")))
	}

	if step == models.StepProjectDetails &&
		data.ProjectType != models.ProjectTypeResidential &&
		data.ProjectType != models.ProjectTypeCommercial {
		return apperrors.NewValidationFailedError(
			fmt.Sprintf("projectType must be residential or commercial, got %q", data.ProjectType))
	}

	return nil
}
