// internal/models/intake.go
package models

import "time"

// ProjectType is the kind of building project being assessed.
type ProjectType string

const (
	ProjectTypeResidential ProjectType = "residential"
	ProjectTypeCommercial  ProjectType = "commercial"
)

// WizardStep identifies a step of the intake wizard.
type WizardStep int

const (
	StepPersonalInfo   WizardStep = 1
	StepProjectDetails WizardStep = 2
	StepReview         WizardStep = 3
)

// WizardState is the lifecycle state of an intake wizard instance.
type WizardState string

const (
	WizardStateDraft     WizardState = "draft"
	WizardStateSubmitted WizardState = "submitted"
)

// Coordinates is a WGS84 point attached to a resolved address.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PropertyIntakeData is the struct the wizard accumulates and hands off.
type PropertyIntakeData struct {
	Name               string       `json:"name"`
	Address            string       `json:"address"`
	Coordinates        *Coordinates `json:"coordinates,omitempty"`
	ProjectType        ProjectType  `json:"projectType"`
	ProjectDescription string       `json:"projectDescription"`
	Budget             string       `json:"budget"`
}

// IntakeDraft is a wizard instance in progress, persisted between steps.
type IntakeDraft struct {
	ID        string             `json:"id"`
	SessionID string             `json:"sessionId"`
	Step      WizardStep         `json:"step"`
	State     WizardState        `json:"state"`
	Data      PropertyIntakeData `json:"data"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
