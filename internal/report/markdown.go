// internal/report/markdown.go
package report

import (
	"bytes"
	"strings"

	"github.com/nao1215/markdown"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/models"
)

// RenderMarkdown produces the downloadable premium report document.
func RenderMarkdown(report *models.PremiumReport) (string, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Property Feasibility Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Address", report.Analysis.Address},
			{"Project Type", string(report.Intake.ProjectType)},
			{"Prepared For", report.Intake.Name},
			{"Generated", report.UpdatedAt.Format("2 January 2006")},
		},
	})
	md.PlainText("")

	md.H2("Planning Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Attribute", "Value"},
		Rows: [][]string{
			{"Zoning", report.Analysis.Zoning},
			{"Zone Description", orDash(report.Analysis.ZoneDescription)},
			{"Climate Zone", orDash(report.Analysis.ClimateZone)},
			{"Wind Zone", orDash(report.Analysis.WindZone)},
			{"Parcel", orDash(report.Analysis.ParcelID)},
		},
	})
	md.PlainText("")

	writeConstraints(md, &report.Analysis)
	writeInfrastructure(md, &report.Analysis)

	md.H2("Assessment")
	md.PlainText("")
	md.PlainText(report.Summary)
	md.PlainText("")

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*This report is an automated feasibility assessment and is not professional advice. Confirm requirements with your council before committing to works.*")

	if err := md.Build(); err != nil {
		return "", apperrors.NewReportGenerationFailedError(err)
	}
	return buf.String(), nil
}

func writeConstraints(md *markdown.Markdown, analysis *models.PropertyReportData) {
	md.H2("Constraints and Hazards")
	md.PlainText("")

	items := []string{}
	if analysis.FloodProne {
		items = append(items, "Flood prone area")
	}
	if analysis.CoastalErosion {
		items = append(items, "Coastal erosion hazard")
	}
	if analysis.HeritageListed {
		items = append(items, "Heritage overlay applies")
	}
	for _, o := range analysis.Overlays {
		items = append(items, "Overlay: "+o)
	}
	for _, hz := range analysis.Hazards {
		items = append(items, "Hazard: "+hz)
	}

	if len(items) == 0 {
		md.PlainText("No planning constraints or hazards identified.")
		md.PlainText("")
		return
	}

	if analysis.FloodProne || analysis.CoastalErosion {
		md.Warningf("This site carries natural hazard designations that may require specific engineering assessment.")
		md.PlainText("")
	}
	md.BulletList(items...)
	md.PlainText("")
}

func writeInfrastructure(md *markdown.Markdown, analysis *models.PropertyReportData) {
	md.H2("Infrastructure")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Service", "Available"},
		Rows: [][]string{
			{"Water connection", yesNo(analysis.WaterConnected)},
			{"Wastewater nearby", yesNo(analysis.WastewaterNearby)},
			{"Stormwater nearby", yesNo(analysis.StormwaterNearby)},
		},
	})
	md.PlainText("")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
