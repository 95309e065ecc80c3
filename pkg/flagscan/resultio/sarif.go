package resultio

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/scanner"
)

const (
	toolName = "flagscan"
	toolURI  = "https://github.com/idlab-discover/FlagScan-cli"
)

var ruleDescriptions = map[scanner.MatchType]string{
	scanner.MatchSDKCall:       "Flag evaluated through a provider SDK accessor",
	scanner.MatchConfig:        "Flag key referenced from configuration code",
	scanner.MatchTest:          "Flag key referenced from test code",
	scanner.MatchStringLiteral: "Flag key appears as a bare string literal",
}

// SARIFLevel maps a confidence to a SARIF result level.
func SARIFLevel(c scanner.Confidence) string {
	switch c {
	case scanner.ConfidenceHigh:
		return "error"
	case scanner.ConfidenceMedium:
		return "warning"
	default:
		return "note"
	}
}

func ruleID(mt scanner.MatchType) string { return "flag-reference/" + string(mt) }

// sarifReport builds one run per result.
func sarifReport(results ...*scanner.Result) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		report.AddRun(sarifRun(res))
	}
	return report, nil
}

func sarifRun(res *scanner.Result) *sarif.Run {
	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	run.WithAutomationDetails(sarif.NewRunAutomationDetails().
		WithID(fmt.Sprintf("flagscan/%s/%s", res.FlagKey, uuid.NewString())))

	props := sarif.NewPropertyBag()
	props.AddString("flagKey", res.FlagKey)
	props.AddString("provider", res.Provider)
	props.AddString("repo", res.Repo)
	props.AddInteger("scannedFiles", res.ScannedFiles)
	props.AddInteger("skippedFiles", res.SkippedFiles)
	run.AttachPropertyBag(props)

	for _, mt := range scanner.MatchTypes {
		run.AddRule(ruleID(mt)).
			WithDescription(ruleDescriptions[mt])
	}

	for _, m := range res.Matches {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(m.File)).
				WithRegion(sarif.NewRegion().
					WithStartLine(m.Line).
					WithStartColumn(m.Column + 1).
					WithSnippet(sarif.NewArtifactContent().WithText(m.Snippet))),
		)

		result := sarif.NewRuleResult(ruleID(m.MatchType)).
			WithMessage(sarif.NewTextMessage(fmt.Sprintf("Reference to flag %q (%s, %s confidence)", res.FlagKey, m.MatchType, m.Confidence))).
			WithLevel(SARIFLevel(m.Confidence)).
			WithLocations([]*sarif.Location{location})

		rp := sarif.NewPropertyBag()
		rp.AddString("confidence", string(m.Confidence))
		rp.AddString("language", m.Language)
		rp.AddString("flagKey", res.FlagKey)
		result.AttachPropertyBag(rp)

		run.AddResult(result)
	}
	return run
}
