package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
)

// Color palette for the application (single source of truth)
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorHighlight = lipgloss.Color("#f048ff") // Pink

	// Text colors
	ColorText     = lipgloss.Color("#F9FAFB") // White
	ColorTextDim  = lipgloss.Color("#9CA3AF") // Light gray
	ColorTextMute = lipgloss.Color("#6B7280") // Muted gray
)

// styleWrapper wraps a lipgloss style
type styleWrapper struct {
	style lipgloss.Style
}

// Render renders the string with the style
func (s styleWrapper) Render(str string) string {
	return s.style.Render(str)
}

// Bold returns a new style with bold enabled
func (s styleWrapper) Bold(v bool) styleWrapper {
	return styleWrapper{s.style.Bold(v)}
}

// Text styles using lipgloss
var (
	// Bold text
	Bold = styleWrapper{lipgloss.NewStyle().Bold(true)}

	// Dimmed text for secondary information
	Dim = styleWrapper{lipgloss.NewStyle().Foreground(ColorTextDim)}

	// Muted text for hints
	Muted = styleWrapper{lipgloss.NewStyle().Foreground(ColorTextMute)}

	// Success text (green)
	Success = styleWrapper{lipgloss.NewStyle().Foreground(ColorSuccess)}

	// Warning text (amber)
	Warning = styleWrapper{lipgloss.NewStyle().Foreground(ColorWarning)}

	// Error text (red)
	Error = styleWrapper{lipgloss.NewStyle().Foreground(ColorError)}

	// Primary accent text (purple)
	Primary = styleWrapper{lipgloss.NewStyle().Foreground(ColorPrimary)}

	// Secondary accent text (cyan)
	Secondary = styleWrapper{lipgloss.NewStyle().Foreground(ColorSecondary)}

	// Highlight text
	Highlight = styleWrapper{lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)}
)

// Status indicators (functions to ensure fresh rendering)

// GetCheckMark returns a styled check mark
func GetCheckMark() string { return Success.Render("✓") }

// GetCrossMark returns a styled cross mark
func GetCrossMark() string { return Error.Render("✗") }

// GetWarnMark returns a styled warning mark
func GetWarnMark() string { return Warning.Render("⚠") }

// GetInfoMark returns a styled info mark
func GetInfoMark() string { return Secondary.Render("ℹ") }

// GetBullet returns a styled bullet point
func GetBullet() string { return Muted.Render("•") }

// Box styles for panels and containers
type boxWrapper struct {
	style lipgloss.Style
}

func (b boxWrapper) Render(str string) string {
	return b.style.Render(str)
}

var (
	// Standard box with border
	Box = boxWrapper{lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1)}

	// Highlighted box
	HighlightBox = boxWrapper{lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)}

	// Success box
	SuccessBox = boxWrapper{lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 1)}

	// Error box
	ErrorBox = boxWrapper{lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(0, 1)}
)

// Header styles
var (
	// Main title style
	Title = styleWrapper{lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)}

	// Subtitle style
	Subtitle = styleWrapper{lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Italic(true)}

	// Section header
	SectionHeader = styleWrapper{lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)}
)

// Step status styles
var (
	// Pending step (not started)
	StepPending = styleWrapper{lipgloss.NewStyle().Foreground(ColorMuted)}

	// Running step (in progress)
	StepRunning = styleWrapper{lipgloss.NewStyle().Foreground(ColorSecondary)}

	// Completed step
	StepComplete = styleWrapper{lipgloss.NewStyle().Foreground(ColorSuccess)}

	// Failed step
	StepFailed = styleWrapper{lipgloss.NewStyle().Foreground(ColorError)}

	// Skipped step
	StepSkipped = styleWrapper{lipgloss.NewStyle().Foreground(ColorWarning)}
)

// FormatKeyValue formats a key-value pair with styling
func FormatKeyValue(key, value string) string {
	return Dim.Render(key+": ") + value
}

// FormatStatus formats a status message with an appropriate icon
func FormatStatus(status, message string) string {
	var icon string
	switch status {
	case "success":
		icon = GetCheckMark()
	case "error":
		icon = GetCrossMark()
	case "warning":
		icon = GetWarnMark()
	case "info":
		icon = GetInfoMark()
	default:
		icon = GetBullet()
	}
	return icon + " " + message
}

// FangColorScheme returns a Fang color scheme based on the application's color palette
func FangColorScheme(c lipgloss.LightDarkFunc) fang.ColorScheme {
	return fang.ColorScheme{
		Base:           ColorText,
		Title:          ColorPrimary,
		Description:    ColorTextDim,
		Codeblock:      c(lipgloss.Color("#1F2937"), lipgloss.Color("#2F2E36")),
		Program:        ColorSecondary,
		DimmedArgument: ColorMuted,
		Comment:        ColorMuted,
		Flag:           ColorSuccess,
		FlagDefault:    ColorTextDim,
		Command:        ColorHighlight,
		QuotedString:   ColorSecondary,
		Argument:       ColorText,
		Help:           ColorTextDim,
		Dash:           ColorMuted,
		ErrorHeader:    [2]color.Color{ColorText, ColorError},
		ErrorDetails:   ColorError,
	}
}

// BannerASCII is the ASCII art banner for the application
const BannerASCII = `
 _____ _              ____                        _ _
|  ___| | __ _  __ _ / ___|  ___ __ _ _ __    ___| (_)
| |_  | |/ _' |/ _' |\___ \ / __/ _' | '_ \  / __| | |
|  _| | | (_| | (_| | ___) | (_| (_| | | | || (__| | |
|_|   |_|\__,_|\__, ||____/ \___\__,_|_| |_| \___|_|_|
               |___/
`

// RenderGradientBanner renders the banner with secondary color (cyan)
func RenderGradientBanner(banner string) string {
	return Secondary.Render(banner)
}

// Confidence and audit status styling. Keys are the string values used in
// scan results so this package stays free of scanner imports.

// ConfidenceStyle returns the style for a confidence level.
func ConfidenceStyle(level string) styleWrapper {
	switch level {
	case "high":
		return Success
	case "medium":
		return Warning
	default:
		return Muted
	}
}

// StatusStyle returns the style for an audit status.
func StatusStyle(status string) styleWrapper {
	switch status {
	case "unreferenced":
		return Secondary
	case "removable":
		return Success
	default:
		return Warning
	}
}
