package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/idlab-discover/FlagScan-cli/internal/apperr"
)

// ScanPrompt holds the scan inputs the user may be asked for. Fields that
// are already set are not prompted.
type ScanPrompt struct {
	FlagKey   string
	Provider  string
	Providers []string
	// ValidateKey checks the flag key as it is typed.
	ValidateKey func(string) error
}

// PromptScanInputs asks for the missing flag key and provider.
func PromptScanInputs(p *ScanPrompt) error {
	var fields []huh.Field

	if strings.TrimSpace(p.FlagKey) == "" {
		fields = append(fields, huh.NewInput().
			Title("Flag key").
			Description("The feature flag to look for, exactly as it is defined in the provider.").
			Placeholder("new-checkout-flow").
			Value(&p.FlagKey).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("a flag key is required")
				}
				if p.ValidateKey != nil {
					return p.ValidateKey(strings.TrimSpace(s))
				}
				return nil
			}))
	}

	if strings.TrimSpace(p.Provider) == "" && len(p.Providers) > 0 {
		p.Provider = p.Providers[0]
		fields = append(fields, huh.NewSelect[string]().
			Title("Flag provider").
			Description("Recorded on the result; it does not change how files are matched.").
			Options(huh.NewOptions(p.Providers...)...).
			Value(&p.Provider))
	}

	if len(fields) == 0 {
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Flag Scan").
				Description("Find every reference to a feature flag before it is removed."),
		),
		huh.NewGroup(fields...),
	)
	if err := form.Run(); err != nil {
		return promptErr(err)
	}
	p.FlagKey = strings.TrimSpace(p.FlagKey)
	return nil
}

// ConfirmOverwrite asks before an existing output file is replaced. A
// declined prompt returns apperr.ErrCancelled.
func ConfirmOverwrite(path string) error {
	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Overwrite existing file?").
				Description(fmt.Sprintf("%s already exists.", path)).
				Value(&confirm).
				Affirmative("Yes").
				Negative("No"),
		),
	)
	if err := form.Run(); err != nil {
		return promptErr(err)
	}
	if !confirm {
		return apperr.ErrCancelled
	}
	return nil
}

func promptErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return apperr.ErrCancelled
	}
	return err
}
