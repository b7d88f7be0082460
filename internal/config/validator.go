package config

import (
	"errors"
	"fmt"
	"strings"

	dmerrors "github.com/standardbeagle/datamanager/internal/errors"
)

// Validator validates configuration and fills in blank fields.
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults reports every invalid section as a ConfigError,
// joined in a MultiError.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setSmartDefaults(cfg)

	var errs []error
	if err := v.validateDocumentConfig(&cfg.Document); err != nil {
		errs = append(errs, dmerrors.NewConfigError("document", cfg.Document.Profile, err))
	}
	if err := v.validateVarSetConfig(&cfg.VarSet); err != nil {
		errs = append(errs, dmerrors.NewConfigError("varset", cfg.VarSet.TypeID, err))
	}
	if err := v.validateSpreadsheetConfig(&cfg.Spreadsheet); err != nil {
		errs = append(errs, dmerrors.NewConfigError("spreadsheet", fmt.Sprintf("%dx%d", cfg.Spreadsheet.MaxColumns, cfg.Spreadsheet.MaxRows), err))
	}
	if err := v.validateWatchConfig(&cfg.Watch); err != nil {
		errs = append(errs, dmerrors.NewConfigError("watch", fmt.Sprint(cfg.Watch.DebounceMs), err))
	}
	return dmerrors.NewMultiError(errs).ErrorOrNil()
}

func (v *Validator) validateDocumentConfig(doc *Document) error {
	switch doc.Profile {
	case "full", "legacy":
		return nil
	}
	return fmt.Errorf("profile must be \"full\" or \"legacy\", got %q", doc.Profile)
}

func (v *Validator) validateVarSetConfig(vs *VarSet) error {
	if strings.TrimSpace(vs.TypeID) == "" {
		return errors.New("varset type_id cannot be empty")
	}
	for _, name := range vs.ExcludedProperties {
		if strings.TrimSpace(name) == "" {
			return errors.New("excluded property names cannot be empty")
		}
	}
	return nil
}

func (v *Validator) validateSpreadsheetConfig(sheet *Spreadsheet) error {
	if strings.TrimSpace(sheet.TypeID) == "" {
		return errors.New("spreadsheet type_id cannot be empty")
	}
	if sheet.MaxColumns <= 0 {
		return fmt.Errorf("max_columns must be positive, got %d", sheet.MaxColumns)
	}
	if sheet.MaxColumns > MaxColumnsLimit {
		return fmt.Errorf("max_columns should not exceed %d, got %d", MaxColumnsLimit, sheet.MaxColumns)
	}
	if sheet.MaxRows <= 0 {
		return fmt.Errorf("max_rows must be positive, got %d", sheet.MaxRows)
	}
	return nil
}

func (v *Validator) validateWatchConfig(w *Watch) error {
	if w.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms cannot be negative, got %d", w.DebounceMs)
	}
	return nil
}

func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Document.Profile == "" {
		cfg.Document.Profile = "full"
	}
	if strings.TrimSpace(cfg.VarSet.DefaultGroup) == "" {
		cfg.VarSet.DefaultGroup = "Base"
	}
	if cfg.CopyOnChange.GroupName == "" && cfg.CopyOnChange.LabelPrefix == "" {
		defaults := Default().CopyOnChange
		cfg.CopyOnChange = defaults
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
