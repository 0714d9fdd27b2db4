package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
)

// errInvalidCV is returned after the field errors have been printed.
var errInvalidCV = errors.New("CV document is invalid")

// loadCV reads a canonical or legacy CV document, checks it against the schema and the
// form rules and returns it normalized. When photoPath is set the picture replaces the
// document's own.
func loadCV(p *observability.Printer, path, photoPath string) (*types.CVData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	if err := schemas.ValidateCVDocument(raw); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			lines := make([]string, 0, len(ve.Errors))
			for _, f := range ve.Errors {
				lines = append(lines, f.Field+": "+f.Message)
			}
			p.PrintValidationErrors("El documento no tiene el formato esperado", lines)
			return nil, errInvalidCV
		}
		return nil, err
	}

	data, err := intake.Decode(raw)
	if err != nil {
		if printFieldErrors(p, err) {
			return nil, errInvalidCV
		}
		return nil, fmt.Errorf("failed to decode CV: %w", err)
	}

	if photoPath != "" {
		img, err := os.ReadFile(photoPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo: %w", err)
		}
		photo, err := intake.LoadPhoto(filepath.Base(photoPath), img)
		if err != nil {
			p.Error(err.Error())
			return nil, errInvalidCV
		}
		data.ProfilePhoto = photo
	}

	if err := data.Validate(); err != nil {
		if printFieldErrors(p, err) {
			return nil, errInvalidCV
		}
		return nil, err
	}
	return data, nil
}

// printFieldErrors prints err when it is a *types.ValidationError and reports whether it did.
func printFieldErrors(p *observability.Printer, err error) bool {
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	lines := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		lines = append(lines, f.Field+": "+f.Message)
	}
	p.PrintValidationErrors("Hay campos con errores", lines)
	return true
}
