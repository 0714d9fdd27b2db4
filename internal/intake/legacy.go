package intake

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/cv-builder/internal/types"
)

// LegacyForm is the flat, free-text form payload of the first form version.
type LegacyForm struct {
	Nombre           string                       `json:"nombre"`
	CargoDeseado     string                       `json:"cargo_deseado,omitempty"`
	Email            string                       `json:"email,omitempty"`
	Telefono         string                       `json:"telefono,omitempty"`
	Ubicacion        string                       `json:"ubicacion,omitempty"`
	Experiencia      string                       `json:"experiencia,omitempty"`
	Educacion        string                       `json:"educacion,omitempty"`
	Habilidades      string                       `json:"habilidades,omitempty"`
	SeccionesActivas []string                     `json:"seccionesActivas,omitempty"`
	DatosOpcionales  map[string]map[string]string `json:"datosOpcionales,omitempty"`
}

// FromLegacy converts the flat form into the canonical schema. Free-text experience and
// education become a single entry each; the skills list becomes technical skills at the
// default level. The result is normalized.
func FromLegacy(f LegacyForm) types.CVData {
	d := types.CVData{
		Personal: types.Personal{
			FullName:     f.Nombre,
			DesiredTitle: f.CargoDeseado,
			Email:        f.Email,
			Phone:        f.Telefono,
			Location:     f.Ubicacion,
		},
	}
	if !types.IsBlank(f.Experiencia) {
		d.Experience = []types.Experience{{Description: f.Experiencia}}
	}
	if !types.IsBlank(f.Educacion) {
		d.Education = []types.Education{{Description: f.Educacion}}
	}
	for _, name := range SplitList(f.Habilidades) {
		d.Skills.Technical = append(d.Skills.Technical, types.Skill{Name: name, Level: types.DefaultSkillLevel})
	}

	if len(f.DatosOpcionales) > 0 {
		d.OptionalSections = make(map[types.SectionID]map[string]string, len(f.DatosOpcionales))
		for raw, values := range f.DatosOpcionales {
			d.OptionalSections[types.SectionID(raw)] = values
		}
	}
	for _, raw := range f.SeccionesActivas {
		d.ActiveSections = append(d.ActiveSections, types.SectionID(raw))
	}

	Normalize(&d)
	return d
}

// Decode parses a CV document in either the canonical or the legacy flat shape
// and returns it normalized. An embedded profile photo is sniffed like an upload;
// a photo that is not a real JPEG, PNG or WebP image is a *types.ValidationError.
func Decode(data []byte) (*types.CVData, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse CV document: %w", err)
	}

	if isLegacy(keys) {
		var f LegacyForm
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse legacy CV form: %w", err)
		}
		d := FromLegacy(f)
		return &d, nil
	}

	var d types.CVData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode CV document: %w", err)
	}
	Normalize(&d)
	if err := CheckEmbeddedPhoto(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CheckEmbeddedPhoto runs a photo that arrived inside the document through LoadPhoto,
// so the declared MIME type is replaced by the sniffed one and WebP becomes JPEG.
// A photo without bytes is dropped.
func CheckEmbeddedPhoto(d *types.CVData) error {
	if d == nil || d.ProfilePhoto == nil {
		return nil
	}
	if len(d.ProfilePhoto.Data) == 0 {
		d.ProfilePhoto = nil
		return nil
	}
	photo, err := LoadPhoto(d.ProfilePhoto.Filename, d.ProfilePhoto.Data)
	if err != nil {
		var pe *PhotoError
		if !errors.As(err, &pe) {
			return err
		}
		return &types.ValidationError{Fields: []types.FieldError{{
			Field:   "profilePhoto",
			Tag:     "image",
			Message: pe.Message,
		}}}
	}
	d.ProfilePhoto = photo
	return nil
}

func isLegacy(keys map[string]json.RawMessage) bool {
	if _, ok := keys["personal"]; ok {
		return false
	}
	_, nombre := keys["nombre"]
	_, cargo := keys["cargo_deseado"]
	return nombre || cargo
}
