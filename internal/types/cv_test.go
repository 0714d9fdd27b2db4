package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCV() *CVData {
	return &CVData{
		Personal: Personal{
			FullName:     "Ana García",
			DesiredTitle: "Desarrolladora Backend",
			Email:        "ana@example.com",
			Links:        []Link{{Label: "GitHub", URL: "https://github.com/ana"}},
		},
		Experience: []Experience{{
			Role:         "Dev",
			Organization: "Acme",
			StartDate:    "2020-01",
			Current:      true,
			Description:  "Built stuff",
			Achievements: []string{"Shipped v1"},
		}},
		Skills: Skills{
			Technical:   []Skill{{Name: "Go", Level: 5}},
			DisplayMode: DisplayBars,
		},
		Languages: []Language{{
			Name:          "Inglés",
			Proficiency:   "C1",
			Certification: &LanguageCertification{Type: "TOEFL", Label: "110"},
		}},
		Projects: []Project{{Name: "cv", Technologies: []string{"Go"}, Results: []string{"OK"}}},
		OptionalSections: map[SectionID]map[string]string{
			SectionSocialLinks: {"linkedin": "ana"},
		},
		ActiveSections: []SectionID{SectionSocialLinks},
		ProfilePhoto:   &Photo{Data: []byte{1, 2, 3}, MimeType: "image/png"},
	}
}

func TestClampLevel(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 3},
		{-4, 1},
		{1, 1},
		{4, 4},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLevel(tt.in), "level %d", tt.in)
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := sampleCV()
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Personal.Links[0].URL = "changed"
	c.Experience[0].Achievements[0] = "changed"
	c.Skills.Technical[0].Name = "changed"
	c.Languages[0].Certification.Label = "changed"
	c.Projects[0].Technologies[0] = "changed"
	c.OptionalSections[SectionSocialLinks]["linkedin"] = "changed"
	c.ActiveSections[0] = SectionProjects
	c.ProfilePhoto.Data[0] = 9

	assert.Equal(t, "https://github.com/ana", orig.Personal.Links[0].URL)
	assert.Equal(t, "Shipped v1", orig.Experience[0].Achievements[0])
	assert.Equal(t, "Go", orig.Skills.Technical[0].Name)
	assert.Equal(t, "110", orig.Languages[0].Certification.Label)
	assert.Equal(t, "Go", orig.Projects[0].Technologies[0])
	assert.Equal(t, "ana", orig.OptionalSections[SectionSocialLinks]["linkedin"])
	assert.Equal(t, SectionSocialLinks, orig.ActiveSections[0])
	assert.Equal(t, byte(1), orig.ProfilePhoto.Data[0])
}

func TestClone_Nil(t *testing.T) {
	var d *CVData
	assert.Nil(t, d.Clone())
}

func TestHasContent(t *testing.T) {
	assert.False(t, Experience{Role: "  "}.HasContent())
	assert.True(t, Experience{Achievements: []string{"", "x"}}.HasContent())
	assert.False(t, Education{GPA: "9"}.HasContent())
	assert.True(t, Education{Degree: "Ing."}.HasContent())
	assert.False(t, Skills{Technical: []Skill{{Name: " "}}}.HasContent())
	assert.True(t, Skills{Tools: []Skill{{Name: "Git"}}}.HasContent())
	assert.False(t, SectionHasContent(map[string]string{"a": " ", "b": ""}))
	assert.True(t, SectionHasContent(map[string]string{"a": "x"}))
}

func TestSectionIDValid(t *testing.T) {
	assert.True(t, SectionCertifications.Valid())
	assert.False(t, SectionID("redes_sociales").Valid())
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, sampleCV().Validate())
}

func TestValidate_CollectsEveryField(t *testing.T) {
	d := sampleCV()
	d.Personal.FullName = ""
	d.Personal.Email = "not-an-email"
	d.Experience[0].Description = strings.Repeat("x", MaxExperienceDescriptionLen+1)
	d.Experience[0].Achievements = []string{"a", "b", "c", "d"}
	d.Languages[0].Proficiency = "Z9"

	err := d.Validate()
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Tag
	}
	assert.Equal(t, "required", fields["Personal.FullName"])
	assert.Equal(t, "email", fields["Personal.Email"])
	assert.Equal(t, "max", fields["Experience[0].Description"])
	assert.Equal(t, "max", fields["Experience[0].Achievements"])
	assert.Equal(t, "oneof", fields["Languages[0].Proficiency"])
	assert.Contains(t, err.Error(), "validation error")
}

func TestValidate_PhotoConstraints(t *testing.T) {
	d := sampleCV()
	d.ProfilePhoto = &Photo{Data: []byte{1}, MimeType: "image/gif", SizeBytes: MaxPhotoBytes + 1}

	err := d.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 2)
}

func TestSkillsAll_Order(t *testing.T) {
	s := Skills{
		Technical: []Skill{{Name: "Go"}},
		Soft:      []Skill{{Name: "Liderazgo"}},
		Tools:     []Skill{{Name: "Git"}},
	}
	names := []string{}
	for _, sk := range s.All() {
		names = append(names, sk.Name)
	}
	assert.Equal(t, []string{"Go", "Liderazgo", "Git"}, names)
}
