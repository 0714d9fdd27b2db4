// Package types provides type definitions for structured data used throughout the cv-builder system.
package types

import (
	"strings"
)

// SectionID identifies a user-toggleable optional section.
type SectionID string

// Optional section identifiers.
const (
	SectionSocialLinks    SectionID = "socialLinks"
	SectionTechSkills     SectionID = "techSkillsDetailed"
	SectionProjects       SectionID = "projects"
	SectionLanguages      SectionID = "languages"
	SectionCertifications SectionID = "certifications"
)

// OptionalSectionIDs lists every known optional section in canonical order.
var OptionalSectionIDs = []SectionID{
	SectionSocialLinks,
	SectionTechSkills,
	SectionProjects,
	SectionLanguages,
	SectionCertifications,
}

// Valid reports whether id is a known optional section.
func (id SectionID) Valid() bool {
	for _, known := range OptionalSectionIDs {
		if id == known {
			return true
		}
	}
	return false
}

// SkillDisplayMode controls how skill levels are drawn.
type SkillDisplayMode string

// Skill display modes.
const (
	DisplayBars  SkillDisplayMode = "bars"
	DisplayStars SkillDisplayMode = "stars"
	DisplayText  SkillDisplayMode = "text"
)

// Skill level bounds and the level assumed when none is known.
const (
	MinSkillLevel     = 1
	MaxSkillLevel     = 5
	DefaultSkillLevel = 3
)

// Maximum field lengths accepted from the form.
const (
	MaxNameLength                 = 100
	MaxExperienceDescriptionLen   = 1000
	MaxEducationDescriptionLength = 800
	MaxSkillNameLength            = 500
	MaxHighlights                 = 3
	MaxPhotoBytes                 = 5 << 20
)

// CVData is the root aggregate assembled from the form and handed to the exporter.
type CVData struct {
	Personal         Personal                        `json:"personal"`
	Experience       []Experience                    `json:"experience,omitempty" validate:"dive"`
	Education        []Education                     `json:"education,omitempty" validate:"dive"`
	Skills           Skills                          `json:"skills"`
	Languages        []Language                      `json:"languages,omitempty" validate:"dive"`
	Projects         []Project                       `json:"projects,omitempty" validate:"dive"`
	OptionalSections map[SectionID]map[string]string `json:"optionalSections,omitempty"`
	ActiveSections   []SectionID                     `json:"activeSections,omitempty"`
	ProfilePhoto     *Photo                          `json:"profilePhoto,omitempty"`
}

// Personal holds identity and contact data.
type Personal struct {
	FullName     string `json:"fullName" validate:"required,min=2,max=100"`
	DesiredTitle string `json:"desiredTitle,omitempty" validate:"max=100"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty" validate:"max=30"`
	Location     string `json:"location,omitempty" validate:"max=100"`
	Links        []Link `json:"links,omitempty" validate:"dive"`
}

// Link is a labelled URL shown with the contact data.
type Link struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url" validate:"required"`
}

// Experience is one work history entry.
type Experience struct {
	Role         string   `json:"role" validate:"max=100"`
	Organization string   `json:"organization" validate:"max=100"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current,omitempty"`
	Location     string   `json:"location,omitempty" validate:"max=100"`
	Description  string   `json:"description,omitempty" validate:"max=1000"`
	Achievements []string `json:"achievements,omitempty" validate:"max=3"`
}

// Education is one academic entry.
type Education struct {
	Degree      string `json:"degree" validate:"max=150"`
	Institution string `json:"institution" validate:"max=150"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	InProgress  bool   `json:"inProgress,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty" validate:"max=800"`
}

// Skills groups skill items by category.
type Skills struct {
	Technical   []Skill          `json:"technical,omitempty" validate:"dive"`
	Soft        []Skill          `json:"soft,omitempty" validate:"dive"`
	Tools       []Skill          `json:"tools,omitempty" validate:"dive"`
	DisplayMode SkillDisplayMode `json:"displayMode,omitempty" validate:"omitempty,oneof=bars stars text"`
}

// Skill is a named skill with a 1..5 level.
type Skill struct {
	Name        string `json:"name" validate:"max=500"`
	Level       int    `json:"level"`
	Description string `json:"description,omitempty"`
}

// Language is a spoken language entry.
type Language struct {
	Name          string                 `json:"name" validate:"max=60"`
	Proficiency   string                 `json:"proficiency,omitempty" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2 Native"`
	Certification *LanguageCertification `json:"certification,omitempty"`
}

// LanguageCertification is an optional proof of proficiency.
type LanguageCertification struct {
	Type  string `json:"type,omitempty"`
	Label string `json:"label,omitempty"`
	Date  string `json:"date,omitempty"`
}

// Project is a portfolio entry.
type Project struct {
	Name          string       `json:"name" validate:"max=100"`
	Type          string       `json:"type,omitempty"`
	Description   string       `json:"description,omitempty" validate:"max=1000"`
	Technologies  []string     `json:"technologies,omitempty"`
	StartDate     string       `json:"startDate,omitempty"`
	EndDate       string       `json:"endDate,omitempty"`
	InProgress    bool         `json:"inProgress,omitempty"`
	Role          string       `json:"role,omitempty"`
	Collaborators string       `json:"collaborators,omitempty"`
	Links         ProjectLinks `json:"links,omitempty"`
	Results       []string     `json:"results,omitempty" validate:"max=3"`
}

// ProjectLinks are optional project URLs.
type ProjectLinks struct {
	Demo      string `json:"demo,omitempty"`
	Repo      string `json:"repo,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Photo is an uploaded profile picture. Data is base64 in JSON.
type Photo struct {
	Data      []byte `json:"data"`
	Filename  string `json:"filename,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty" validate:"max=5242880"`
	MimeType  string `json:"mimeType" validate:"oneof=image/jpeg image/jpg image/png image/webp"`
}

// ClampLevel maps a raw level into [1,5]. A zero (unset) level becomes DefaultSkillLevel.
func ClampLevel(level int) int {
	switch {
	case level == 0:
		return DefaultSkillLevel
	case level < MinSkillLevel:
		return MinSkillLevel
	case level > MaxSkillLevel:
		return MaxSkillLevel
	}
	return level
}

// IsBlank reports whether s has no visible content.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// HasContent reports whether the entry carries anything worth drawing.
func (e Experience) HasContent() bool {
	return !IsBlank(e.Role) || !IsBlank(e.Organization) || !IsBlank(e.Description) || anyNonBlank(e.Achievements)
}

// HasContent reports whether the entry carries anything worth drawing.
func (e Education) HasContent() bool {
	return !IsBlank(e.Degree) || !IsBlank(e.Institution) || !IsBlank(e.Description)
}

// HasContent reports whether the language has a name.
func (l Language) HasContent() bool {
	return !IsBlank(l.Name)
}

// HasContent reports whether the entry carries anything worth drawing.
func (p Project) HasContent() bool {
	return !IsBlank(p.Name) || !IsBlank(p.Description)
}

// All returns every skill in category order: technical, soft, tools.
func (s Skills) All() []Skill {
	out := make([]Skill, 0, len(s.Technical)+len(s.Soft)+len(s.Tools))
	out = append(out, s.Technical...)
	out = append(out, s.Soft...)
	out = append(out, s.Tools...)
	return out
}

// HasContent reports whether at least one skill has a name.
func (s Skills) HasContent() bool {
	for _, sk := range s.All() {
		if !IsBlank(sk.Name) {
			return true
		}
	}
	return false
}

// SectionHasContent reports whether the optional section has a non-blank value.
func SectionHasContent(values map[string]string) bool {
	for _, v := range values {
		if !IsBlank(v) {
			return true
		}
	}
	return false
}

func anyNonBlank(items []string) bool {
	for _, it := range items {
		if !IsBlank(it) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so later edits to the form cannot reach an in-flight render.
func (d *CVData) Clone() *CVData {
	if d == nil {
		return nil
	}
	c := *d
	c.Personal.Links = append([]Link(nil), d.Personal.Links...)

	c.Experience = nil
	for _, e := range d.Experience {
		e.Achievements = append([]string(nil), e.Achievements...)
		c.Experience = append(c.Experience, e)
	}
	c.Education = append([]Education(nil), d.Education...)

	c.Skills.Technical = append([]Skill(nil), d.Skills.Technical...)
	c.Skills.Soft = append([]Skill(nil), d.Skills.Soft...)
	c.Skills.Tools = append([]Skill(nil), d.Skills.Tools...)

	c.Languages = nil
	for _, l := range d.Languages {
		if l.Certification != nil {
			cert := *l.Certification
			l.Certification = &cert
		}
		c.Languages = append(c.Languages, l)
	}

	c.Projects = nil
	for _, p := range d.Projects {
		p.Technologies = append([]string(nil), p.Technologies...)
		p.Results = append([]string(nil), p.Results...)
		c.Projects = append(c.Projects, p)
	}

	c.OptionalSections = CloneOptionalSections(d.OptionalSections)
	c.ActiveSections = append([]SectionID(nil), d.ActiveSections...)

	if d.ProfilePhoto != nil {
		photo := *d.ProfilePhoto
		photo.Data = append([]byte(nil), d.ProfilePhoto.Data...)
		c.ProfilePhoto = &photo
	}
	return &c
}

// CloneOptionalSections deep-copies an optional section mapping.
func CloneOptionalSections(in map[SectionID]map[string]string) map[SectionID]map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[SectionID]map[string]string, len(in))
	for id, values := range in {
		inner := make(map[string]string, len(values))
		for k, v := range values {
			inner[k] = v
		}
		out[id] = inner
	}
	return out
}
