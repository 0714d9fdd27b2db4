package intake

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// legacySectionIDs maps optional section ids used by older form payloads to the canonical ids.
var legacySectionIDs = map[string]types.SectionID{
	"redes_sociales":       types.SectionSocialLinks,
	"habilidades_tecnicas": types.SectionTechSkills,
	"proyectos":            types.SectionProjects,
	"idiomas":              types.SectionLanguages,
	"certificaciones":      types.SectionCertifications,
}

// CanonicalSectionID resolves a canonical or legacy optional section id.
// ok is false when the id is unknown.
func CanonicalSectionID(raw string) (types.SectionID, bool) {
	raw = strings.TrimSpace(raw)
	if id := types.SectionID(raw); id.Valid() {
		return id, true
	}
	id, ok := legacySectionIDs[strings.ToLower(raw)]
	return id, ok
}

// Normalize cleans d in place: text is trimmed and stripped of markup, skill levels are clamped,
// end dates of ongoing entries are cleared, highlight lists are capped and blank entries dropped.
func Normalize(d *types.CVData) {
	if d == nil {
		return
	}

	normalizePersonal(&d.Personal)

	experience := d.Experience[:0]
	for _, e := range d.Experience {
		e.Role = StripMarkup(e.Role)
		e.Organization = StripMarkup(e.Organization)
		e.StartDate = strings.TrimSpace(e.StartDate)
		e.EndDate = strings.TrimSpace(e.EndDate)
		e.Location = StripMarkup(e.Location)
		e.Description = StripMarkup(e.Description)
		e.Achievements = capHighlights(e.Achievements)
		if e.Current {
			e.EndDate = ""
		}
		if e.HasContent() {
			experience = append(experience, e)
		}
	}
	d.Experience = nilIfEmpty(experience)

	education := d.Education[:0]
	for _, e := range d.Education {
		e.Degree = StripMarkup(e.Degree)
		e.Institution = StripMarkup(e.Institution)
		e.StartDate = strings.TrimSpace(e.StartDate)
		e.EndDate = strings.TrimSpace(e.EndDate)
		e.GPA = strings.TrimSpace(e.GPA)
		e.Location = StripMarkup(e.Location)
		e.Description = StripMarkup(e.Description)
		if e.InProgress {
			e.EndDate = ""
		}
		if e.HasContent() {
			education = append(education, e)
		}
	}
	d.Education = nilIfEmpty(education)

	d.Skills.Technical = normalizeSkills(d.Skills.Technical)
	d.Skills.Soft = normalizeSkills(d.Skills.Soft)
	d.Skills.Tools = normalizeSkills(d.Skills.Tools)
	switch d.Skills.DisplayMode {
	case types.DisplayBars, types.DisplayStars, types.DisplayText:
	default:
		d.Skills.DisplayMode = types.DisplayBars
	}

	languages := d.Languages[:0]
	for _, l := range d.Languages {
		l.Name = StripMarkup(l.Name)
		l.Proficiency = strings.TrimSpace(l.Proficiency)
		if c := l.Certification; c != nil {
			c.Type = strings.TrimSpace(c.Type)
			c.Label = strings.TrimSpace(c.Label)
			c.Date = strings.TrimSpace(c.Date)
			if c.Type == "" && c.Label == "" && c.Date == "" {
				l.Certification = nil
			}
		}
		if l.HasContent() {
			languages = append(languages, l)
		}
	}
	d.Languages = nilIfEmpty(languages)

	projects := d.Projects[:0]
	for _, p := range d.Projects {
		p.Name = StripMarkup(p.Name)
		p.Type = strings.TrimSpace(p.Type)
		p.Description = StripMarkup(p.Description)
		p.Technologies = dropBlank(p.Technologies)
		p.StartDate = strings.TrimSpace(p.StartDate)
		p.EndDate = strings.TrimSpace(p.EndDate)
		p.Role = StripMarkup(p.Role)
		p.Collaborators = StripMarkup(p.Collaborators)
		p.Links.Demo = strings.TrimSpace(p.Links.Demo)
		p.Links.Repo = strings.TrimSpace(p.Links.Repo)
		p.Links.Portfolio = strings.TrimSpace(p.Links.Portfolio)
		p.Results = capHighlights(p.Results)
		if p.InProgress {
			p.EndDate = ""
		}
		if p.HasContent() {
			projects = append(projects, p)
		}
	}
	d.Projects = nilIfEmpty(projects)

	d.OptionalSections = normalizeOptional(d.OptionalSections)
	toggled := make([]string, len(d.ActiveSections))
	for i, id := range d.ActiveSections {
		toggled[i] = string(id)
	}
	d.ActiveSections = ActiveSections(d.OptionalSections, toggled)
}

// ActiveSections resolves the toggled section ids (canonical or legacy) against the
// optional section data. Unknown ids and sections without a non-blank value are dropped,
// and the result follows the canonical section order.
func ActiveSections(optional map[types.SectionID]map[string]string, toggled []string) []types.SectionID {
	on := make(map[types.SectionID]bool, len(toggled))
	for _, raw := range toggled {
		if id, ok := CanonicalSectionID(raw); ok {
			on[id] = true
		}
	}

	var out []types.SectionID
	for _, id := range types.OptionalSectionIDs {
		if on[id] && types.SectionHasContent(optional[id]) {
			out = append(out, id)
		}
	}
	return out
}

func normalizePersonal(p *types.Personal) {
	p.FullName = StripMarkup(p.FullName)
	p.DesiredTitle = StripMarkup(p.DesiredTitle)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = StripMarkup(p.Location)

	links := p.Links[:0]
	for _, l := range p.Links {
		l.Label = strings.TrimSpace(l.Label)
		l.URL = strings.TrimSpace(l.URL)
		if l.URL != "" {
			links = append(links, l)
		}
	}
	p.Links = nilIfEmpty(links)
}

func normalizeSkills(in []types.Skill) []types.Skill {
	out := in[:0]
	for _, s := range in {
		s.Name = StripMarkup(s.Name)
		s.Description = StripMarkup(s.Description)
		s.Level = types.ClampLevel(s.Level)
		if s.Name != "" {
			out = append(out, s)
		}
	}
	return nilIfEmpty(out)
}

// normalizeOptional merges legacy section ids into canonical ones and drops blank values.
func normalizeOptional(in map[types.SectionID]map[string]string) map[types.SectionID]map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[types.SectionID]map[string]string, len(in))
	for rawID, values := range in {
		id, ok := CanonicalSectionID(string(rawID))
		if !ok {
			continue
		}
		for key, value := range values {
			key = strings.TrimSpace(key)
			value = StripMarkup(value)
			if key == "" || value == "" {
				continue
			}
			if out[id] == nil {
				out[id] = make(map[string]string)
			}
			out[id][key] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func capHighlights(items []string) []string {
	out := dropBlank(items)
	if len(out) > types.MaxHighlights {
		out = out[:types.MaxHighlights]
	}
	return out
}

func dropBlank(items []string) []string {
	var out []string
	for _, item := range items {
		if item = StripMarkup(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
