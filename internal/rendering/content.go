package rendering

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/cv-builder/internal/canvas"
	"github.com/jonathan/cv-builder/internal/types"
)

// Main section keys. Optional sections use OptionalKey.
const (
	KeyExperience = "experience"
	KeyEducation  = "education"
	KeySkills     = "skills"
	KeyProjects   = "projects"
	KeyLanguages  = "languages"
)

// Placeholders used when the form left the header blank.
const (
	PlaceholderName  = "NOMBRE COMPLETO"
	PlaceholderTitle = "Cargo Profesional"
	PlaceholderBody  = "No especificado"
)

const bullet = "• "

// OptionalKey is the block key of an optional section.
func OptionalKey(id types.SectionID) string {
	return "optional:" + string(id)
}

// Block is one titled piece of content ready to be placed.
type Block struct {
	Key       string
	Optional  types.SectionID
	Title     string
	Icon      canvas.IconKind
	Body      string
	Meters    []Meter
	MeterMode types.SkillDisplayMode
}

// Meter is a skill drawn as a level gauge.
type Meter struct {
	Name  string
	Level int
}

// Entry is one key/value pair of an optional section.
type Entry struct {
	Key   string
	Value string
}

// Options carries the optional section data and the user's toggles.
type Options struct {
	OptionalSections map[types.SectionID]map[string]string
	ActiveSections   []types.SectionID
}

var levelLabels = map[int]string{
	1: "Básico",
	2: "Intermedio",
	3: "Avanzado",
	4: "Experto",
	5: "Maestro",
}

// LevelLabel returns the Spanish label of a skill level after clamping.
func LevelLabel(level int) string {
	return levelLabels[types.ClampLevel(level)]
}

var proficiencyLabels = map[string]string{
	"Native": "Nativo",
}

// knownEntryOrder fixes the order of the form's optional section fields.
var knownEntryOrder = map[types.SectionID][]string{
	types.SectionSocialLinks:    {"linkedin", "github", "portafolio", "twitter"},
	types.SectionTechSkills:     {"lenguajes", "frameworks", "herramientas", "bases_datos"},
	types.SectionProjects:       {"proyecto1", "proyecto2", "proyecto3"},
	types.SectionLanguages:      {"idioma1", "idioma2", "idioma3"},
	types.SectionCertifications: {"cert1", "cert2", "cert3"},
}

// OrderedEntries returns the non-blank values of an optional section, known
// form fields first and any other keys after them alphabetically.
func OrderedEntries(id types.SectionID, values map[string]string) []Entry {
	seen := map[string]bool{}
	var out []Entry
	add := func(k string) {
		if seen[k] {
			return
		}
		seen[k] = true
		if v := strings.TrimSpace(values[k]); v != "" {
			out = append(out, Entry{Key: k, Value: v})
		}
	}
	for _, k := range knownEntryOrder[id] {
		if _, ok := values[k]; ok {
			add(k)
		}
	}
	rest := make([]string, 0, len(values))
	for k := range values {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		add(k)
	}
	return out
}

// buildBlocks collects every non-empty section in reading order: main
// sections first, then the active optional sections in toggle order.
func buildBlocks(data *types.CVData, opts Options, st *Style) []Block {
	var blocks []Block
	addMain := func(key, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		look := st.look(key)
		blocks = append(blocks, Block{Key: key, Title: look.Title, Icon: look.Icon, Body: body})
	}

	addMain(KeyExperience, FormatExperience(data.Experience))
	addMain(KeyEducation, FormatEducation(data.Education))
	if data.Skills.HasContent() {
		look := st.look(KeySkills)
		b := Block{Key: KeySkills, Title: look.Title, Icon: look.Icon, MeterMode: data.Skills.DisplayMode}
		switch data.Skills.DisplayMode {
		case types.DisplayBars, types.DisplayStars:
			b.Meters = SkillMeters(data.Skills)
		default:
			b.MeterMode = types.DisplayText
			b.Body = FormatSkills(data.Skills)
		}
		blocks = append(blocks, b)
	}
	addMain(KeyProjects, FormatProjects(data.Projects))
	addMain(KeyLanguages, FormatLanguages(data.Languages))

	seen := map[types.SectionID]bool{}
	for _, id := range opts.ActiveSections {
		if !id.Valid() || seen[id] {
			continue
		}
		seen[id] = true
		entries := OrderedEntries(id, opts.OptionalSections[id])
		if len(entries) == 0 {
			continue
		}
		format := st.FormatOptional[string(id)]
		if format == nil {
			format = formatBulleted
		}
		body := format(entries)
		if strings.TrimSpace(body) == "" {
			continue
		}
		key := OptionalKey(id)
		look := st.look(key)
		blocks = append(blocks, Block{Key: key, Optional: id, Title: look.Title, Icon: look.Icon, Body: body})
	}
	return blocks
}

// FormatExperience renders work history entries separated by blank lines.
func FormatExperience(entries []types.Experience) string {
	var parts []string
	for _, e := range entries {
		if !e.HasContent() {
			continue
		}
		lines := nonBlank(
			joinNonBlank(" - ", e.Role, e.Organization),
			joinNonBlank(" | ", dateRange(e.StartDate, e.EndDate, e.Current, "Actualidad"), e.Location),
			strings.TrimSpace(e.Description),
		)
		lines = append(lines, bullets(e.Achievements)...)
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// FormatEducation renders academic entries separated by blank lines.
func FormatEducation(entries []types.Education) string {
	var parts []string
	for _, e := range entries {
		if !e.HasContent() {
			continue
		}
		gpa := ""
		if g := strings.TrimSpace(e.GPA); g != "" {
			gpa = "Promedio: " + g
		}
		lines := nonBlank(
			joinNonBlank(" - ", e.Degree, e.Institution),
			joinNonBlank(" | ", dateRange(e.StartDate, e.EndDate, e.InProgress, "En curso"), e.Location),
			gpa,
			strings.TrimSpace(e.Description),
		)
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// FormatSkills renders one line per non-empty category with level labels.
func FormatSkills(s types.Skills) string {
	groups := []struct {
		label  string
		skills []types.Skill
	}{
		{"Técnicas", s.Technical},
		{"Blandas", s.Soft},
		{"Herramientas", s.Tools},
	}
	var lines []string
	for _, g := range groups {
		var names []string
		for _, sk := range g.skills {
			name := strings.TrimSpace(sk.Name)
			if name == "" {
				continue
			}
			names = append(names, name+" ("+LevelLabel(sk.Level)+")")
		}
		if len(names) > 0 {
			lines = append(lines, g.label+": "+strings.Join(names, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

// SkillMeters returns every named skill with its clamped level.
func SkillMeters(s types.Skills) []Meter {
	var out []Meter
	for _, sk := range s.All() {
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			continue
		}
		out = append(out, Meter{Name: name, Level: types.ClampLevel(sk.Level)})
	}
	return out
}

// FormatProjects renders portfolio entries separated by blank lines.
func FormatProjects(entries []types.Project) string {
	var parts []string
	for _, p := range entries {
		if !p.HasContent() {
			continue
		}
		head := strings.TrimSpace(p.Name)
		if t := strings.TrimSpace(p.Type); t != "" {
			head = joinNonBlank(" ", head, "("+t+")")
		}
		role := ""
		if r := strings.TrimSpace(p.Role); r != "" {
			role = "Rol: " + r
		}
		tech := ""
		if ts := nonBlank(p.Technologies...); len(ts) > 0 {
			tech = "Tecnologías: " + strings.Join(ts, ", ")
		}
		collab := ""
		if c := strings.TrimSpace(p.Collaborators); c != "" {
			collab = "Colaboradores: " + c
		}
		lines := nonBlank(
			head,
			joinNonBlank(" | ", dateRange(p.StartDate, p.EndDate, p.InProgress, "En curso"), role),
			strings.TrimSpace(p.Description),
			tech,
			collab,
		)
		lines = append(lines, bullets(p.Results)...)
		lines = append(lines, nonBlank(
			labelled("Demo", p.Links.Demo),
			labelled("Repositorio", p.Links.Repo),
			labelled("Portafolio", p.Links.Portfolio),
		)...)
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// FormatLanguages renders one bulleted line per language.
func FormatLanguages(entries []types.Language) string {
	var lines []string
	for _, l := range entries {
		if !l.HasContent() {
			continue
		}
		level := strings.TrimSpace(l.Proficiency)
		if label, ok := proficiencyLabels[level]; ok {
			level = label
		}
		line := joinNonBlank(" - ", strings.TrimSpace(l.Name), level)
		if c := l.Certification; c != nil {
			if cert := joinNonBlank(", ", joinNonBlank(" ", c.Type, c.Label), c.Date); cert != "" {
				line += " (" + cert + ")"
			}
		}
		lines = append(lines, bullet+line)
	}
	return strings.Join(lines, "\n")
}

// ContactLine joins the non-blank contact fields and link labels.
func ContactLine(p types.Personal) string {
	fields := []string{p.Email, p.Phone, p.Location}
	for _, l := range p.Links {
		if strings.TrimSpace(l.Label) != "" {
			fields = append(fields, l.Label+": "+l.URL)
		} else {
			fields = append(fields, l.URL)
		}
	}
	return joinNonBlank("  |  ", fields...)
}

func formatBulleted(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, bullet+e.Value)
	}
	return strings.Join(lines, "\n")
}

func formatLabelled(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, humanizeKey(e.Key)+": "+e.Value)
	}
	return strings.Join(lines, "\n")
}

func formatPlatforms(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, capitalize(e.Key)+": "+e.Value)
	}
	return strings.Join(lines, "\n")
}

func formatCategories(entries []Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, strings.ToUpper(strings.ReplaceAll(e.Key, "_", " "))+":\n"+e.Value)
	}
	return strings.Join(blocks, "\n\n")
}

func formatNumbered(entries []Entry) string {
	blocks := make([]string, 0, len(entries))
	for i, e := range entries {
		blocks = append(blocks, strconv.Itoa(i+1)+". "+e.Value)
	}
	return strings.Join(blocks, "\n\n")
}

func dateRange(start, end string, ongoing bool, ongoingLabel string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if ongoing {
		end = ongoingLabel
	}
	switch {
	case start == "":
		return end
	case end == "":
		return start
	}
	return start + " - " + end
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + strings.TrimSpace(value)
}

func bullets(items []string) []string {
	var out []string
	for _, it := range nonBlank(items...) {
		out = append(out, bullet+it)
	}
	return out
}

func nonBlank(items ...string) []string {
	var out []string
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinNonBlank(sep string, items ...string) string {
	return strings.Join(nonBlank(items...), sep)
}

func humanizeKey(key string) string {
	return capitalize(strings.ReplaceAll(key, "_", " "))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
