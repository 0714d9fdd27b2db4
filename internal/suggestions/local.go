// Package suggestions supplies canned skills and experience text for a job title,
// falling back from a remote service to a local table and finally a generic set.
package suggestions

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/cv-builder/internal/types"
)

type localEntry struct {
	key         string
	habilidades []string
	experiencia string
}

// localTable is matched in order. Specific roles come before the generic
// "desarrollador"/"programador" so "Desarrollador Frontend" resolves to frontend.
var localTable = []localEntry{
	{
		key:         "frontend",
		habilidades: []string{"React", "Vue.js", "Angular", "JavaScript", "TypeScript", "CSS/SASS", "Responsive Design", "Webpack"},
		experiencia: "Desarrollo de interfaces de usuario modernas y responsivas. Experiencia con frameworks como React, Vue.js y Angular. Optimización de rendimiento y experiencia de usuario.",
	},
	{
		key:         "backend",
		habilidades: []string{"Node.js", "Python", "Java", "APIs REST", "Bases de datos", "Docker", "AWS", "Microservicios"},
		experiencia: "Desarrollo de servicios backend escalables y APIs robustas. Experiencia con bases de datos, arquitectura de microservicios y despliegue en la nube.",
	},
	{
		key:         "fullstack",
		habilidades: []string{"React", "Node.js", "JavaScript", "Python", "Bases de datos", "Git", "Docker", "AWS"},
		experiencia: "Desarrollo completo de aplicaciones web, desde el frontend hasta el backend. Experiencia en arquitectura de aplicaciones, bases de datos y despliegue en producción.",
	},
	{
		key:         "devops",
		habilidades: []string{"Docker", "Kubernetes", "AWS", "CI/CD", "Jenkins", "Git", "Linux", "Monitoring"},
		experiencia: "Automatización de procesos de desarrollo y despliegue. Experiencia con contenedores, orquestación y plataformas cloud. Implementación de pipelines CI/CD.",
	},
	{
		key:         "community manager",
		habilidades: []string{"Redes Sociales", "Copywriting", "Canva", "Photoshop", "Analytics", "Engagement", "Content Creation", "Hootsuite"},
		experiencia: "Gestión de comunidades online y creación de contenido para redes sociales. Experiencia en engagement, análisis de métricas y desarrollo de estrategias de contenido.",
	},
	{
		key:         "ux",
		habilidades: []string{"Figma", "Sketch", "User Research", "Wireframing", "Prototyping", "Usability Testing", "Design Thinking", "Adobe XD"},
		experiencia: "Diseño de experiencias de usuario centradas en el usuario. Investigación, prototipado y testing de interfaces. Metodologías de Design Thinking.",
	},
	{
		key:         "disenador",
		habilidades: []string{"Photoshop", "Illustrator", "Figma", "Sketch", "InDesign", "UI/UX", "Branding", "Typography"},
		experiencia: "Creación de diseños visuales impactantes y experiencias de usuario intuitivas. Experiencia en branding, diseño gráfico y herramientas de diseño profesionales.",
	},
	{
		key:         "desarrollador",
		habilidades: []string{"JavaScript", "React", "Node.js", "Git", "HTML/CSS", "APIs REST", "Bases de datos", "Testing"},
		experiencia: "Desarrollo de aplicaciones web utilizando tecnologías modernas como React y Node.js. Experiencia en trabajo colaborativo con Git, integración de APIs y mantenimiento de bases de datos.",
	},
	{
		key:         "programador",
		habilidades: []string{"Python", "Java", "C++", "Algoritmos", "Estructuras de datos", "Git", "Testing", "Debugging"},
		experiencia: "Desarrollo de software con múltiples lenguajes de programación. Implementación de algoritmos eficientes y resolución de problemas complejos. Experiencia en testing y debugging de aplicaciones.",
	},
	{
		key:         "marketing",
		habilidades: []string{"Marketing Digital", "SEO/SEM", "Google Analytics", "Redes Sociales", "Email Marketing", "Copywriting", "Photoshop", "Canva"},
		experiencia: "Desarrollo e implementación de estrategias de marketing digital. Gestión de campañas en redes sociales, optimización SEO y análisis de métricas de rendimiento.",
	},
	{
		key:         "ventas",
		habilidades: []string{"CRM", "Negociación", "Prospección", "Salesforce", "Comunicación", "Análisis de mercado", "Presentaciones", "Excel"},
		experiencia: "Desarrollo de relaciones comerciales y cierre de ventas. Experiencia en prospección, negociación y uso de herramientas CRM para seguimiento de clientes.",
	},
	{
		key:         "administrador",
		habilidades: []string{"Excel", "Gestión de proyectos", "Análisis de datos", "Comunicación", "Liderazgo", "Planificación", "Presupuestos", "Office"},
		experiencia: "Gestión administrativa y coordinación de equipos. Experiencia en planificación, análisis de datos y optimización de procesos organizacionales.",
	},
	{
		key:         "gerente",
		habilidades: []string{"Liderazgo", "Gestión de equipos", "Planificación estratégica", "Presupuestos", "KPIs", "Comunicación", "Negociación", "Excel"},
		experiencia: "Liderazgo de equipos y gestión de proyectos estratégicos. Experiencia en planificación, análisis de KPIs y toma de decisiones ejecutivas.",
	},
	{
		key:         "profesor",
		habilidades: []string{"Pedagogía", "Planificación curricular", "Evaluación", "Comunicación", "Tecnología educativa", "Gestión de aula", "Investigación", "Office"},
		experiencia: "Enseñanza y desarrollo de programas educativos. Experiencia en metodologías pedagógicas, evaluación de estudiantes y uso de tecnología en el aula.",
	},
	{
		key:         "enfermero",
		habilidades: []string{"Atención al paciente", "Procedimientos médicos", "Farmacología", "Comunicación", "Trabajo en equipo", "Emergencias", "Documentación", "Empatía"},
		experiencia: "Atención directa al paciente y apoyo en procedimientos médicos. Experiencia en cuidados intensivos, administración de medicamentos y trabajo en equipo multidisciplinario.",
	},
}

var genericSkills = []string{
	"Comunicación efectiva",
	"Trabajo en equipo",
	"Resolución de problemas",
	"Adaptabilidad",
	"Gestión del tiempo",
	"Liderazgo",
	"Pensamiento crítico",
	"Orientación a resultados",
}

// minPartialWord is the shortest title word matched inside a table key.
// Keys shorter than it only match whole words.
const minPartialWord = 3

// Keys returns the local table keys in match order.
func Keys() []string {
	out := make([]string, len(localTable))
	for i, e := range localTable {
		out[i] = e.key
	}
	return out
}

// Normalize lowercases title, removes accents and drops anything outside [a-z0-9 ].
func Normalize(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		folded = strings.ToLower(title)
	}
	var sb strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

// LookupLocal finds a table entry whose key appears in the normalized title. When none does,
// each title word is matched partially against the keys. ok is false when nothing matches.
func LookupLocal(title string) (types.Suggestion, bool) {
	normalized := Normalize(title)
	if normalized == "" {
		return types.Suggestion{}, false
	}

	words := strings.Fields(normalized)
	for _, e := range localTable {
		if len(e.key) < minPartialWord {
			if containsWord(words, e.key) {
				return e.suggestion(), true
			}
			continue
		}
		if strings.Contains(normalized, e.key) {
			return e.suggestion(), true
		}
	}

	for _, word := range words {
		if len(word) < minPartialWord {
			continue
		}
		for _, e := range localTable {
			if len(e.key) >= minPartialWord && (strings.Contains(word, e.key) || strings.Contains(e.key, word)) {
				return e.suggestion(), true
			}
		}
	}
	return types.Suggestion{}, false
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

// Generic returns the catch-all suggestion for a title with no local match.
func Generic(title string) types.Suggestion {
	return types.Suggestion{
		Habilidades: append([]string(nil), genericSkills...),
		Experiencia: fmt.Sprintf("Experiencia profesional en el área de %s. Desarrollo de habilidades técnicas y blandas relevantes para el puesto. Capacidad de adaptación y aprendizaje continuo en entornos dinámicos.", strings.TrimSpace(title)),
		Fuente:      types.SourceGeneric,
	}
}

func (e localEntry) suggestion() types.Suggestion {
	return types.Suggestion{
		Habilidades: append([]string(nil), e.habilidades...),
		Experiencia: e.experiencia,
		Fuente:      types.SourceLocal,
	}
}

// FormatSkills joins skills for a free-text form field.
func FormatSkills(skills []string) string {
	return strings.Join(skills, ", ")
}

// CombineSkills appends suggested skills to a comma separated list, skipping any
// already present (case-insensitive).
func CombineSkills(existing string, suggested []string) string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range strings.Split(existing, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
			seen[strings.ToLower(s)] = true
		}
	}
	for _, s := range suggested {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return strings.Join(out, ", ")
}
