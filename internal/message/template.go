package message

import (
	"regexp"
	"time"
)

// placeholder matches "$$", "$name" and "${name}". Identifiers follow the
// usual [_a-zA-Z][_a-zA-Z0-9]* shape.
var placeholder = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\})`)

// Vars are the substitutions available to a template.
type Vars map[string]string

// ContactVars returns the standard per-contact substitutions.
func ContactVars(name, phone string, now time.Time) Vars {
	return Vars{
		"name":  name,
		"phone": phone,
		"date":  now.Format("2006-01-02"),
		"time":  now.Format("15:04"),
	}
}

// Render substitutes known placeholders and leaves unknown ones verbatim.
// It never fails.
func Render(tmpl string, vars Vars) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		switch {
		case sub[1] != "":
			return "$"
		case sub[2] != "":
			if v, ok := vars[sub[2]]; ok {
				return v
			}
		case sub[3] != "":
			if v, ok := vars[sub[3]]; ok {
				return v
			}
		}
		return m
	})
}

// RenderFor is Render with ContactVars.
func RenderFor(tmpl, name, phone string, now time.Time) string {
	return Render(tmpl, ContactVars(name, phone, now))
}
