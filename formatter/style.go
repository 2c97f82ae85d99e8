package formatter

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Style selects the placeholder syntax used by a format specification.
type Style string

const (
	// StylePercent extracts fields from %(name)s placeholders.
	StylePercent Style = "%"
	// StyleBrace extracts fields from {name} placeholders.
	StyleBrace Style = "{"
	// StyleDollar extracts fields from $name and ${name} placeholders.
	StyleDollar Style = "$"
	// StyleCSV treats the format as a comma-separated list of field names.
	StyleCSV Style = ","
)

var (
	percentRe = regexp.MustCompile(`%\((.+?)\)`)
	braceRe   = regexp.MustCompile(`\{(.+?)\}`)
	dollarRe  = regexp.MustCompile(`\$\{(\w+)\}|\$(\w+)`)
)

// ParseFormat extracts the ordered required field names from format
// according to style. An empty format yields an empty list, which is legal
// and means "emit only message plus auto-included attributes". An
// unrecognized style is a configuration error.
func ParseFormat(format string, style Style) ([]string, error) {
	if format == "" {
		return nil, nil
	}

	switch style {
	case StylePercent:
		return captures(percentRe, format), nil
	case StyleBrace:
		return captures(braceRe, format), nil
	case StyleDollar:
		var fields []string
		for _, m := range dollarRe.FindAllStringSubmatch(format, -1) {
			if m[1] != "" {
				fields = append(fields, m[1])
			} else {
				fields = append(fields, m[2])
			}
		}
		return fields, nil
	case StyleCSV:
		var fields []string
		for _, f := range strings.Split(format, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		return fields, nil
	}
	return nil, errors.Errorf("formatter: unsupported style %q (must be one of %q, %q, %q, %q)",
		string(style), StylePercent, StyleBrace, StyleDollar, StyleCSV)
}

func captures(re *regexp.Regexp, s string) []string {
	var fields []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		fields = append(fields, m[1])
	}
	return fields
}

// validateFormat reports a configuration error when a non-empty format
// contains no placeholders of the declared style. It mirrors the fail-fast
// contract of formatter construction: a bad format/style combination must
// surface immediately, not at the first log call.
func validateFormat(format string, style Style, fields []string) error {
	if format != "" && len(fields) == 0 {
		return errors.Errorf("formatter: format %q contains no fields for style %q", format, string(style))
	}
	return nil
}
