// Package redact strips sensitive material from error strings before they
// reach logs. Raw errors can carry connection URLs, bearer tokens, API keys
// or SQL fragments; everything logged through the API layer passes through
// here first.
package redact

import "regexp"

var (
	// Connection strings with inline credentials.
	dbConnRegex = regexp.MustCompile(`(?i)postgres(?:ql)?://[^@\s]+@`)

	// Bearer tokens and JWTs.
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}`)
	jwtRegex    = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Generic secrets in key=value or key: value form.
	secretRegex = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// SQL fragments leaked from the store layer.
	sqlRegex = regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s[\s\w,*()$=<>'"]+\b(FROM|INTO|SET|WHERE)\b[\s\w,*()$=<>'"]*`)

	placeholders = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{dbConnRegex, "[REDACTED_DSN]@"},
		{bearerRegex, "[REDACTED_TOKEN]"},
		{jwtRegex, "[REDACTED_TOKEN]"},
		{secretRegex, "$1$2[REDACTED]"},
		{sqlRegex, "[REDACTED_SQL]"},
	}
)

// String redacts sensitive fragments from s.
func String(s string) string {
	for _, p := range placeholders {
		s = p.pattern.ReplaceAllString(s, p.replacement)
	}
	return s
}

// Error redacts an error's message. Nil errors redact to the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
