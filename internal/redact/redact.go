// Package redact scrubs credentials out of command lines before they are
// written to the audit log.
package redact

import (
	"regexp"
	"strings"
)

const Placeholder = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
	regexp.MustCompile(`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}[a-zA-Z0-9-]*`),
	regexp.MustCompile(`[sr]k_live_[0-9a-zA-Z]{24}`),
	regexp.MustCompile(`\bsk-(ant-)?[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
}

// Value-bearing patterns keep the key and replace only the value.
var (
	keyValue   = regexp.MustCompile(`(?i)\b((?:aws_access_key_id|aws_secret_access_key|aws_session_token|github_token|gh_token|github_pat|api[_-]?key|secret[_-]?key|access[_-]?token|auth[_-]?token|password|passwd|pwd|secret)\s*[=:]\s*)(['"]?)[^\s'"]{6,}(['"]?)`)
	bearer     = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/-]{16,}=*`)
	urlCreds   = regexp.MustCompile(`(https?://)[^/\s:@]+:[^/\s@]+@`)
	headerAuth = regexp.MustCompile(`(?i)((?:-H|--header)\s+['"]?(?:authorization|x-api-key|private-token):\s*)[^'"\n]+`)
)

// sensitiveEnvNames flag inline assignments such as "NPM_TOKEN=... npm publish".
var sensitiveEnvNames = []string{
	"TOKEN", "SECRET", "PASSWORD", "PASSWD", "API_KEY", "ACCESS_KEY",
	"DATABASE_URL", "REDIS_URL", "MONGO_URL", "PRIVATE_KEY",
}

var envAssign = regexp.MustCompile(`(^|\s)([A-Za-z_][A-Za-z0-9_]*)=(\S+)`)

// Redact replaces credentials in a command line with a placeholder.
func Redact(input string) string {
	out := input
	for _, re := range secretPatterns {
		out = re.ReplaceAllString(out, Placeholder)
	}
	out = keyValue.ReplaceAllString(out, "${1}${2}"+Placeholder+"${3}")
	out = bearer.ReplaceAllString(out, "${1}"+Placeholder)
	out = urlCreds.ReplaceAllString(out, "${1}"+Placeholder+"@")
	out = headerAuth.ReplaceAllString(out, "${1}"+Placeholder)
	out = envAssign.ReplaceAllStringFunc(out, redactAssignment)
	return out
}

func redactAssignment(m string) string {
	sub := envAssign.FindStringSubmatch(m)
	if sub == nil || !IsSensitiveName(sub[2]) || sub[3] == Placeholder {
		return m
	}
	return sub[1] + sub[2] + "=" + Placeholder
}

// IsSensitiveName reports whether an environment variable name looks like
// it holds a credential.
func IsSensitiveName(name string) bool {
	upper := strings.ToUpper(name)
	for _, s := range sensitiveEnvNames {
		if strings.Contains(upper, s) {
			return true
		}
	}
	return false
}
