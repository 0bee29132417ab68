// Package secrets flags candidate secrets in text files before they are
// captured into a snapshot. Files with findings are never synced.
package secrets

import (
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/tether-cli/tether/pkg/errors"
)

// Type classifies a finding
type Type string

// Known secret types, in scan precedence order
const (
	TypeAwsAccessKey Type = "AwsAccessKey"
	TypeAwsSecretKey Type = "AwsSecretKey"
	TypeGitHubToken  Type = "GitHubToken"
	TypeGitHubPat    Type = "GitHubPat"
	TypeApiKey       Type = "ApiKey"
	TypePrivateKey   Type = "PrivateKey"
	TypePassword     Type = "Password"
	TypeDatabaseUrl  Type = "DatabaseUrl"
	TypeBearerToken  Type = "BearerToken"
	TypeHighEntropy  Type = "HighEntropy"
)

// Description returns the human-readable label for a secret type
func (t Type) Description() string {
	switch t {
	case TypeAwsAccessKey:
		return "AWS Access Key"
	case TypeAwsSecretKey:
		return "AWS Secret Key"
	case TypeGitHubToken:
		return "GitHub Token"
	case TypeGitHubPat:
		return "GitHub Personal Access Token"
	case TypeApiKey:
		return "API Key"
	case TypePrivateKey:
		return "Private Key"
	case TypePassword:
		return "Password"
	case TypeDatabaseUrl:
		return "Database URL with credentials"
	case TypeBearerToken:
		return "Bearer Token"
	case TypeHighEntropy:
		return "High-entropy string (possible secret)"
	default:
		return string(t)
	}
}

// Finding is a single flagged line. Context is the redacted line preview.
type Finding struct {
	LineNumber int
	Type       Type
	Context    string
}

// Scanner holds the compiled pattern set. Patterns are evaluated
// top-to-bottom against each line; the first match wins per line.
type Scanner struct {
	patterns []pattern
}

type pattern struct {
	re  *regexp.Regexp
	typ Type
}

var (
	globalOnce    sync.Once
	globalScanner *Scanner

	redactRe = regexp.MustCompile(`[=:]\s*['"]?([A-Za-z0-9+/=_\-]{8,})['"]?`)
)

// NewScanner compiles a fresh pattern set
func NewScanner() *Scanner {
	return &Scanner{patterns: []pattern{
		{regexp.MustCompile(`AKIA[0-9A-Z]{16}`), TypeAwsAccessKey},
		{regexp.MustCompile(`(?i)aws_secret_access_key\s*[=:]\s*['"]?([A-Za-z0-9/+=]{40})['"]?`), TypeAwsSecretKey},
		{regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`), TypeGitHubToken},
		{regexp.MustCompile(`gho_[a-zA-Z0-9]{36}`), TypeGitHubPat},
		{regexp.MustCompile(`github_pat_[a-zA-Z0-9]{22}_[a-zA-Z0-9]{59}`), TypeGitHubPat},
		{regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[=:]\s*['"]([a-zA-Z0-9_\-]{20,})['"]`), TypeApiKey},
		{regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`), TypePrivateKey},
		{regexp.MustCompile(`-----BEGIN\s+OPENSSH PRIVATE KEY-----`), TypePrivateKey},
		{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"]([^'"]{8,})['"]`), TypePassword},
		{regexp.MustCompile(`(?i)(postgres|mysql|mongodb)://[^:]+:[^@]+@`), TypeDatabaseUrl},
		{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`), TypeBearerToken},
		{regexp.MustCompile(`['"]([a-zA-Z0-9+/]{32,}={0,2})['"]`), TypeHighEntropy},
	}}
}

// Default returns the process-wide scanner, compiled on first use and
// immutable thereafter.
func Default() *Scanner {
	globalOnce.Do(func() {
		globalScanner = NewScanner()
	})
	return globalScanner
}

// ScanContent scans text line by line and returns at most one finding per
// line. Line numbers are 1-based.
func (s *Scanner) ScanContent(content string) []Finding {
	var findings []Finding

	for i, line := range strings.Split(content, "\n") {
		for _, p := range s.patterns {
			if p.re.MatchString(line) {
				findings = append(findings, Finding{
					LineNumber: i + 1,
					Type:       p.typ,
					Context:    redactLine(line),
				})
				break
			}
		}
	}

	return findings
}

// ScanFile reads and scans a file with the process-wide scanner
func ScanFile(path string) ([]Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
	}
	return Default().ScanContent(string(content)), nil
}

// redactLine replaces assigned values with a marker and truncates long lines
func redactLine(line string) string {
	redacted := redactRe.ReplaceAllString(line, "=***REDACTED***")
	if len(redacted) > 80 {
		return redacted[:77] + "..."
	}
	return redacted
}
