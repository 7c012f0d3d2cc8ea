// Package assess evaluates a fixed rule set over the primary-document
// response headers, the rendered HTML, and the captured network events,
// producing a heuristic advisory report. Findings are appended as free-text
// notes in detection order; there is no dedupe or severity ranking beyond
// what the wording implies.
package assess

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
)

// LibPattern is one known-vulnerable-library signature.
type LibPattern struct {
	Name    string
	Pattern *regexp.Regexp
	Risk    string
}

// FrameworkSignature flags a client-side framework by substring with an
// accompanying advisory note.
type FrameworkSignature struct {
	Marker string
	Note   string
}

// Config holds the swappable rule tables.
type Config struct {
	ExpectedHeaders       []string
	Frameworks            []FrameworkSignature
	VulnerableLibs        []LibPattern
	InlineScriptThreshold int
	MixedContentURLCap    int
}

// DefaultConfig returns the stock rule tables.
func DefaultConfig() Config {
	return Config{
		ExpectedHeaders: []string{
			"strict-transport-security",
			"content-security-policy",
			"x-frame-options",
			"x-content-type-options",
			"referrer-policy",
			"permissions-policy",
			"x-xss-protection",
		},
		Frameworks: []FrameworkSignature{
			{Marker: "wordpress", Note: "WordPress site detected; verify plugins and themes are up to date"},
			{Marker: "angular", Note: "AngularJS detected; check for XSS vulnerabilities in older versions"},
			{Marker: "react", Note: "React detected; ensure no dangerouslySetInnerHTML misuse"},
		},
		VulnerableLibs: []LibPattern{
			{Name: "jQuery 1.x", Pattern: regexp.MustCompile(`(?i)jquery[/.-]?1\.`), Risk: "HIGH - known XSS vulnerabilities"},
			{Name: "jQuery 2.x", Pattern: regexp.MustCompile(`(?i)jquery[/.-]?2\.`), Risk: "MEDIUM - security patches needed"},
			{Name: "Angular 1.x", Pattern: regexp.MustCompile(`(?i)angular[/.-]?1\.`), Risk: "HIGH - AngularJS reached end of life"},
			{Name: "Bootstrap 3.x", Pattern: regexp.MustCompile(`(?i)bootstrap[/.-]?3\.`), Risk: "MEDIUM - outdated version"},
		},
		InlineScriptThreshold: 5,
		MixedContentURLCap:    10,
	}
}

var (
	insecureURL   = regexp.MustCompile(`http://[^"'\s]+`)
	jqueryVersion = regexp.MustCompile(`(?i)jquery[/.-]?([\d.]+)`)
)

// Assessor runs the rule set against one page's captured data.
type Assessor struct {
	cfg Config
}

// New returns an Assessor using the given tables.
func New(cfg Config) *Assessor {
	return &Assessor{cfg: cfg}
}

// Assess evaluates every rule and returns the assembled report. It is a
// pure function of its inputs.
func (a *Assessor) Assess(pageURL *url.URL, headers map[string]string, renderedHTML string, network []model.NetworkEvent) model.SecurityReport {
	isHTTPS := pageURL.Scheme == "https"
	lowerHTML := strings.ToLower(renderedHTML)
	facts := scanHTML(renderedHTML)
	hdrs := indexHeaders(headers)

	report := model.SecurityReport{
		IsHTTPS:                isHTTPS,
		MissingSecurityHeaders: a.missingHeaders(hdrs),
		CSP:                    hdrs.get("content-security-policy"),
	}

	if isHTTPS {
		report.MixedContent, report.MixedContentURLs = a.mixedContent(renderedHTML, network)
	}

	notes := make([]string, 0, 8)
	note := func(format string, args ...any) {
		notes = append(notes, fmt.Sprintf(format, args...))
	}

	// Framework fingerprints with advisory text.
	if strings.Contains(lowerHTML, "jquery") {
		version := "unknown"
		if m := jqueryVersion.FindStringSubmatch(renderedHTML); m != nil {
			version = m[1]
		}
		note("Detected jQuery version %s; check for known vulnerabilities", version)
	}
	for _, fw := range a.cfg.Frameworks {
		if strings.Contains(lowerHTML, fw.Marker) {
			notes = append(notes, fw.Note)
		}
	}

	if facts.InlineScripts > a.cfg.InlineScriptThreshold {
		note("Found %d inline scripts; consider CSP to mitigate XSS risks", facts.InlineScripts)
	}

	if facts.Forms > 0 && !strings.Contains(renderedHTML, "csrf") && !strings.Contains(renderedHTML, "_token") {
		note("Found %d form(s) with no obvious CSRF protection", facts.Forms)
	}

	if !isHTTPS {
		note("CRITICAL: Site not using HTTPS; data transmitted in plain text")
	}

	if !hdrs.has("strict-transport-security") {
		note("Missing HSTS header; connections could be downgraded to HTTP")
	}
	if !hdrs.has("x-frame-options") && !strings.Contains(report.CSP, "frame-ancestors") {
		note("Missing X-Frame-Options and CSP frame-ancestors; vulnerable to clickjacking")
	}
	if !hdrs.has("x-content-type-options") {
		note("Missing X-Content-Type-Options; vulnerable to MIME-sniffing attacks")
	}

	// Disclosure scans over the raw HTML.
	if strings.Contains(renderedHTML, "api_key") || strings.Contains(renderedHTML, "apikey") || strings.Contains(renderedHTML, "access_token") {
		note("WARNING: Possible API keys or tokens exposed in HTML source")
	}
	if strings.Contains(renderedHTML, "localhost") || strings.Contains(renderedHTML, "127.0.0.1") || strings.Contains(renderedHTML, ".local") {
		note("Development references detected in production code")
	}
	if found := sqlKeywords(lowerHTML); len(found) > 0 {
		note("WARNING: Potential SQL keywords found in HTML: %s", strings.Join(found, ", "))
	}

	if !isHTTPS && facts.PasswordInputs > 0 {
		note("CRITICAL: Password fields detected on non-HTTPS page - credentials at risk!")
	}
	if facts.PasswordInputs > 0 && facts.PasswordAutocomplete {
		note("Password fields allow autocomplete; consider disabling for security")
	}

	for _, lib := range a.cfg.VulnerableLibs {
		if lib.Pattern.MatchString(renderedHTML) {
			note("%s detected - %s", lib.Name, lib.Risk)
		}
	}

	if !hdrs.has("x-frame-options") && report.CSP == "" {
		note("No clickjacking protection (X-Frame-Options or CSP frame-ancestors)")
	}

	report.InsecureCookies = a.auditCookies(hdrs, isHTTPS, &notes)

	if server := hdrs.get("server"); server != "" && server != "cloudflare" {
		note("Server header exposed: %s - consider hiding for security", server)
	}
	if poweredBy := hdrs.get("x-powered-by"); poweredBy != "" {
		note("X-Powered-By header exposed: %s - remove to prevent info disclosure", poweredBy)
	}
	if hdrs.get("access-control-allow-origin") == "*" {
		note("CORS set to wildcard (*); may expose sensitive data to any origin")
	}

	if facts.ExternalScripts > 0 && facts.ScriptsWithIntegrity == 0 {
		note("%d external script(s) without Subresource Integrity (SRI)", facts.ExternalScripts)
	}

	report.Notes = notes
	return report
}

// headerIndex is a case-insensitive view over the primary-document headers.
type headerIndex map[string]string

func indexHeaders(headers map[string]string) headerIndex {
	lowered := make(headerIndex, len(headers))
	for k, v := range headers {
		lowered[strings.ToLower(k)] = v
	}
	return lowered
}

func (h headerIndex) get(name string) string { return h[name] }

func (h headerIndex) has(name string) bool {
	_, ok := h[name]
	return ok
}

func (a *Assessor) missingHeaders(hdrs headerIndex) []string {
	missing := make([]string, 0, len(a.cfg.ExpectedHeaders))
	for _, name := range a.cfg.ExpectedHeaders {
		if !hdrs.has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// mixedContent reports plain-http references in the HTML or in captured
// network traffic, collecting up to the configured cap of evidence URLs.
func (a *Assessor) mixedContent(renderedHTML string, network []model.NetworkEvent) (bool, []string) {
	var mixed bool
	var urls []string

	if matches := insecureURL.FindAllString(renderedHTML, -1); len(matches) > 0 {
		mixed = true
		if len(matches) > a.cfg.MixedContentURLCap {
			matches = matches[:a.cfg.MixedContentURLCap]
		}
		urls = append(urls, matches...)
	}

	for _, ev := range network {
		if strings.HasPrefix(ev.Name, "http://") {
			mixed = true
			if len(urls) < a.cfg.MixedContentURLCap {
				urls = append(urls, ev.Name)
			}
		}
	}

	return mixed, urls
}

// auditCookies flags missing Secure/HttpOnly/SameSite attributes when the
// primary document set a cookie. Each absent flag is reported separately.
func (a *Assessor) auditCookies(hdrs headerIndex, isHTTPS bool, notes *[]string) bool {
	cookie := hdrs.get("set-cookie")
	if cookie == "" {
		return false
	}

	insecure := false
	if isHTTPS && !strings.Contains(cookie, "Secure") {
		*notes = append(*notes, "Cookies missing Secure flag on HTTPS site")
		insecure = true
	}
	if !strings.Contains(cookie, "HttpOnly") {
		*notes = append(*notes, "Cookies missing HttpOnly flag; vulnerable to XSS attacks")
		insecure = true
	}
	if !strings.Contains(cookie, "SameSite") {
		*notes = append(*notes, "Cookies missing SameSite attribute; vulnerable to CSRF")
		insecure = true
	}
	return insecure
}

var sqlPrefixes = []string{"select ", "union ", "insert ", "delete ", "drop ", "update "}

// sqlKeywords reports SQL statement fragments appearing in the HTML, a weak
// signal of reflected query text.
func sqlKeywords(lowerHTML string) []string {
	var found []string
	for _, p := range sqlPrefixes {
		if strings.Contains(lowerHTML, p+"from") || strings.Contains(lowerHTML, p+"where") {
			found = append(found, p)
		}
	}
	return found
}
