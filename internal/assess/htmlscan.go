package assess

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// htmlFacts holds the structural counts a single-pass tokenizer scan pulls
// out of the rendered HTML for the security rules.
type htmlFacts struct {
	InlineScripts        int
	ExternalScripts      int // script src with an absolute http(s) URL
	ScriptsWithIntegrity int
	Forms                int
	PasswordInputs       int
	PasswordAutocomplete bool // any password input without autocomplete="off"
}

// scanHTML performs a single-pass traversal of the rendered HTML. A
// tokenizer error mid-document returns the facts collected so far; the
// assessment degrades rather than fails.
func scanHTML(renderedHTML string) htmlFacts {
	var facts htmlFacts

	z := html.NewTokenizer(strings.NewReader(renderedHTML))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				return facts
			}
			return facts

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			switch string(tn) {
			case "script":
				src, integrity := "", false
				if hasAttr {
					attrs := tagAttrs(z)
					src = attrs["src"]
					_, integrity = attrs["integrity"]
				}
				switch {
				case src == "":
					facts.InlineScripts++
				case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
					facts.ExternalScripts++
					if integrity {
						facts.ScriptsWithIntegrity++
					}
				}

			case "form":
				facts.Forms++

			case "input":
				if !hasAttr {
					continue
				}
				attrs := tagAttrs(z)
				if strings.EqualFold(attrs["type"], "password") {
					facts.PasswordInputs++
					if !strings.EqualFold(attrs["autocomplete"], "off") {
						facts.PasswordAutocomplete = true
					}
				}
			}
		}
	}
}

func tagAttrs(z *html.Tokenizer) map[string]string {
	attrs := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		attrs[strings.ToLower(string(key))] = string(val)
		if !more {
			return attrs
		}
	}
}
