package assess

import "testing"

func TestScanHTML(t *testing.T) {
	html := `<!DOCTYPE html><html><head>
	<script src="https://cdn.example.com/a.js" integrity="sha384-x"></script>
	<script src="https://cdn.example.com/b.js"></script>
	<script src="/local.js"></script>
	<script>var inline = 1;</script>
	</head><body>
	<form action="/a"></form>
	<form action="/b"></form>
	<input type="text" name="q">
	<input type="password" name="pw">
	<input type="PASSWORD" name="pw2" autocomplete="off">
	</body></html>`

	facts := scanHTML(html)

	if facts.InlineScripts != 1 {
		t.Errorf("InlineScripts = %d, want 1 (relative src is neither inline nor external)", facts.InlineScripts)
	}
	if facts.ExternalScripts != 2 {
		t.Errorf("ExternalScripts = %d, want 2", facts.ExternalScripts)
	}
	if facts.ScriptsWithIntegrity != 1 {
		t.Errorf("ScriptsWithIntegrity = %d, want 1", facts.ScriptsWithIntegrity)
	}
	if facts.Forms != 2 {
		t.Errorf("Forms = %d, want 2", facts.Forms)
	}
	if facts.PasswordInputs != 2 {
		t.Errorf("PasswordInputs = %d, want 2", facts.PasswordInputs)
	}
	if !facts.PasswordAutocomplete {
		t.Error("PasswordAutocomplete = false, want true (pw has no autocomplete=off)")
	}
}

func TestScanHTML_Empty(t *testing.T) {
	facts := scanHTML("")
	if facts != (htmlFacts{}) {
		t.Errorf("facts = %+v, want zero value", facts)
	}
}

func TestScanHTML_TruncatedInput(t *testing.T) {
	// A document cut off mid-tag still yields what was parsed before the cut.
	facts := scanHTML(`<form></form><form action="/x" metho`)
	if facts.Forms < 1 {
		t.Errorf("Forms = %d, want at least 1", facts.Forms)
	}
}
