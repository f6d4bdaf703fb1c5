package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCSS(t *testing.T) {
	css := DefaultPageStyle().CSS()

	if !strings.Contains(css, "@page { size: A4; margin: 5mm; }") {
		t.Errorf("CSS missing A4 page rule:\n%s", css)
	}
	if !strings.Contains(css, ".resume-container") || !strings.Contains(css, "max-height: none !important") {
		t.Errorf("CSS missing container unclip rule:\n%s", css)
	}
	if !strings.Contains(css, "@media print {") {
		t.Errorf("CSS missing print-media unclip variant:\n%s", css)
	}
}

// Card chrome flattens, pill badges keep their radius, and the preserve
// rule must come after the flatten rule so it wins at equal specificity.
func TestCSSFlattensCardsButPreservesPills(t *testing.T) {
	css := DefaultPageStyle().CSS()

	flatten := strings.Index(css, "border-radius: 0 !important")
	preserve := strings.Index(css, "border-radius: 9999px !important")
	if flatten == -1 {
		t.Fatalf("CSS missing flatten rule:\n%s", css)
	}
	if preserve == -1 {
		t.Fatalf("CSS missing pill preserve rule:\n%s", css)
	}
	if preserve < flatten {
		t.Fatal("pill preserve rule must come after flatten rule")
	}
	if !strings.Contains(css, ".rounded-full") {
		t.Errorf("CSS missing .rounded-full selector:\n%s", css)
	}
}

func TestInjectCSSScriptIsIdempotent(t *testing.T) {
	script := DefaultPageStyle().InjectCSSScript()

	if !strings.Contains(script, "pdf-print-overrides") {
		t.Errorf("inject script has no stable element id:\n%s", script)
	}
	if !strings.Contains(script, "prev.remove()") {
		t.Errorf("inject script does not replace a previous tag:\n%s", script)
	}
}

func TestCleanupScriptTargetsConfiguredSelectors(t *testing.T) {
	style := &PageStyle{UnclipSelectors: []string{".custom-resume"}}
	script := style.CleanupScript()

	if !strings.Contains(script, `".custom-resume"`) {
		t.Errorf("cleanup script missing configured selector:\n%s", script)
	}
	if !strings.Contains(script, "maxHeight") || !strings.Contains(script, "overflow") {
		t.Errorf("cleanup script missing inline style resets:\n%s", script)
	}
}

// Fixed-page heights show up in physical and font-relative units too, not
// just viewport/pixel ones.
func TestCleanupScriptMatchesFixedHeightUnits(t *testing.T) {
	script := DefaultPageStyle().CleanupScript()

	for _, unit := range []string{"vh", "vmin", "vmax", "px", "mm", "cm", "in", "rem", "em", "%"} {
		if !strings.Contains(script, unit) {
			t.Errorf("cleanup regex missing unit %q:\n%s", unit, script)
		}
	}
	if strings.Contains(script, "%%") {
		t.Errorf("cleanup script has unexpanded format escape:\n%s", script)
	}
}

func TestLoadPageStyle(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		style, err := LoadPageStyle("")
		if err != nil {
			t.Fatalf("LoadPageStyle() err = %v", err)
		}
		if len(style.UnclipSelectors) == 0 || len(style.PreserveSelectors) == 0 {
			t.Fatalf("defaults empty: %+v", style)
		}
	})

	t.Run("partial config overlays defaults", func(t *testing.T) {
		path := writeConfig(t, `{"unclip_selectors": [".cv-sheet"]}`)
		style, err := LoadPageStyle(path)
		if err != nil {
			t.Fatalf("LoadPageStyle() err = %v", err)
		}
		if len(style.UnclipSelectors) != 1 || style.UnclipSelectors[0] != ".cv-sheet" {
			t.Fatalf("UnclipSelectors = %v", style.UnclipSelectors)
		}
		// Untouched lists keep their defaults.
		if len(style.PreserveSelectors) == 0 {
			t.Fatal("PreserveSelectors default lost")
		}
	})

	t.Run("schema rejects wrong types", func(t *testing.T) {
		path := writeConfig(t, `{"unclip_selectors": ".not-a-list"}`)
		if _, err := LoadPageStyle(path); err == nil {
			t.Fatal("LoadPageStyle() accepted non-array selectors")
		}
	})

	t.Run("schema rejects unknown keys", func(t *testing.T) {
		path := writeConfig(t, `{"unclip": [".x"]}`)
		if _, err := LoadPageStyle(path); err == nil {
			t.Fatal("LoadPageStyle() accepted unknown key")
		}
	})

	t.Run("schema rejects empty selector", func(t *testing.T) {
		path := writeConfig(t, `{"flatten_selectors": [""]}`)
		if _, err := LoadPageStyle(path); err == nil {
			t.Fatal("LoadPageStyle() accepted empty selector")
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := LoadPageStyle(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Fatal("LoadPageStyle() accepted missing file")
		}
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagestyle.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
