package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// PageStyle is the integration contract with the frontend's markup: which
// class families get unclipped for multi-page print and which keep their
// rounding. The frontend rounds for two distinct purposes (card chrome vs.
// pill-shaped skill badges), so flattening is selector-driven rather than
// blanket. Selector lists are data so they can track frontend changes
// without a rebuild.
type PageStyle struct {
	// UnclipSelectors mark resume-container-like elements whose height and
	// overflow clipping must be removed before printing.
	UnclipSelectors []string `json:"unclip_selectors"`
	// FlattenSelectors are rounded-card markers flattened to zero radius.
	FlattenSelectors []string `json:"flatten_selectors"`
	// PreserveSelectors are pill/badge markers that keep their radius.
	PreserveSelectors []string `json:"preserve_selectors"`
}

// DefaultPageStyle matches the current resume preview markup.
func DefaultPageStyle() *PageStyle {
	return &PageStyle{
		UnclipSelectors: []string{
			".resume-container",
			".resume-preview",
			".resume-page",
			".preview-wrapper",
		},
		FlattenSelectors: []string{
			".rounded-md",
			".rounded-lg",
			".rounded-xl",
			".rounded-2xl",
			".card",
		},
		PreserveSelectors: []string{
			".rounded-full",
			".rounded",
		},
	}
}

// pageStyleSchema validates user-supplied selector config files: every list
// optional, entries non-empty strings.
const pageStyleSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"unclip_selectors":   {"type": "array", "items": {"type": "string", "minLength": 1}},
		"flatten_selectors":  {"type": "array", "items": {"type": "string", "minLength": 1}},
		"preserve_selectors": {"type": "array", "items": {"type": "string", "minLength": 1}}
	}
}`

// LoadPageStyle returns the defaults when path is empty, otherwise reads a
// JSON config, validates it against the embedded schema, and overlays any
// lists it provides onto the defaults.
func LoadPageStyle(path string) (*PageStyle, error) {
	style := DefaultPageStyle()
	if path == "" {
		return style, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page style config: %w", err)
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(pageStyleSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate page style config: %w", err)
	}
	if !res.Valid() {
		msgs := ""
		for _, e := range res.Errors() {
			msgs += fmt.Sprintf("%s; ", e.String())
		}
		return nil, fmt.Errorf("page style config invalid: %s", msgs)
	}

	var loaded PageStyle
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse page style config: %w", err)
	}
	if len(loaded.UnclipSelectors) > 0 {
		style.UnclipSelectors = loaded.UnclipSelectors
	}
	if len(loaded.FlattenSelectors) > 0 {
		style.FlattenSelectors = loaded.FlattenSelectors
	}
	if len(loaded.PreserveSelectors) > 0 {
		style.PreserveSelectors = loaded.PreserveSelectors
	}
	return style, nil
}

// CSS builds the stylesheet injected after navigation: A4 print geometry,
// unclipped containers (screen and print media), flattened card corners,
// preserved pill corners.
func (s *PageStyle) CSS() string {
	var b strings.Builder

	b.WriteString("@page { size: A4; margin: 5mm; }\n")
	b.WriteString("html, body { height: auto !important; overflow: visible !important; }\n")

	unclip := strings.Join(s.UnclipSelectors, ", ")
	if unclip != "" {
		rule := unclip + " { max-height: none !important; height: auto !important; overflow: visible !important; }\n"
		b.WriteString(rule)
		b.WriteString("@media print { " + rule + "}\n")
	}

	if len(s.FlattenSelectors) > 0 {
		b.WriteString(strings.Join(s.FlattenSelectors, ", "))
		b.WriteString(" { border-radius: 0 !important; }\n")
	}

	// Pill badges keep their rounding; this rule wins by coming last at
	// equal specificity.
	if len(s.PreserveSelectors) > 0 {
		b.WriteString(strings.Join(s.PreserveSelectors, ", "))
		b.WriteString(" { border-radius: 9999px !important; }\n")
	}

	return b.String()
}

// InjectCSSScript returns JS that appends the stylesheet to the document
// head. Injection is idempotent: re-running replaces the previous tag.
func (s *PageStyle) InjectCSSScript() string {
	return fmt.Sprintf(`(function() {
	var id = 'pdf-print-overrides';
	var prev = document.getElementById(id);
	if (prev) { prev.remove(); }
	var style = document.createElement('style');
	style.id = id;
	style.textContent = %s;
	document.head.appendChild(style);
	return true;
})()`, jsString(s.CSS()))
}

// CleanupScript returns JS that strips inline clipping styles the injected
// stylesheet cannot beat on specificity: viewport-relative or fixed-height
// max-height/height/overflow values anywhere in the document, plus a hard
// reset of the container family itself.
func (s *PageStyle) CleanupScript() string {
	selectors, _ := json.Marshal(s.UnclipSelectors)
	return fmt.Sprintf(`(function() {
	var clipped = /(\d+(\.\d+)?(vh|vmin|vmax|px|mm|cm|in|rem|em|%%))/;
	var all = document.querySelectorAll('[style]');
	for (var i = 0; i < all.length; i++) {
		var el = all[i];
		if (clipped.test(el.style.maxHeight)) { el.style.maxHeight = ''; }
		if (clipped.test(el.style.height)) { el.style.height = ''; }
		if (el.style.overflow === 'hidden' || el.style.overflowY === 'hidden') {
			el.style.overflow = '';
			el.style.overflowY = '';
		}
	}
	var selectors = %s;
	for (var j = 0; j < selectors.length; j++) {
		var nodes = document.querySelectorAll(selectors[j]);
		for (var k = 0; k < nodes.length; k++) {
			nodes[k].style.maxHeight = 'none';
			nodes[k].style.overflow = 'visible';
			nodes[k].style.height = 'auto';
		}
	}
	return true;
})()`, string(selectors))
}

// jsString embeds an arbitrary string as a JS literal.
func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}
