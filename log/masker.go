/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"regexp"
	"strings"
)

// FieldMaskFormat defines possible values for field mask formats.
type FieldMaskFormat string

// Field mask formats.
const (
	FieldMaskFormatHTTPHeader FieldMaskFormat = "http_header"
	FieldMaskFormatJSON       FieldMaskFormat = "json"
	FieldMaskFormatURLEncoded FieldMaskFormat = "urlencoded"
	FieldMaskFormatBearer     FieldMaskFormat = "bearer"
)

// Mask is used to mask a secret in strings.
type Mask struct {
	RegExp *regexp.Regexp
	Mask   string
}

// NewMask compiles a mask. It panics if the regular expression is invalid.
func NewMask(cfg MaskConfig) Mask {
	return Mask{regexp.MustCompile(cfg.RegExp), cfg.Mask}
}

// FieldMasker is used to mask a field in different formats.
type FieldMasker struct {
	Field string // lowercase, used for a cheap pre-check before running regexps
	Masks []Mask
}

// NewFieldMasker builds a FieldMasker from the rule.
func NewFieldMasker(cfg MaskingRuleConfig) FieldMasker {
	fMask := FieldMasker{Field: strings.ToLower(cfg.Field), Masks: make([]Mask, 0, len(cfg.Masks))}
	for _, repCfg := range cfg.Masks {
		fMask.Masks = append(fMask.Masks, NewMask(repCfg))
	}
	for _, format := range cfg.Formats {
		switch format {
		case FieldMaskFormatHTTPHeader:
			fMask.Masks = append(fMask.Masks, NewMask(MaskConfig{`(?i)` + cfg.Field + `: .+?(\r\n|$)`, cfg.Field + ": ***$1"}))
		case FieldMaskFormatJSON:
			fMask.Masks = append(fMask.Masks, NewMask(MaskConfig{`(?i)"` + cfg.Field + `"\s*:\s*".*?[^\\]"`, `"` + cfg.Field + `": "***"`}))
		case FieldMaskFormatURLEncoded:
			fMask.Masks = append(fMask.Masks, NewMask(MaskConfig{`(?i)` + cfg.Field + `\s*=\s*[^&\s]+`, cfg.Field + "=***"}))
		case FieldMaskFormatBearer:
			fMask.Masks = append(fMask.Masks, NewMask(MaskConfig{`\b` + cfg.Field + `\s+[A-Za-z0-9\-._~+/]+=*`, cfg.Field + " ***"}))
		}
	}
	return fMask
}

// Masker is used to mask various secrets in strings.
type Masker struct {
	FieldMasks []FieldMasker
}

// NewMasker creates a Masker for the given rules.
func NewMasker(rules []MaskingRuleConfig) *Masker {
	r := &Masker{FieldMasks: make([]FieldMasker, 0, len(rules))}
	for _, rule := range rules {
		r.FieldMasks = append(r.FieldMasks, NewFieldMasker(rule))
	}
	return r
}

// Mask replaces all secrets found in s.
func (r *Masker) Mask(s string) string {
	lower := strings.ToLower(s)
	for _, fieldMask := range r.FieldMasks {
		if strings.Contains(lower, fieldMask.Field) {
			for _, rep := range fieldMask.Masks {
				s = rep.RegExp.ReplaceAllString(s, rep.Mask)
			}
		}
	}
	return s
}

// DefaultMasks hide credentials that may appear in dumped requests and transport errors.
var DefaultMasks = []MaskingRuleConfig{
	{
		Field:   "Authorization",
		Formats: []FieldMaskFormat{FieldMaskFormatHTTPHeader},
	},
	{
		Field:   "Bearer",
		Formats: []FieldMaskFormat{FieldMaskFormatBearer},
	},
	{
		Field:   "access_token",
		Formats: []FieldMaskFormat{FieldMaskFormatJSON, FieldMaskFormatURLEncoded},
	},
	{
		Field:   "token",
		Formats: []FieldMaskFormat{FieldMaskFormatJSON},
	},
}
