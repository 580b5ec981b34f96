// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// QualityPreset names a Ghostscript PDFSETTINGS profile.
type QualityPreset string

const (
	QualityScreen   QualityPreset = "screen"
	QualityEbook    QualityPreset = "ebook"
	QualityPrinter  QualityPreset = "printer"
	QualityPrepress QualityPreset = "prepress"
	QualityDefault  QualityPreset = "default"
)

// QualityPresets lists every accepted preset, from most to least aggressive.
var QualityPresets = []QualityPreset{
	QualityScreen,
	QualityEbook,
	QualityPrinter,
	QualityPrepress,
	QualityDefault,
}

// Valid reports whether q is one of the known presets.
func (q QualityPreset) Valid() bool {
	for _, p := range QualityPresets {
		if q == p {
			return true
		}
	}
	return false
}

// Setting returns the engine value for -dPDFSETTINGS, e.g. "/ebook".
func (q QualityPreset) Setting() string {
	return "/" + string(q)
}

// ParseQualityPreset normalizes s and validates it against QualityPresets.
func ParseQualityPreset(s string) (QualityPreset, error) {
	q := QualityPreset(strings.ToLower(strings.TrimSpace(s)))
	if !q.Valid() {
		return "", fmt.Errorf("%w: quality preset %q (want one of %s)", ErrInvalidArgument, s, presetList())
	}
	return q, nil
}

func presetList() string {
	names := make([]string, len(QualityPresets))
	for i, p := range QualityPresets {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
