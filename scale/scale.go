// Package scale resolves the color-scale bounds for a render: either from
// the observed depth range, from the metadata's reported maximum depth, or
// from user-supplied limits. Values outside the resolved bounds always clip
// to the extreme colors downstream, never extrapolate.
package scale

import (
	"fmt"

	"basinmap/meta"
	"basinmap/sample"
)

// Mode selects how the bounds are chosen.
type Mode string

const (
	// ModeAuto spans the observed non-missing depth values.
	ModeAuto Mode = "auto"
	// ModeMetadata spans [0, max depth] as reported by the metadata file.
	ModeMetadata Mode = "metadata"
	// ModeUser spans the caller-supplied limits.
	ModeUser Mode = "user"
)

// ConfigError reports an invalid scale configuration.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "scale: " + e.Msg }

// ParseMode validates a mode string from the command line or config file.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeMetadata, ModeUser:
		return Mode(s), nil
	}
	return "", &ConfigError{Msg: fmt.Sprintf("unknown scale mode %q (want auto, metadata, or user)", s)}
}

// Bounds is a resolved color-scale range in depth units.
type Bounds struct {
	Min float64
	Max float64
}

// Degenerate reports a zero-width range; every sample then maps to the
// single top color instead of dividing by the range width.
func (b Bounds) Degenerate() bool { return b.Min == b.Max }

// Resolve computes the bounds for one render. userMin and userMax are only
// consulted in ModeUser; a nil userMin defaults to 0.
func Resolve(mode Mode, m *meta.Metadata, st sample.Stats, userMin, userMax *float64) (Bounds, error) {
	switch mode {
	case ModeAuto:
		if st.Valid == 0 {
			// All cells outside the model. Render proceeds with an empty
			// range so the caller can still produce a (blank) map.
			return Bounds{}, nil
		}
		return Bounds{Min: st.Min, Max: st.Max}, nil

	case ModeMetadata:
		if m == nil || m.MaxDepth == nil {
			return Bounds{}, &ConfigError{Msg: "metadata mode requires a max depth entry in the metadata file"}
		}
		return Bounds{Min: 0, Max: *m.MaxDepth}, nil

	case ModeUser:
		if userMax == nil {
			return Bounds{}, &ConfigError{Msg: "user mode requires a maximum bound"}
		}
		b := Bounds{Max: *userMax}
		if userMin != nil {
			b.Min = *userMin
		}
		if b.Min > b.Max {
			return Bounds{}, &ConfigError{Msg: fmt.Sprintf("minimum %g exceeds maximum %g", b.Min, b.Max)}
		}
		return b, nil
	}
	return Bounds{}, &ConfigError{Msg: fmt.Sprintf("unknown scale mode %q", mode)}
}
