// Package config holds the settings threaded through every checker and
// generator entry point. A Settings value is immutable once loaded and is
// passed by value; nothing in the pipeline reads process-wide state.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dialect selects the language family
type Dialect int

const (
	SL Dialect = iota // flat modules
	PP                // object-oriented classes
	RT                // classes plus real-time features
)

func (d Dialect) String() string {
	switch d {
	case SL:
		return "vdmsl"
	case PP:
		return "vdmpp"
	case RT:
		return "vdmrt"
	default:
		return "unknown"
	}
}

// ParseDialect accepts the usual file-extension spellings
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sl", "vdmsl", "vdm-sl":
		return SL, nil
	case "pp", "vdmpp", "vdm++":
		return PP, nil
	case "rt", "vdmrt", "vdm-rt":
		return RT, nil
	}
	return SL, fmt.Errorf("unknown dialect %q", s)
}

// HasClasses reports whether the dialect is class based
func (d Dialect) HasClasses() bool { return d == PP || d == RT }

// Release selects the language revision
type Release int

const (
	Classic Release = iota
	VDM10
)

func (r Release) String() string {
	if r == VDM10 {
		return "vdm10"
	}
	return "classic"
}

// ParseRelease parses "classic" or "vdm10"
func ParseRelease(s string) (Release, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic":
		return Classic, nil
	case "vdm10", "":
		return VDM10, nil
	}
	return VDM10, fmt.Errorf("unknown release %q", s)
}

// LintSettings enables the warning-only lint rules
type LintSettings struct {
	Enabled    bool
	Unused     bool
	MissingPre bool
	Naming     bool

	// TrivialGuard flags preconditions written as a boolean literal
	TrivialGuard bool
}

// ObligationSettings controls obligation generation
type ObligationSettings struct {
	Enabled bool
	// IncludeUnchecked keeps obligations marked unchecked in the output.
	IncludeUnchecked bool
	// Kinds restricts output to the named kinds; empty means all.
	Kinds []string
}

// Settings is the immutable configuration of one analysis run
type Settings struct {
	Dialect     Dialect
	Release     Release
	Strict      bool // strict mode turns some warnings into errors
	Warnings    bool // report warnings at all
	Lint        LintSettings
	Obligations ObligationSettings
}

// Default returns the settings used when no configuration file is given
func Default() Settings {
	return Settings{
		Dialect:  SL,
		Release:  VDM10,
		Warnings: true,
		Lint: LintSettings{
			Enabled:      true,
			Unused:       true,
			MissingPre:   true,
			Naming:       false,
			TrivialGuard: true,
		},
		Obligations: ObligationSettings{
			Enabled:          true,
			IncludeUnchecked: true,
		},
	}
}

// WithDialect returns a copy of s using dialect d
func (s Settings) WithDialect(d Dialect) Settings {
	s.Dialect = d
	return s
}

// WithRelease returns a copy of s using release r
func (s Settings) WithRelease(r Release) Settings {
	s.Release = r
	return s
}

// WantsKind reports whether obligations of kind should be produced
func (s Settings) WantsKind(kind string) bool {
	if len(s.Obligations.Kinds) == 0 {
		return true
	}
	for _, k := range s.Obligations.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// file is the on-disk shape of vdmcheck.yaml
type file struct {
	Dialect     string          `yaml:"dialect"`
	Release     string          `yaml:"release"`
	Strict      *bool           `yaml:"strict"`
	Warnings    *bool           `yaml:"warnings"`
	Lint        *lintFile       `yaml:"lint"`
	Obligations *obligationFile `yaml:"obligations"`
}

type lintFile struct {
	Enabled      *bool `yaml:"enabled"`
	Unused       *bool `yaml:"unused"`
	MissingPre   *bool `yaml:"missing_pre"`
	Naming       *bool `yaml:"naming"`
	TrivialGuard *bool `yaml:"trivial_guard"`
}

type obligationFile struct {
	Enabled          *bool    `yaml:"enabled"`
	IncludeUnchecked *bool    `yaml:"include_unchecked"`
	Kinds            []string `yaml:"kinds"`
}

// Load reads settings from a YAML file
func Load(path string) (Settings, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return Settings{}, fmt.Errorf("config: open %s: %w", abs, err)
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	return s, nil
}

// Parse decodes settings from YAML bytes
func Parse(data []byte) (Settings, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads YAML settings from r, starting from Default for anything the
// document leaves out. Unknown keys are rejected.
func Decode(r io.Reader) (Settings, error) {
	var raw file
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, err
	}
	s, err := raw.toSettings()
	if err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (f file) toSettings() (Settings, error) {
	s := Default()
	if f.Dialect != "" {
		d, err := ParseDialect(f.Dialect)
		if err != nil {
			return Settings{}, err
		}
		s.Dialect = d
	}
	if f.Release != "" {
		r, err := ParseRelease(f.Release)
		if err != nil {
			return Settings{}, err
		}
		s.Release = r
	}
	setBool(&s.Strict, f.Strict)
	setBool(&s.Warnings, f.Warnings)
	if f.Lint != nil {
		setBool(&s.Lint.Enabled, f.Lint.Enabled)
		setBool(&s.Lint.Unused, f.Lint.Unused)
		setBool(&s.Lint.MissingPre, f.Lint.MissingPre)
		setBool(&s.Lint.Naming, f.Lint.Naming)
		setBool(&s.Lint.TrivialGuard, f.Lint.TrivialGuard)
	}
	if f.Obligations != nil {
		setBool(&s.Obligations.Enabled, f.Obligations.Enabled)
		setBool(&s.Obligations.IncludeUnchecked, f.Obligations.IncludeUnchecked)
		s.Obligations.Kinds = append([]string(nil), f.Obligations.Kinds...)
	}
	return s, nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// Validate rejects contradictory settings
func (s Settings) Validate() error {
	if s.Lint.Enabled && !s.Warnings {
		return errors.New("lint rules report warnings; enable warnings or disable lint")
	}
	return nil
}
