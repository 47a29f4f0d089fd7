// Package pipeline provides the core load → transform → morph pipeline for
// runigram.
//
// The CLI commands and the HTTP server both drive images through a Runner so
// decoding, caching and option defaults behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a PPM file (or request body) into a grid, through the cache
//  2. Transform: Apply a chain of flips, grayscale and scaling
//  3. Morph: Blend source into target frame by frame on a display
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	res, err := runner.Morph(ctx, pipeline.Options{
//	    Source:    "ironman.ppm",
//	    TargetOps: []transform.Op{{Name: transform.OpGrayscale}},
//	    Steps:     10,
//	}, sink.NewANSI(os.Stdout))
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/runigram/pkg/morph"
	"github.com/matzehuels/runigram/pkg/transform"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSource is the image morphed when no source is given.
	DefaultSource = "ironman.ppm"

	// DefaultDelay is the pause after each frame.
	DefaultDelay = morph.DefaultDelay

	// DefaultDisplay is the display used when none is configured.
	DefaultDisplay = DisplayANSI
)

// Display names.
const (
	DisplayANSI   = "ansi"
	DisplaySixel  = "sixel"
	DisplayNDJSON = "ndjson"
	DisplayNone   = "none"
)

// ValidDisplays is the set of supported displays.
var ValidDisplays = map[string]bool{
	DisplayANSI:   true,
	DisplaySixel:  true,
	DisplayNDJSON: true,
	DisplayNone:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a morph run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"` // Empty means the source itself
	Refresh bool   `json:"refresh,omitempty"`

	// Transform options
	SourceOps []transform.Op `json:"source_ops,omitempty"`
	TargetOps []transform.Op `json:"target_ops,omitempty"`

	// Morph options
	Steps   int           `json:"steps"`
	Delay   time.Duration `json:"delay,omitempty"` // Zero means DefaultDelay, negative means no pause
	Display string        `json:"display,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// SessionID identifies the morph in logs and hooks.
	SessionID string

	// Rows and Cols are the frame dimensions (the source's shape).
	Rows, Cols int

	// Frames is how many frames reached the display.
	Frames int

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which loads hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LoadTime  time.Duration
	MorphTime time.Duration
}

// CacheInfo tracks cache hits for each loaded image.
type CacheInfo struct {
	SourceHit bool
	TargetHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateDisplay checks that a display name is valid.
func ValidateDisplay(display string) error {
	if !ValidDisplays[display] {
		names := make([]string, 0, len(ValidDisplays))
		for name := range ValidDisplays {
			names = append(names, name)
		}
		sort.Strings(names)
		return rterrors.New(rterrors.ErrCodeInvalidConfig,
			"invalid display: %q (must be one of: %s)", display, strings.Join(names, ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := rterrors.ValidateSteps(o.Steps); err != nil {
		return err
	}
	o.SetMorphDefaults()
	if err := ValidateDisplay(o.Display); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetMorphDefaults fills in the source, delay, display and logger.
func (o *Options) SetMorphDefaults() {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.Delay == 0 {
		o.Delay = DefaultDelay
	}
	if o.Display == "" {
		o.Display = DefaultDisplay
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// TargetPath returns the file the target is loaded from.
func (o *Options) TargetPath() string {
	if o.Target == "" {
		return o.Source
	}
	return o.Target
}

// Describe returns a short human-readable summary of the run.
func (o *Options) Describe() string {
	target := o.TargetPath()
	if len(o.TargetOps) > 0 {
		ops := make([]string, len(o.TargetOps))
		for i, op := range o.TargetOps {
			ops[i] = op.String()
		}
		target = fmt.Sprintf("%s [%s]", target, strings.Join(ops, ","))
	}
	return fmt.Sprintf("%s -> %s in %d steps", o.Source, target, o.Steps)
}
