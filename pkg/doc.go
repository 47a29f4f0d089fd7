// Package pkg provides the core libraries for runigram, a plain PPM image
// toolkit that transforms pictures and animates morphs between them.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Domain logic: [grid], [ppm], [transform], [morph]
//  2. Output: [sink] displays (terminal, sixel, NDJSON)
//  3. Infrastructure: [pipeline], [cache], [httputil], [observability], [errors]
//
// # Architecture
//
// The typical data flow through runigram:
//
//	P3 text (file or request body)
//	         ↓
//	    [ppm] package (decode to a grid)
//	         ↓
//	    [transform] package (flip, gray, scale)
//	         ↓
//	    [morph] package (n+1 blended frames, paced by a clock)
//	         ↓
//	    [sink] display (ANSI, sixel, NDJSON)
//
// # Quick Start
//
// Morph an image into its grayscale version on the terminal:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/runigram/pkg/morph"
//	    "github.com/matzehuels/runigram/pkg/ppm"
//	    "github.com/matzehuels/runigram/pkg/sink"
//	    "github.com/matzehuels/runigram/pkg/transform"
//	)
//
//	src, _ := ppm.ReadFile("ironman.ppm")
//	gray := transform.Grayscale(src)
//	_, err := morph.Play(context.Background(), sink.NewANSI(os.Stdout), src, gray, 10)
//
// Most callers go through [pipeline.Runner] instead, which adds decode
// caching, option defaults and logging.
//
// # Main Packages
//
// [grid] - The immutable ColorGrid: a row-major rectangle of RGB triples.
// Grids are never mutated after construction, so they can be shared between
// goroutines without copying.
//
// [ppm] - P3 decoder and encoder. Samples are kept as written and comments
// are skipped.
//
// [transform] - Pure operations that return new grids: [transform.FlipHorizontal],
// [transform.FlipVertical], [transform.Grayscale], [transform.Scale] and
// [transform.Blend]. [transform.Op] names an operation for the CLI and API.
//
// [morph] - The morph engine. [morph.Run] paints frames on a canvas;
// [morph.Play] opens and closes the display around it.
//
// [sink] - Display contract ([sink.Display], [sink.Canvas]) and the
// built-in displays.
//
// ## Infrastructure
//
// [pipeline] - Load → transform → morph, shared by the CLI and the HTTP server.
//
// [cache] - Decoded-grid cache with file, Redis and null backends.
//
// [httputil] - JSON responses and error mapping for the HTTP server.
//
// [observability] - Hooks for metrics and tracing around morphs, the cache
// and HTTP requests.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information set at link time.
package pkg
