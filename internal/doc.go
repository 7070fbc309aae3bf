// Package internal drives the SELECT parser over token documents on disk.
//
// Key components:
//
// Engine: reads token files, runs the grammar and summarizes each parse as a
// types.Report. Paths can be ignored, and parse options apply to every file.
//
// Cache: an optional gob-backed store of reports keyed by file path. Entries
// are invalidated when the file content, a dependency file or the parse
// options change.
//
// Watch: re-parses token files as they are written and hands the reports to a
// callback.
//
// Usage:
//
//	engine, err := internal.NewEngine(internal.Options{Memoize: true}, logger)
//	if err != nil {
//	    // handle error
//	}
//
//	report, err := engine.Run("path/to/query.tok")
//	if err != nil {
//	    // handle error
//	}
//
//	if !report.Complete {
//	    fmt.Println(report.Diagnostic)
//	}
//
// This package is intended for internal use within the parser tool and should
// not be imported by external packages.
package internal
