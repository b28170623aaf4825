// Package analysis turns a live browser session pointed at a URL into a
// scored page-quality report.
//
// An Analyzer runs three probes (performance, accessibility, visual)
// against the page, folds their scores into a single composite quality
// score and derives rule-based recommendations. The top-level navigation
// step is the only fatal one; each probe degrades to a documented neutral
// default when it is disabled or fails, so a partial run still yields a
// complete Result.
//
// Note the inherited convention: a disabled probe scores a perfect 100,
// so a run with every category switched off reports a perfect overall
// score. Callers must not read "no analysis" as "good page".
package analysis
