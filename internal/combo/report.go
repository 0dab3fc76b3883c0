package combo

import "combo/internal/diag"

// Report is the supplemented witness/verification-mode output
// (SPEC_FULL.md, "Supplemented from original_source"): a per-run summary
// of what combo found and changed, plus any diagnostics, returned from
// Run alongside the mutated graph. This generalizes combo.c's single
// logged "unoptimized CF" line and the teacher's own
// OptimizationPipeline.Run progress printout (optimizations.go) into a
// structured value instead of stdout text.
type Report struct {
	ConstantsFolded     int
	PartitionsCollapsed int // leaders demoted to followers across the whole run
	DeadBlocksRemoved   int
	PhisShrunk          int
	Splits              int

	Findings []diag.Finding
}

func (r *Report) merge(reporter *diag.Reporter) {
	r.Findings = append(r.Findings, reporter.Findings()...)
}
