// Package journal persists the outcome of every render pass to the
// database: one row per attempted surface mutation, grouped by pass id.
//
// The journal is an audit trail, not part of the reconciliation path.
// It is written after a pass has committed and a journal failure never
// disturbs the surface state; callers log and move on.
//
// # Usage
//
//	rec := journal.NewRecorder(db, cfg.Journal)
//	_ = rec.Migrate(ctx)
//	summary, _ := coord.Render(build)
//	_ = rec.RecordPass(ctx, summary)
package journal
