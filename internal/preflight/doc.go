// Package preflight provides readiness checks for the filesystem paths and
// the run ledger that scenepack depends on.
//
// These checks run in two contexts:
//   - The workflow runner calls CheckStage before dispatching any folder.
//     A failed check aborts the stage instead of failing every movie.
//   - The CLI "scenepack doctor" command uses RunAll to display health.
package preflight
