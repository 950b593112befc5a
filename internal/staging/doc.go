// Package staging inspects and cleans stage output roots.
//
// A folder without a completion marker is the residue of an interrupted run;
// the workflow rebuilds such folders on its own, and CleanIncomplete lets an
// operator reclaim them ahead of time.
package staging
