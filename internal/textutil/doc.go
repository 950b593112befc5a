// Package textutil provides the naming rules shared by every stage that
// derives an output folder from a source folder.
//
// Normalization splits a folder name on separators, title-cases each token,
// and joins the tokens without spaces (movie_shots_12 becomes MovieShots12).
// Already normalized names are fixed points, so the shot and aggregate trees
// mirror the feature tree name for name.
package textutil
