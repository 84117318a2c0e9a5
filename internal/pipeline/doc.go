// Package pipeline wires detection, description and matching into the
// two-image and frame-sequence runs exposed by the server and the CLI.
//
// A Config names algorithms by string (for example "HARRIS", "BRIEF",
// "MAT_BF", "SEL_KNN"). New resolves the names once into tagged kinds and
// builds the stages, so an unknown name fails at construction with
// features.ErrUnsupportedAlgorithm rather than at match time.
//
// Stage timings and counts are logged at debug level and never change the
// result.
package pipeline
