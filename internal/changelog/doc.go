// Package changelog turns git history into a Keep a Changelog document.
//
// This package implements:
//   - conventional-commit classification into Added, Changed and Fixed
//   - section and document rendering in markdown
//   - assembly of the unreleased range and every tag-to-tag range
//   - all-or-nothing writing of the output file
//   - colored terminal rendering for previews
//
// History access is abstracted behind the History interface; the git
// package provides the implementations.
package changelog
