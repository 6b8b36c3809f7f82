// Package site builds the static blog: it reads the source directory,
// compiles every post, renders post pages and the index through the
// templates, and places the style assets into the output directory.
//
// A build is a fixed sequence of stages run by a Builder. Each stage moves
// the builder to the matching State and records its duration in the
// BuildReport. Fatal stage errors stop the build in the failed state.
package site
