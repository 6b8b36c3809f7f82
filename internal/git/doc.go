// Package git reads commit history of a local working tree to date source
// documents.
//
// It answers one question: when was a file last committed? The answer is the
// author time of the newest HEAD-reachable commit that touched the path.
// Renames are not followed, so a moved file dates from its last commit under
// the current name.
package git
