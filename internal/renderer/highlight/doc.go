// Package highlight keeps a document's syntax and diagnostic overlay in sync
// with a background parser while the user edits.
//
// A Session is created per open document. It reads the parser's most recent
// snapshots and the document's current lines through a Capabilities struct and
// answers GetLineHighlights for whatever lines are on screen.
//
// # Paths
//
// With no edits pending, the whole document is processed once per parse into a
// per-line array (the precompute path) and every repaint is a lookup.
//
// While edits are pending, ranges from the last parse are stale by the edits'
// deltas. Lines after every edit translate their ranges by the accumulated
// delta (the lazy path). Lines containing an edit render only the columns
// before the first edited byte, plus whatever an EditFallback supplies from
// there on.
//
// # Revisions
//
// The revision counter is bumped once per observed parse generation change and
// once per scope resolver change. Subscribe to schedule repaints.
package highlight
