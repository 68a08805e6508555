// Package board is the game board orchestrator shared by every front end.
//
// On Init the board restores the stored session and either starts a new
// game or refreshes the held session. Moves go through OnMoveSelected. While
// a start or play request is in flight the loading flag is set and the move
// selector is disabled; the flag is reset when the request resolves, whether
// it succeeded or failed.
//
// Front ends render Snapshot values, either by polling Snapshot or by
// subscribing to changes.
package board
