// Package engine provides the move and result vocabulary of the Stone
// Scissors Paper game.
//
// The engine package implements:
//   - The fixed set of player moves (STONE, SCISSORS, PAPER)
//   - Case-insensitive move parsing and validation
//   - Round results (WIN, LOSE, DRAW) as reported by the game API
//   - Display helpers (labels, emoji, result banners)
//
// Deciding the winner of a round is the game API's job; the client never
// computes outcomes locally and only renders what the server returns.
//
// Usage:
//
//	move, err := engine.ParseMove("scissors")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(move.Emoji(), move.Label())
package engine
