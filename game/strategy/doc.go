// Package strategy holds the move pickers used by "ssp auto" to play
// unattended rounds against the game API.
package strategy
