// Package selector implements the move picker shared by the terminal and
// browser boards. It is stateless: the loading state is read through the
// IsLoading callback and chosen moves are emitted through OnSelect.
package selector
