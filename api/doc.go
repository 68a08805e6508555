// Package api provides the local board server used by the browser front end.
//
// Endpoints:
//
// Board:
//   - GET /api/board - Current board snapshot
//   - POST /api/board/move - Play a move, body {"move": "STONE"}
//   - POST /api/board/new-game - Start a new game
//   - POST /api/board/refresh - Reload the held session's statistics
//   - DELETE /api/board/session - Forget the held session
//   - GET /api/moves - Selectable moves
//   - GET /api/health - Health check
//
// Real-time Updates:
//   - GET /ws - WebSocket; sends the current board on connect, then
//     board_update and alert events
//
// Error Handling:
//
// Errors are returned as {"error": "..."}. Invalid moves and bodies give
// 400, a move or new game while another request is in flight gives 409, and
// failures of the remote game API give 502. The user has already been
// alerted about API failures over the WebSocket, so pages only need to
// re-enable their controls.
//
// Static Files:
//
// When a static directory is configured it is served at the root, which is
// where the board page lives.
package api
