// Package websocket pushes board state to browsers.
//
// A single Hub serves every connected browser. It broadcasts two events:
//   - board_update: a full board.Snapshot after every board change
//   - alert: the text of a failed game API request, shown as a blocking
//     dialog by the page
//
// Hub implements the Notify method of the API client's notifier so request
// failures reach the browser without the board knowing about transports.
//
// Message Protocol:
//
//	{"event": "board_update", "board": {"loading": false, "sessionId": "...", ...}}
//	{"event": "alert", "message": "Session not found"}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	board.Subscribe(hub.BroadcastBoard)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, nil)
//	})
package websocket
