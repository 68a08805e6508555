// Package service provides the Game Session Service of the Stone Scissors
// Paper client.
//
// The service package implements:
//   - Tracking of the current game session ID (observable)
//   - Mirroring of that ID into local storage
//   - Starting games and playing moves against the remote game API
//   - Automatic recovery from sessions the server no longer knows
//
// Core Interfaces:
//
// GameService is the client-facing service. GameAPI abstracts the remote
// game API (implemented by transport/httpapi.Client) so tests can substitute
// a fake.
//
// Session Lifecycle:
//
// A session is either absent or active:
//
//	NO_SESSION --start--> ACTIVE --404 on play/get--> NO_SESSION
//	ACTIVE --play ok--> ACTIVE (ID may be refreshed by the response)
//
// Any other error leaves the state unchanged and is returned as is.
//
// Recovery:
//
// When a play request fails because the session is unknown, PlayMove starts
// a new game and retries the same move exactly once. A second failure is
// returned to the caller without further recovery.
//
// Usage:
//
//	svc := service.NewGameService(apiClient, store, service.WithLogger(logger))
//	if err := svc.LoadSessionFromStorage(ctx); err != nil {
//		logger.Warn("stored session discarded", zap.Error(err))
//	}
//
//	resp, err := svc.PlayMove(ctx, engine.Stone)
//	if err != nil {
//		return err
//	}
//	fmt.Println(resp.GameResult.Result)
package service
