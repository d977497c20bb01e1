// Package http provides an HTTP client configured for the track service.
//
// The Client in this package handles:
//   - Base URL resolution and bearer token authentication
//   - JSON API requests
//   - Audio streams turned into stream.Event values, resumed with Range
//     requests when the connection drops
//
// # Basic Usage
//
//	client := http.NewClient(settings.ServiceURL,
//	    http.WithToken(settings.Token),
//	    http.WithRetry(settings.DownloadMaxRetries, settings.RetryCooldown),
//	)
//
//	// Fetch API resource
//	var track dto.JSONTrack
//	err := client.GetJSON(ctx, "/v1/tracks/"+id, &track)
//
//	// Stream audio
//	events, err := client.Stream(ctx, "/v1/tracks/"+id+"/audio")
//	for ev := range events {
//	    // Write, Retry, then Finished or Error
//	}
package http
