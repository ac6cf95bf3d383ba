// Package server serves the contact form over HTTP and a live WebSocket
// channel.
//
// # Architecture
//
// The page is rendered on the server. Without JavaScript the form posts
// back to "/" and the server renders the result. With JavaScript the thin
// client opens the live channel and forwards input, blur and submit events
// as JSON:
//
//	{"hid":"h2","event":"input","value":"scout"}
//
// The server looks up the handler collected under that hydration id at the
// last render, runs it against the connection's form, and replies with the
// new HTML for the mount point:
//
//	{"type":"render","html":"<div class=\"contact\">..."}
//
// # Session Resume
//
// Each browser gets a session cookie. When a live connection closes, the
// form state is saved to the session store for the resume window; a page
// load or reconnect within the window restores it.
//
// # Usage
//
//	srv := server.New(server.DefaultServerConfig(),
//	    server.WithStore(session.NewMemoryStore()),
//	    server.WithMetrics(metrics, registry),
//	)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
