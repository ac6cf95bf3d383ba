// Package render provides server-side rendering of vdom trees to HTML.
//
// The renderer escapes all text and attribute values, handles void and
// boolean attributes, and tags interactive elements with hydration ids:
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//	handlers := r.GetHandlers() // "h1_oninput" -> handler
//
// The live server keeps the handler map of the latest render and routes
// browser events ({hid, event, value}) back to it.
//
// RenderPage wraps a body in a full HTML document and, when a live path is
// configured, injects the thin client that forwards events over a WebSocket.
package render
