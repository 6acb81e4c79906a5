// Package server provides HTTP routing, middleware, and the local preview handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux]. Unmatched requests
// still pass through the middleware: an unknown path gets 404, a known path with another method gets 405 and an
// Allow header. GET routes answer HEAD with headers only.
//
// # Preview Handler
//
// [PreviewHandler] renders a post, or a local content file, the way it will look once saved:
// the title, the HTML content and the gallery recovered from it. The page is rebuilt on every
// request so edits to a content file show up on reload. The gallery is also served as JSON.
//
// # Current Usage
//
// `wpx posts preview` starts a server on the configured host and port, opens the browser and
// serves until interrupted.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface by returning their [Route] values, each a method, a path
// pattern and the function serving it.
package server
