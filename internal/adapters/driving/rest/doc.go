// Package rest exposes the reference library and similarity search over
// HTTP/JSON.
//
// Routes:
//
//	GET    /api/health
//	GET    /api/reference-images
//	POST   /api/reference-images            (multipart upload)
//	DELETE /api/reference-images/{id}
//	POST   /api/reference-images/search
//	GET    /uploads/reference-images/{file}
//
// Errors are returned as {"error": "..."}; server side failures carry a
// generic message and the cause is logged.
package rest
