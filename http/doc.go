// Package http provides the HTTP API of the snapvault photo service.
//
// # Routes
//
//	POST   /photos                      request an upload credential for a new photo
//	GET    /photos                      list the caller's photos, newest first
//	PUT    /photos/{photo_id}           request an upload credential for an edited version
//	GET    /photos/{photo_id}           request a download credential (?version=original|edited)
//	GET    /photos/{photo_id}/metadata  read the full photo record
//	DELETE /photos/{photo_id}           delete the photo and its stored versions
//
// Every photo response is JSON with permissive cross-origin headers. Errors
// use the body {"error": "<message>"} and map service errors to status codes:
// ErrUnauthorized 401, ErrForbidden 403, ErrNotFound 404, ErrInvalidInput 400,
// anything else 500.
//
// # Identity
//
// The caller is identified by an auth.Resolver passed in HandlerConfig. The
// resolved user ID is stored in the request context by IdentityMiddleware.
//
// # Object endpoint
//
// When HandlerConfig.Objects is set the router also serves
//
//	PUT /objects/{bucket}/{key...}
//	GET /objects/{bucket}/{key...}
//
// for the filesystem object store. Requests must carry an AWS Signature V4
// presigned query, as issued by filesystem.Store:
//
//	secrets := keybackend.NewMapSecretStore(keys)
//	verifier := snapvault.NewSignatureVerifier("us-east-1", "s3", secrets)
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Identity: auth.NewHeaderResolver("X-User-Id"),
//	    Objects:  &http.ObjectConfig{Store: store, Verifier: verifier},
//	}, service)
//	http.ListenAndServe(":5708", handler.Router())
package http
