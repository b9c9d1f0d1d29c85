// Package snapvault provides a photo management backend with pluggable
// metadata stores and presigned object store access.
//
// Clients never stream photo bytes through snapvault. Every write or read
// hands out a short-lived presigned URL against the object store, while the
// photo record lives in a metadata store indexed by owner and version type.
//
// # Key Components
//
//   - PhotoService: the six photo operations (upload, edit, retrieve, metadata, list, delete)
//   - MetaDataRepo: photo record persistence (SQLite, PostgreSQL, DynamoDB, MongoDB)
//   - ObjectStore: presigned PUT/GET and deletion (local filesystem, S3, MinIO)
//   - SignatureVerifier / Presigner: AWS Signature V4 query signing for the local store
//
// # Example Usage
//
//	service, err := snapvault.NewPhotoService(repo, store, snapvault.ServiceConfig{
//	    Buckets: snapvault.Buckets{Originals: "originals", Edited: "edited"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ticket, err := service.Upload(ctx, userID, snapvault.UploadRequest{
//	    Filename: "beach.jpg",
//	    FileSize: 6 << 20,
//	})
//
// See the http package for the REST API and the database package for
// metadata backend selection.
package snapvault
