package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/auth"
)

// Service is the photo API consumed by Handler. *snapvault.PhotoService
// implements it.
type Service interface {
	Upload(ctx context.Context, userID string, req snapvault.UploadRequest) (snapvault.UploadTicket, error)
	Edit(ctx context.Context, userID, photoID string, req snapvault.UploadRequest) (snapvault.UploadTicket, error)
	Retrieve(ctx context.Context, userID, photoID, version string) (snapvault.Download, error)
	Metadata(ctx context.Context, userID, photoID string) (snapvault.Photo, error)
	List(ctx context.Context, q snapvault.ListQuery) (snapvault.ListResult, error)
	Delete(ctx context.Context, userID, photoID string) (snapvault.DeleteResult, error)
}

// CORSConfig replaces the fixed wildcard origin with go-chi/cors handling
// when Enabled.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Identity auth.Resolver
	CORS     CORSConfig
	// Objects mounts the presigned object endpoint when set.
	Objects *ObjectConfig
}

// Handler provides HTTP handlers for the photo API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler serving the photo routes and, when
// configured, the object endpoint.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route("/photos", func(r chi.Router) {
		r.Use(APIHeaders)

		r.Options("/", handlePreflight)
		r.Options("/*", handlePreflight)

		r.Group(func(r chi.Router) {
			r.Use(IdentityMiddleware(h.config.Identity))
			r.Post("/", h.handleUpload)
			r.Get("/", h.handleList)
			r.Put("/{photoID}", h.handleEdit)
			r.Get("/{photoID}", h.handleRetrieve)
			r.Get("/{photoID}/metadata", h.handleMetadata)
			r.Delete("/{photoID}", h.handleDelete)
		})
	})

	if h.config.Objects != nil {
		objects := newObjectHandler(*h.config.Objects)
		r.Group(func(r chi.Router) {
			r.Use(SignatureMiddleware(h.config.Objects.Verifier))
			r.Put("/objects/*", objects.handlePut)
			r.Get("/objects/*", objects.handleGet)
		})
	}

	return r
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type uploadBody struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

const maxRequestBody = 1 << 20

func decodeUploadRequest(r *http.Request) (snapvault.UploadRequest, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return snapvault.UploadRequest{}, err
	}

	var body uploadBody
	if err := json.Unmarshal(data, &body); err != nil {
		return snapvault.UploadRequest{}, err
	}

	// Optional attributes are picked out of the same object by the service.
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return snapvault.UploadRequest{}, err
	}

	return snapvault.UploadRequest{
		Filename:    body.Filename,
		ContentType: body.ContentType,
		FileSize:    body.FileSize,
		Attributes:  attrs,
	}, nil
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUploadRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.service.Upload(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, newUploadResponse(ticket, "Upload the file using the provided presigned URL"))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUploadRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.service.Edit(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "photoID"), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	resp := newUploadResponse(ticket, "Upload the edited file using the provided presigned URL")
	if ticket.PreviousKey != "" {
		resp.Note = "This will replace the previous edited version"
		resp.PreviousVersion = ticket.PreviousKey
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	download, err := h.service.Retrieve(r.Context(), auth.UserIDFromContext(r.Context()),
		chi.URLParam(r, "photoID"), r.URL.Query().Get("version"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, newDownloadResponse(download))
}

func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request) {
	photo, err := h.service.Metadata(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "photoID"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, newMetadataResponse(photo))
}

var errInvalidLimit = &snapvault.Error{Err: snapvault.ErrInvalidInput, Message: "Invalid parameter: limit"}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var limit int
	if s := query.Get("limit"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			HandleError(w, fmt.Errorf("list photos: %w", errInvalidLimit))
			return
		}
		limit = parsed
	}

	result, err := h.service.List(r.Context(), snapvault.ListQuery{
		UserID:      auth.UserIDFromContext(r.Context()),
		VersionType: snapvault.VersionType(query.Get("version_type")),
		Limit:       limit,
		Cursor:      query.Get("last_evaluated_key"),
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, newListResponse(result))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "photoID"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, newDeleteResponse(result))
}

// IdentityMiddleware stores the caller's user ID in the request context.
// Requests without any identity pass through unauthenticated; requests with
// an identity that fails verification are rejected with 401.
func IdentityMiddleware(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := resolver.Resolve(r)
			if err != nil {
				if errors.Is(err, auth.ErrNoIdentity) {
					next.ServeHTTP(w, r)
					return
				}
				HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
