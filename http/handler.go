package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sagarc03/vana"
)

// Service is the engine surface the HTTP layer dispatches to.
type Service interface {
	Create(ctx context.Context, user string, in vana.CreateObject) (vana.Object, error)
	Describe(ctx context.Context, user string, id uuid.UUID) (vana.Object, error)
	Update(ctx context.Context, user string, id uuid.UUID, in vana.UpdateObject) (vana.Object, error)
	Delete(ctx context.Context, user string, id uuid.UUID) error
	ResolveTransfer(ctx context.Context, user string, id uuid.UUID, req vana.ResolveRequest) (vana.ResolveResult, error)
	ResolveCopy(ctx context.Context, user string, id uuid.UUID, req vana.CopyRequest) (vana.ResolveResult, error)
	ResolveResumable(ctx context.Context, user string, id uuid.UUID) (string, error)
	ListByName(ctx context.Context, user, name string) ([]vana.Object, error)

	CreateGroup(ctx context.Context, user string, in vana.CreateGroup) (vana.Group, error)
	DescribeGroup(ctx context.Context, user string, id uuid.UUID) (vana.Group, error)
	UpdateGroup(ctx context.Context, user string, id uuid.UUID, in vana.UpdateGroup) (vana.Group, error)
	DeleteGroup(ctx context.Context, user string, id uuid.UUID) error
}

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
	CORS    CORSConfig
	Catalog *vana.MessageCatalog
	Ping    func(ctx context.Context) error
}

// Handler provides the HTTP handlers for the object and group resources.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.Catalog == nil {
		cfg.Catalog = vana.NewMessageCatalog()
	}
	return &Handler{config: cfg, service: service}
}

// Router returns the configured route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

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

	r.Use(IdentityMiddleware)

	r.Get("/healthz", h.handleHealth)

	r.Route("/objects", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{objectID}", func(r chi.Router) {
			r.Get("/", h.handleDescribe)
			r.Post("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
			r.Post("/resolve", h.handleResolve)
			r.Post("/copy", h.handleCopy)
			r.Post("/multi", h.handleResumable)
		})
	})

	r.Route("/groups", func(r chi.Router) {
		r.Post("/", h.handleCreateGroup)
		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", h.handleDescribeGroup)
			r.Post("/", h.handleUpdateGroup)
			r.Delete("/", h.handleDeleteGroup)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.config.Ping != nil {
		if err := h.config.Ping(r.Context()); err != nil {
			WriteText(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	WriteText(w, http.StatusOK, "ok")
}

func (h *Handler) objectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return h.pathID(w, r, "objectID")
}

func (h *Handler) groupID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return h.pathID(w, r, "groupID")
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		HandleError(w, h.config.Catalog, fmt.Errorf("malformed id: %w", vana.ErrInvalidInput))
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		HandleError(w, h.config.Catalog, fmt.Errorf("malformed request body: %w", vana.ErrInvalidInput))
		return false
	}
	return true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ObjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := vana.CreateObject{
		Name:          req.ObjectName,
		OwnerID:       req.OwnerID,
		Platform:      vana.StoragePlatform(req.StoragePlatform),
		Readers:       req.Readers,
		Writers:       req.Writers,
		DirectoryPath: req.DirectoryPath,
		ForceLocation: req.ForceLocation,
	}
	if req.SizeEstimateBytes != nil {
		in.SizeEstimateBytes = *req.SizeEstimateBytes
	}

	obj, err := h.service.Create(r.Context(), CallerFromContext(r.Context()), in)
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, toObjectResponse(obj))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	objs, err := h.service.ListByName(r.Context(), CallerFromContext(r.Context()), name)
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	out := make([]ObjectResponse, 0, len(objs))
	for _, o := range objs {
		out = append(out, toObjectResponse(o))
	}
	_ = WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	obj, err := h.service.Describe(r.Context(), CallerFromContext(r.Context()), id)
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, toObjectResponse(obj))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	var req ObjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := vana.UpdateObject{
		Name:              req.ObjectName,
		OwnerID:           req.OwnerID,
		Platform:          vana.StoragePlatform(req.StoragePlatform),
		SizeEstimateBytes: req.SizeEstimateBytes,
		Readers:           req.Readers,
		Writers:           req.Writers,
		DirectoryPath:     req.DirectoryPath,
		ForceLocation:     req.ForceLocation,
	}

	obj, err := h.service.Update(r.Context(), CallerFromContext(r.Context()), id, in)
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, toObjectResponse(obj))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), CallerFromContext(r.Context()), id); err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	WriteText(w, http.StatusOK, "deleted")
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	var req ResolveRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.ResolveTransfer(r.Context(), CallerFromContext(r.Context()), id, vana.ResolveRequest{
		ValidityPeriodSeconds: req.ValidityPeriodSeconds,
		HTTPMethod:            req.HTTPMethod,
		ContentType:           req.ContentType,
		ContentMD5Hex:         req.ContentMD5Hex,
	})
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ResolveResponse{
		ObjectURL:             res.ObjectURL,
		ValidityPeriodSeconds: res.ValidityPeriodSeconds,
		ContentType:           res.ContentType,
		ContentMD5Hex:         res.ContentMD5Hex,
	})
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	var req CopyRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.ResolveCopy(r.Context(), CallerFromContext(r.Context()), id, vana.CopyRequest{
		ValidityPeriodSeconds: req.ValidityPeriodSeconds,
		SourceLocationRef:     req.SourceLocation,
	})
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ResolveResponse{
		ObjectURL:             res.ObjectURL,
		ValidityPeriodSeconds: res.ValidityPeriodSeconds,
	})
}

func (h *Handler) handleResumable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	sessionURL, err := h.service.ResolveResumable(r.Context(), CallerFromContext(r.Context()), id)
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ResolveResponse{ObjectURL: sessionURL})
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.service.CreateGroup(r.Context(), CallerFromContext(r.Context()), vana.CreateGroup{
		Name:    req.GroupName,
		OwnerID: req.OwnerID,
		Kind:    vana.GroupKind(req.Kind),
		Readers: req.Readers,
		Writers: req.Writers,
	})
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, toGroupResponse(g))
}

func (h *Handler) handleDescribeGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}

	g, err := h.service.DescribeGroup(r.Context(), CallerFromContext(r.Context()), id)
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, toGroupResponse(g))
}

func (h *Handler) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}

	var req GroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.service.UpdateGroup(r.Context(), CallerFromContext(r.Context()), id, vana.UpdateGroup{
		Name:    req.GroupName,
		OwnerID: req.OwnerID,
		Readers: req.Readers,
		Writers: req.Writers,
	})
	if err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, toGroupResponse(g))
}

func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteGroup(r.Context(), CallerFromContext(r.Context()), id); err != nil {
		HandleError(w, h.config.Catalog, err)
		return
	}

	WriteText(w, http.StatusOK, "deleted")
}
