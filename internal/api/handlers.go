package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shelterconnect/platform/pkg/logger"
	"github.com/shelterconnect/platform/pkg/notifications"
	"github.com/shelterconnect/platform/pkg/requestid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the notification endpoints. Every route operates on the
// authenticated actor from the request context; there is no ambient
// current-user state.
type Handler struct {
	storage     notifications.Storage
	stats       *notifications.Aggregator
	service     *notifications.Service
	push        *notifications.PushDeliverer
	environment string
	logger      *slog.Logger
}

// NewHandler creates the notification API handler. push may be nil when
// the deployment has no live stream.
func NewHandler(storage notifications.Storage, stats *notifications.Aggregator, service *notifications.Service, push *notifications.PushDeliverer, environment string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		storage:     storage,
		stats:       stats,
		service:     service,
		push:        push,
		environment: environment,
		logger:      log,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	perPage := queryInt(r, "per_page", defaultPageSize)
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	opts := notifications.ListOptions{
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
		OnlyUnread: r.URL.Query().Get("unread_only") == "true",
		Type:       notifications.Class(r.URL.Query().Get("type")),
	}

	records, err := h.storage.ListRecords(r.Context(), actor.ID, opts)
	if err != nil {
		h.serverError(w, r, "list notifications", err)
		return
	}
	unread, err := h.storage.CountUnread(r.Context(), actor.ID)
	if err != nil {
		h.serverError(w, r, "count unread", err)
		return
	}

	if records == nil {
		records = []notifications.Record{}
	}
	respondOK(w, map[string]any{
		"data":         records,
		"page":         page,
		"per_page":     perPage,
		"unread_count": unread,
	})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	count, err := h.storage.CountUnread(r.Context(), actor.ID)
	if err != nil {
		h.serverError(w, r, "count unread", err)
		return
	}
	respondOK(w, map[string]any{"unread_count": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Notificación no encontrada")
		return
	}

	if err := h.storage.MarkRead(r.Context(), actor.ID, id); err != nil {
		if errors.Is(err, notifications.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Notificación no encontrada")
			return
		}
		h.serverError(w, r, "mark read", err)
		return
	}

	unread, err := h.storage.CountUnread(r.Context(), actor.ID)
	if err != nil {
		h.serverError(w, r, "count unread", err)
		return
	}
	respondOK(w, map[string]any{
		"message":      "Notificación marcada como leída",
		"unread_count": unread,
	})
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	if _, err := h.storage.MarkAllRead(r.Context(), actor.ID); err != nil {
		h.serverError(w, r, "mark all read", err)
		return
	}
	respondOK(w, map[string]any{
		"message":      "Todas las notificaciones marcadas como leídas",
		"unread_count": 0,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Notificación no encontrada")
		return
	}

	if err := h.storage.DeleteRecord(r.Context(), actor.ID, id); err != nil {
		if errors.Is(err, notifications.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Notificación no encontrada")
			return
		}
		h.serverError(w, r, "delete notification", err)
		return
	}

	unread, err := h.storage.CountUnread(r.Context(), actor.ID)
	if err != nil {
		h.serverError(w, r, "count unread", err)
		return
	}
	respondOK(w, map[string]any{
		"message":      "Notificación eliminada",
		"unread_count": unread,
	})
}

func (h *Handler) userStats(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	stats, err := h.stats.UserStats(r.Context(), actor.ID)
	if err != nil {
		h.serverError(w, r, "user stats", err)
		return
	}
	recent, err := h.stats.Recent(r.Context(), actor.ID, 5)
	if err != nil {
		h.serverError(w, r, "recent notifications", err)
		return
	}
	if recent == nil {
		recent = []notifications.Record{}
	}

	respondOK(w, map[string]any{
		"data": map[string]any{
			"total_notifications":   stats.TotalSent,
			"unread_notifications":  stats.TotalUnread,
			"read_notifications":    stats.TotalRead,
			"notifications_by_type": stats.ByType,
			"recent_notifications":  recent,
		},
	})
}

// adminStats serves platform-wide delivery totals, scoped to a single
// organization when organization_id is supplied.
func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats *notifications.Stats
		err   error
	)
	if raw := r.URL.Query().Get("organization_id"); raw != "" {
		orgID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || orgID < 1 {
			respondError(w, http.StatusUnprocessableEntity, "Organización inválida")
			return
		}
		stats, err = h.stats.OrganizationStats(r.Context(), orgID)
	} else {
		stats, err = h.stats.SystemStats(r.Context())
	}
	if err != nil {
		h.serverError(w, r, "admin stats", err)
		return
	}

	respondOK(w, map[string]any{
		"data": map[string]any{
			"total_notifications":   stats.TotalSent,
			"unread_notifications":  stats.TotalUnread,
			"read_notifications":    stats.TotalRead,
			"notifications_by_type": stats.ByType,
		},
	})
}

type sendRequest struct {
	TemplateKey    string         `json:"template_key"`
	OrganizationID int64          `json:"organization_id"`
	UserIDs        []int64        `json:"user_ids"`
	Variables      map[string]any `json:"variables"`
}

func (req sendRequest) recipients() notifications.RecipientSpec {
	if len(req.UserIDs) > 0 {
		return notifications.ExplicitRecipients(req.UserIDs...)
	}
	return notifications.OrganizationRecipients(req.OrganizationID)
}

// sendClass dispatches a class-restricted send request. The response is an
// acknowledgement only; delivery outcomes surface through stats and logs.
func (h *Handler) sendClass(class notifications.Class) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
			return
		}

		tmpl, err := notifications.Resolve(req.TemplateKey)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "Template desconocido")
			return
		}
		if tmpl.Class != class {
			respondError(w, http.StatusUnprocessableEntity, "Template no válido para este tipo de envío")
			return
		}

		variables := req.Variables
		if class == notifications.ClassOrganizationAlert && req.OrganizationID != 0 {
			if variables == nil {
				variables = map[string]any{}
			}
			if _, ok := variables["organization_id"]; !ok {
				variables["organization_id"] = req.OrganizationID
			}
		}

		spec := req.recipients()
		if err := spec.Validate(); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "Receptores no especificados")
			return
		}

		if err := h.service.SendFromTemplate(r.Context(), req.TemplateKey, spec, variables); err != nil {
			h.serverError(w, r, "dispatch send", err)
			return
		}
		respondJSON(w, http.StatusAccepted, map[string]any{
			"success": true,
			"message": "Notificación aceptada para envío",
		})
	}
}

type sendTestRequest struct {
	Type         string `json:"type"`
	TargetUserID int64  `json:"target_user_id"`
}

func (h *Handler) sendTest(w http.ResponseWriter, r *http.Request) {
	if h.environment == "production" {
		respondError(w, http.StatusForbidden, "Esta función solo está disponible en desarrollo")
		return
	}

	var req sendTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetUserID == 0 {
		respondError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	var (
		templateKey string
		variables   map[string]any
	)
	switch req.Type {
	case string(notifications.ClassServiceStatus):
		templateKey = notifications.TemplateServiceCreated
		variables = map[string]any{
			"service_name":      "Servicio de Prueba",
			"organization_name": "Organización de Prueba",
		}
	case string(notifications.ClassOrganizationAlert):
		templateKey = notifications.TemplateDailyReportReady
		variables = map[string]any{
			"date": time.Now().Format("02/01/2006"),
			"test": true,
		}
	default:
		respondError(w, http.StatusUnprocessableEntity, "Tipo de notificación desconocido")
		return
	}

	err := h.service.SendFromTemplate(r.Context(), templateKey,
		notifications.ExplicitRecipients(req.TargetUserID), variables)
	if err != nil {
		h.serverError(w, r, "send test notification", err)
		return
	}
	respondOK(w, map[string]any{"message": "Notificación de prueba enviada correctamente"})
}

// stream pushes the actor's live notifications as server-sent events.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	if h.push == nil {
		respondError(w, http.StatusNotFound, "Stream no disponible")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming no soportado")
		return
	}
	actor, _ := ActorFromContext(r.Context())

	sub := h.push.Subscribe(r.Context())
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-sub.Receive(r.Context()):
			if !open {
				return
			}
			if msg.Data.UserID != actor.ID {
				continue
			}
			data, err := json.Marshal(msg.Data)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("event: " + msg.Data.Event + "\ndata: " + string(data) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.LogAttrs(r.Context(), slog.LevelError, op+" failed",
		logger.Error(err), requestid.Attr(r.Context()))
	respondError(w, http.StatusInternalServerError, "Error interno")
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
