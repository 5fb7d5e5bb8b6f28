package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shivamDefault/ChatLive/internal/application"
)

const maxUploadBytes = 10 << 20

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Name     string `json:"name"`
	Number   string `json:"number"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name     *string `json:"name,omitempty"`
	Number   *string `json:"number,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type addChatRequest struct {
	Number string `json:"number"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logRejected(r, "readyz", http.StatusServiceUnavailable, "NOT_READY", err)
			writeError(w, r, http.StatusServiceUnavailable, "NOT_READY", "dependencies unavailable")
			return
		}
	}
	writeMessage(w, r, http.StatusOK, "ready")
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, toStateView(h.service.Snapshot()))
}

// stateChanges long-polls until the state changes or the wait elapses, then
// returns the current snapshot.
func (h *Handler) stateChanges(w http.ResponseWriter, r *http.Request) {
	wait := 25 * time.Second
	if raw := r.URL.Query().Get("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 || d > time.Minute {
			writeBadRequest(w, r, "state_changes", errors.New("wait must be a duration up to 1m"))
			return
		}
		wait = d
	}
	changes, cancel := h.service.Watch()
	defer cancel()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	changed := false
	select {
	case <-changes:
		changed = true
	case <-timer.C:
	case <-r.Context().Done():
		return
	}
	w.Header().Set("X-State-Changed", strconv.FormatBool(changed))
	writeData(w, r, http.StatusOK, toStateView(h.service.Snapshot()))
}

func (h *Handler) consumeNotification(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, map[string]string{"notification": h.service.ConsumeNotification()})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, r, "login", err)
		return
	}
	if err := h.service.Login(r.Context(), req.Email, req.Password); err != nil {
		writeMappedError(w, r, "login", err)
		return
	}
	writeData(w, r, http.StatusOK, toStateView(h.service.Snapshot()))
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, r, "sign_up", err)
		return
	}
	if err := h.service.SignUp(r.Context(), req.Name, req.Number, req.Email, req.Password); err != nil {
		writeMappedError(w, r, "sign_up", err)
		return
	}
	writeData(w, r, http.StatusCreated, toStateView(h.service.Snapshot()))
}

func (h *Handler) logOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LogOut(r.Context()); err != nil {
		writeMappedError(w, r, "log_out", err)
		return
	}
	writeMessage(w, r, http.StatusOK, "logged out")
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, r, "update_profile", err)
		return
	}
	update := application.ProfileUpdate{Name: req.Name, Number: req.Number, ImageURL: req.ImageURL}
	if err := h.service.UpdateProfile(r.Context(), update); err != nil {
		writeMappedError(w, r, "update_profile", err)
		return
	}
	writeData(w, r, http.StatusOK, toStateView(h.service.Snapshot()).Profile)
}

func (h *Handler) uploadProfileImage(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := readUpload(w, r)
	if err != nil {
		writeBadRequest(w, r, "upload_profile_image", err)
		return
	}
	if err := h.service.UploadProfileImage(r.Context(), contentType, data); err != nil {
		writeMappedError(w, r, "upload_profile_image", err)
		return
	}
	writeData(w, r, http.StatusOK, toStateView(h.service.Snapshot()).Profile)
}

func (h *Handler) addChat(w http.ResponseWriter, r *http.Request) {
	var req addChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, r, "add_chat", err)
		return
	}
	if err := h.service.AddChat(r.Context(), req.Number); err != nil {
		writeMappedError(w, r, "add_chat", err)
		return
	}
	writeData(w, r, http.StatusCreated, toStateView(h.service.Snapshot()).Chats)
}

func (h *Handler) deleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteChat(r.Context(), chi.URLParam(r, "chatID")); err != nil {
		writeMappedError(w, r, "delete_chat", err)
		return
	}
	writeMessage(w, r, http.StatusOK, "chat deleted")
}

func (h *Handler) openChat(w http.ResponseWriter, r *http.Request) {
	if err := h.service.OpenChat(r.Context(), chi.URLParam(r, "chatID")); err != nil {
		writeMappedError(w, r, "open_chat", err)
		return
	}
	writeData(w, r, http.StatusOK, toStateView(h.service.Snapshot()).Messages)
}

func (h *Handler) closeChat(w http.ResponseWriter, r *http.Request) {
	h.service.CloseChat()
	writeMessage(w, r, http.StatusOK, "chat closed")
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, r, "send_message", err)
		return
	}
	if err := h.service.SendMessage(r.Context(), chi.URLParam(r, "chatID"), req.Text); err != nil {
		writeMappedError(w, r, "send_message", err)
		return
	}
	writeMessage(w, r, http.StatusAccepted, "message sent")
}

func (h *Handler) uploadStatus(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := readUpload(w, r)
	if err != nil {
		writeBadRequest(w, r, "upload_status", err)
		return
	}
	if err := h.service.UploadStatus(r.Context(), contentType, data); err != nil {
		writeMappedError(w, r, "upload_status", err)
		return
	}
	writeMessage(w, r, http.StatusCreated, "status posted")
}

func (h *Handler) statusesOf(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, toStatusViews(h.service.StatusesOf(chi.URLParam(r, "userID"))))
}

func (h *Handler) downloadBlob(w http.ResponseWriter, r *http.Request) {
	blob, err := h.blobs.Get(r.Context(), chi.URLParam(r, "blobID"))
	if err != nil {
		writeMappedError(w, r, "download_blob", err)
		return
	}
	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return contentType, data, nil
}
