package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"chara/internal/auth"
	"chara/internal/catalog"
	"chara/internal/gallery"
	"chara/internal/logging"
)

// maxUploadBytes caps request bodies carrying image data.
const maxUploadBytes = 32 << 20

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := s.gallery.Count(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	checkpoints, err := s.store.Checkpoints(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := StatusResponse{
		Running:        true,
		PID:            os.Getpid(),
		ItemCount:      count,
		ScraperEnabled: s.scraperEnabled,
		Checkpoints:    make([]CheckpointPayload, 0, len(checkpoints)),
	}
	for _, cp := range checkpoints {
		payload.Checkpoints = append(payload.Checkpoints, CheckpointPayload{
			FeedKey:         cp.FeedKey,
			LastProcessedID: cp.LastProcessedID,
			UpdatedAt:       cp.UpdatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	opts := catalog.ListOptions{
		Subject: strings.TrimSpace(query.Get("subject")),
		Group:   strings.TrimSpace(query.Get("group")),
		Search:  strings.TrimSpace(query.Get("search")),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset > 0 {
		opts.Offset = offset
	}

	items, err := s.gallery.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := fromItems(items)
	s.writeJSON(w, http.StatusOK, ItemListResponse{Items: payload, Count: len(payload)})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/items/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := s.gallery.Get(r.Context(), id)
		if errors.Is(err, gallery.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, fromItem(item))
	case http.MethodDelete:
		if !s.authorized(r) {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		err := s.gallery.Delete(r.Context(), id)
		if errors.Is(err, gallery.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := s.readImage(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	topK := 0
	if value, err := strconv.Atoi(r.URL.Query().Get("top_k")); err == nil && value > 0 {
		topK = value
	}

	matches, err := s.gallery.ReverseSearch(r.Context(), data, topK)
	if errors.Is(err, gallery.ErrUndecodable) {
		s.writeError(w, http.StatusUnprocessableEntity, "image is not decodable")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Matches: fromMatches(matches)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.authenticator.Login(r.Context(), req.Password)
	switch {
	case errors.Is(err, auth.ErrDisabled):
		s.writeError(w, http.StatusForbidden, "admin access disabled")
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	token := bearerToken(r)
	if token == "" {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := s.authenticator.Logout(r.Context(), token); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart form required")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "image field required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unreadable image field")
		return
	}

	item, err := s.gallery.Upload(r.Context(), r.FormValue("subject"), r.FormValue("group"), data)
	if errors.Is(err, gallery.ErrUndecodable) {
		s.writeError(w, http.StatusUnprocessableEntity, "image is not decodable")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, fromItem(item))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/images/")
	path, err := s.gallery.ImagePath(key)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid image key")
		return
	}
	http.ServeFile(w, r, path)
}

// requireAdmin wraps a handler with session verification.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	token := bearerToken(r)
	if token == "" {
		return false
	}
	if err := s.authenticator.Verify(r.Context(), token); err != nil {
		if !errors.Is(err, auth.ErrInvalidSession) && !errors.Is(err, auth.ErrDisabled) {
			s.logger.Warn("session verification failed", logging.Error(err))
		}
		return false
	}
	return true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// readImage extracts query-image bytes from either a multipart "image" field
// or a raw request body.
func (s *Server) readImage(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, errors.New("multipart form unreadable")
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errors.New("image field required")
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return nil, errors.New("unreadable image field")
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		return nil, errors.New("unreadable request body")
	}
	if len(data) == 0 {
		return nil, errors.New("empty request body")
	}
	return data, nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}
