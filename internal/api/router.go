package api

import (
	"encoding/json"
	"net/http"

	"submithub/internal/middleware"
	"submithub/internal/services"
)

type Router struct {
	auth     *services.AuthService
	records  *services.RecordService
	bindings *services.BindingService
	codec    *middleware.TokenCodec
}

func NewRouter(auth *services.AuthService, records *services.RecordService, bindings *services.BindingService, codec *middleware.TokenCodec) *Router {
	return &Router{auth: auth, records: records, bindings: bindings, codec: codec}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister)                          // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)                                // POST
	mux.Handle("/api/records", rt.codec.RequireAuth(http.HandlerFunc(rt.handleRecords)))   // GET, POST
	mux.Handle("/api/bindings", rt.codec.RequireAuth(http.HandlerFunc(rt.handleBindings))) // POST
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	res, err := rt.auth.Register(req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	res, err := rt.auth.Login(req.Login, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET|POST /api/records
func (rt *Router) handleRecords(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		writeError(w, &services.ServiceError{Code: services.ErrorMissingCredential, Message: "bearer credential required"})
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, services.NewInvalidError("invalid json body"))
			return
		}
		rec, err := rt.records.Submit(sess, req.Title, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	case http.MethodGet:
		recs, err := rt.records.List(sess)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": recs})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /api/bindings
func (rt *Router) handleBindings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := sessionFrom(r)
	if !ok {
		writeError(w, &services.ServiceError{Code: services.ErrorMissingCredential, Message: "bearer credential required"})
		return
	}
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	res, err := rt.bindings.Bind(sess, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func sessionFrom(r *http.Request) (*services.Session, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return &services.Session{
		UserID:   claims.UID,
		Username: claims.Username,
		Role:     services.Role(claims.Role),
	}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": services.ErrorStore, "message": "internal error",
		})
		return
	}
	writeJSON(w, statusForCode(se.Code), map[string]any{"error": se.Code, "message": se.Message})
}

func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid, services.ErrorInvalidTargetRole:
		return http.StatusBadRequest
	case services.ErrorMissingCredential, services.ErrorInvalidCredentials:
		return http.StatusUnauthorized
	case services.ErrorInvalidCredential, services.ErrorUnauthorizedRole:
		return http.StatusForbidden
	case services.ErrorTargetNotFound:
		return http.StatusNotFound
	case services.ErrorDuplicateIdentity, services.ErrorDuplicateRelationship:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
