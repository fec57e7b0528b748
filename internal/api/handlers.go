package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cyberone/financial-mesh/internal/auth"
	"github.com/cyberone/financial-mesh/internal/models"
	"github.com/cyberone/financial-mesh/internal/service"
)

// Handler is for handling api requests
type Handler struct {
	authService     *service.AuthService
	transferService *service.TransferService
	adminService    *service.AdminService
	messageService  *service.MessageService
	limiter         *RateLimiter

	jwtSecret string
	jwtTTL    time.Duration
}

func NewHandler(authService *service.AuthService, transferService *service.TransferService, adminService *service.AdminService, messageService *service.MessageService, limiter *RateLimiter, jwtSecret string, jwtTTL time.Duration) *Handler {
	return &Handler{
		authService:     authService,
		transferService: transferService,
		adminService:    adminService,
		messageService:  messageService,
		limiter:         limiter,
		jwtSecret:       jwtSecret,
		jwtTTL:          jwtTTL,
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// for error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// maps the service failure taxonomy onto HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrInvalidTransaction):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrAccountExists):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAccessRestricted),
		errors.Is(err, service.ErrAccessForbidden),
		errors.Is(err, service.ErrTooManyAttempts),
		errors.Is(err, service.ErrSecondaryAuthRejected):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnknownCredentials),
		errors.Is(err, service.ErrAccessDenied):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFromError(err), err.Error())
}

func (h *Handler) sessionResponse(w http.ResponseWriter, status int, acc *models.Account) {
	token, err := auth.GenerateToken(h.jwtSecret, acc, h.jwtTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue session token")
		return
	}
	respondJSON(w, status, models.LoginResponse{Token: token, Account: acc})
}

// account registration; the registrant is logged in right away
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.ID == "" || req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "id, username and password are required")
		return
	}

	acc, err := h.authService.Register(r.Context(), req.ID, req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.sessionResponse(w, http.StatusCreated, acc)
}

// handles account login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	acc, err := h.authService.Login(r.Context(), req.ID, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.sessionResponse(w, http.StatusOK, acc)
}

// handles commission sign-in with the fixed clearance pair
func (h *Handler) CommissionLogin(w http.ResponseWriter, r *http.Request) {
	var req models.CommissionLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	acc, err := h.authService.CommissionLogin(r.Context(), req.Username, req.Code)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.sessionResponse(w, http.StatusOK, acc)
}

// returns the calling account
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acc, err := h.authService.GetAccount(r.Context(), claimsFrom(r).AccountID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, acc)
}

// handles transfer creation; the sender is the session account
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	tx, err := h.transferService.Transfer(r.Context(), claimsFrom(r).AccountID, req.ReceiverID, req.Amount)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

// handles transaction list retrieval for the session account
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	txs, err := h.transferService.ListByAccount(r.Context(), claimsFrom(r).AccountID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

// handles message sending
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	msg, err := h.messageService.Send(r.Context(), claimsFrom(r).AccountID, req.ToID, req.Content)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// handles conversation retrieval between the session account and a peer
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	peerID := mux.Vars(r)["peerId"]

	msgs, err := h.messageService.Conversation(r.Context(), claimsFrom(r).AccountID, peerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

// --- commission panel ---

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.adminService.ListAccounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *Handler) ListLedger(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	txs, err := h.adminService.ListLedger(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	logs, err := h.adminService.ListLogs(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	entries, err := h.adminService.ListAudit(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// full message history of one account, commission only
func (h *Handler) GetAccountMessages(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]

	msgs, err := h.messageService.History(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

// force-sets an account balance behind the secondary password
func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	var req models.SetBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	cmd := service.SetBalance{TargetID: mux.Vars(r)["id"], Value: req.Value}
	if err := h.adminService.Perform(r.Context(), claimsFrom(r).AccountID, req.SecondaryPassword, cmd); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// force-sets an account status behind the secondary password
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req models.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	cmd := service.SetStatus{TargetID: mux.Vars(r)["id"], Value: req.Value}
	if err := h.adminService.Perform(r.Context(), claimsFrom(r).AccountID, req.SecondaryPassword, cmd); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rolls a transaction back behind the secondary password
func (h *Handler) RevertTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.RevertTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	cmd := service.RevertTransaction{TxID: mux.Vars(r)["id"]}
	if err := h.adminService.Perform(r.Context(), claimsFrom(r).AccountID, req.SecondaryPassword, cmd); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handles health check
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Parsing the query parameters; default limit is set to 50
func pageParams(r *http.Request) (limit, offset int) {
	limit = 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset = 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// sets up the API routes
func SetupRoutes(r *mux.Router, h *Handler) {
	// Health check (check if API is working)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Public routes; login and registration are rate limited
	r.HandleFunc("/register", h.rateLimit(h.Register)).Methods("POST")
	r.HandleFunc("/login", h.rateLimit(h.Login)).Methods("POST")
	r.HandleFunc("/commission/login", h.rateLimit(h.CommissionLogin)).Methods("POST")

	// Session routes
	r.HandleFunc("/me", h.authenticate(h.Me)).Methods("GET")
	r.HandleFunc("/transfers", h.authenticate(h.CreateTransfer)).Methods("POST")
	r.HandleFunc("/transactions", h.authenticate(h.GetTransactions)).Methods("GET")
	r.HandleFunc("/messages", h.authenticate(h.SendMessage)).Methods("POST")
	r.HandleFunc("/messages/{peerId}", h.authenticate(h.GetConversation)).Methods("GET")

	// Commission panel
	r.HandleFunc("/admin/accounts", h.requireCommission(h.ListAccounts)).Methods("GET")
	r.HandleFunc("/admin/ledger", h.requireCommission(h.ListLedger)).Methods("GET")
	r.HandleFunc("/admin/logs", h.requireCommission(h.ListLogs)).Methods("GET")
	r.HandleFunc("/admin/audit", h.requireCommission(h.ListAudit)).Methods("GET")
	r.HandleFunc("/admin/stats", h.requireCommission(h.GetStats)).Methods("GET")
	r.HandleFunc("/admin/accounts/{id}/messages", h.requireCommission(h.GetAccountMessages)).Methods("GET")
	r.HandleFunc("/admin/accounts/{id}/balance", h.requireCommission(h.SetBalance)).Methods("PUT")
	r.HandleFunc("/admin/accounts/{id}/status", h.requireCommission(h.SetStatus)).Methods("PUT")
	r.HandleFunc("/admin/transactions/{id}/revert", h.requireCommission(h.RevertTransaction)).Methods("POST")
}
