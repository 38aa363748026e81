package server

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/me/trailctl/internal/store"
	"github.com/me/trailctl/pkg/model"
	"github.com/me/trailctl/pkg/trail"
)

type authResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req trail.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var fields []fieldErr
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields = append(fields, fieldErr{Field: "email", Message: "invalid email address", Type: "value_error"})
	}
	if len(req.Password) < 8 {
		fields = append(fields, fieldErr{Field: "password", Message: "must be at least 8 characters", Type: "value_error"})
	}
	if req.FullName == "" {
		fields = append(fields, fieldErr{Field: "full_name", Message: "must not be empty", Type: "value_error"})
	}
	if len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	ctx := r.Context()
	if existing, err := s.store.GetAccountByEmail(ctx, req.Email); err != nil {
		s.logger.Error("register lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "account lookup failed")
		return
	} else if existing != nil {
		respondError(w, http.StatusConflict, "Conflict", "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not hash password")
		return
	}

	// The first registered account gets the admin role so a fresh
	// instance is administrable without a seed step.
	role := model.RoleUser
	if n, err := s.store.CountAccounts(ctx); err == nil && n == 0 {
		role = model.RoleAdmin
	}

	now := time.Now().UTC()
	acct := &store.Account{
		User: model.User{
			ID:        "user_" + uuid.New().String()[:8],
			Email:     req.Email,
			FullName:  req.FullName,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
		},
		PasswordHash: string(hash),
	}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		s.logger.Error("create account failed", "error", err)
		respondError(w, http.StatusConflict, "Conflict", "email already registered")
		return
	}

	tok, err := s.issueToken(r, acct)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not issue token")
		return
	}
	s.audit(ctx, &acct.User, model.ActionRegister, "user", acct.User.ID, model.AuditStatusSuccess, "account registered")

	respondJSON(w, http.StatusCreated, authResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        acct.User,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req trail.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	acct, err := s.store.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "account lookup failed")
		return
	}
	if acct == nil || !acct.User.IsActive ||
		bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)) != nil {
		if acct != nil {
			s.audit(ctx, &acct.User, model.ActionLogin, "user", acct.User.ID, model.AuditStatusFailure, "invalid credentials")
		}
		respondError(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	tok, err := s.issueToken(r, acct)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not issue token")
		return
	}
	s.audit(ctx, &acct.User, model.ActionLogin, "user", acct.User.ID, model.AuditStatusSuccess, "logged in")

	respondJSON(w, http.StatusOK, authResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        acct.User,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acct := accountFromContext(ctx)
	if tok := tokenFromContext(ctx); tok != "" {
		if err := s.store.DeleteToken(ctx, tok); err != nil {
			s.logger.Error("delete token failed", "error", err)
		}
	}
	if acct != nil {
		s.audit(ctx, &acct.User, model.ActionLogout, "user", acct.User.ID, model.AuditStatusSuccess, "logged out")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	acct := accountFromContext(r.Context())
	respondJSON(w, http.StatusOK, acct.User)
}

// issueToken creates an opaque bearer token for the account and records
// the login time.
func (s *Server) issueToken(r *http.Request, acct *store.Account) (string, error) {
	ctx := r.Context()
	now := time.Now().UTC()
	tok := &store.Token{
		Token:     uuid.New().String(),
		UserID:    acct.User.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.store.CreateToken(ctx, tok); err != nil {
		s.logger.Error("create token failed", "error", err)
		return "", err
	}
	if err := s.store.SetLastLogin(ctx, acct.User.ID, now); err != nil {
		s.logger.Error("set last login failed", "error", err)
	}
	acct.User.LastLogin = &now
	return tok.Token, nil
}
