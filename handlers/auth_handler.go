package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefinder/middleware"
	"storefinder/models"
	"storefinder/services"
	"storefinder/utils/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

type AuthHandler struct {
	auth      *services.AuthService
	reset     *services.ResetService
	jwtSecret string
}

func NewAuthHandler(auth *services.AuthService, reset *services.ResetService, jwtSecret string) *AuthHandler {
	return &AuthHandler{auth: auth, reset: reset, jwtSecret: jwtSecret}
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name            string `json:"name" validate:"required"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}
	if err := services.ConfirmPasswords(input.Password, input.PasswordConfirm); err != nil {
		middleware.WriteError(w, err)
		return
	}

	user, token, err := h.auth.Register(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sessionResponse{Token: token, User: user})
}

func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}

	user, token, err := h.auth.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionResponse{Token: token, User: user})
}

// Logout revokes the caller's session. It is deliberately lenient: a
// missing, invalid or already-revoked token still gets a success response,
// so logging out twice is harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid := h.sessionIDFromRequest(r); sid != "" {
		if err := h.auth.Logout(r.Context(), sid); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "You have been logged out"})
}

func (h *AuthHandler) sessionIDFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	token, err := jwt.Parse(strings.TrimPrefix(authHeader, "Bearer "), func(token *jwt.Token) (any, error) {
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}

func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	user, err := h.auth.User(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	var input struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}

	user, err := h.auth.UpdateAccount(r.Context(), userID, input.Name, input.Email)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}

	if err := h.reset.RequestReset(r.Context(), input.Email); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "You have been emailed a password reset link"})
}

// ValidateReset checks a reset token before the client shows its new-password
// form.
func (h *AuthHandler) ValidateReset(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if _, err := h.reset.ValidateToken(r.Context(), token); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Token is valid"})
}

// CompleteReset consumes the token, sets the new password and logs the user
// in.
func (h *AuthHandler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	var input struct {
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if verr := validateInput(input); verr != nil {
		middleware.WriteError(w, verr)
		return
	}
	if err := services.ConfirmPasswords(input.Password, input.PasswordConfirm); err != nil {
		middleware.WriteError(w, err)
		return
	}

	user, sessionToken, err := h.reset.CompleteReset(r.Context(), token, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionResponse{Token: sessionToken, User: user})
}
