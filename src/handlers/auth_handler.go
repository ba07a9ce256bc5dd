package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"budget-server/src/apperr"
	"budget-server/src/models"
	"budget-server/src/policy"
	"budget-server/src/store"
	"budget-server/src/util"
)

func Register(st store.Store, adminEmail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email       string `json:"email"`
			Password    string `json:"password"`
			DisplayName string `json:"display_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.DisplayName = strings.TrimSpace(req.DisplayName)

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}
		if !util.ValidatePassword(req.Password) {
			log.Printf("ERROR: Password validation failed during registration - Email: %s", req.Email)
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash password for %s: %v", req.Email, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// The seeded admin account is approved from the start; everyone
		// else waits behind the approval gate.
		isAdmin := strings.EqualFold(req.Email, adminEmail)
		user, err := st.CreateUser(r.Context(), req.Email, req.DisplayName, hashedPassword, isAdmin, isAdmin)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
				log.Printf("ERROR: Registration failed - email already exists - Email: %s", req.Email)
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create user %s: %v", req.Email, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Successful registration - Email: %s, ID: %d, Approved: %t", user.Email, user.ID, user.IsApproved)

		if !user.IsApproved {
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"message": "account created, awaiting admin approval",
				"user":    user,
			})
			return
		}

		token, err := issueToken(user)
		if err != nil {
			log.Printf("ERROR: Failed to generate JWT token for %s: %v", user.Email, err)
			http.Error(w, "Error generating token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"token": token,
			"user":  user,
		})
	}
}

func Login(st store.Store, adminEmail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		email := strings.ToLower(strings.TrimSpace(credentials.Email))
		user, err := st.GetUserByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				log.Printf("ERROR: Login attempt for unknown email %s from IP %s", email, r.RemoteAddr)
				writeError(w, apperr.ErrInvalidCredentials)
				return
			}
			log.Printf("ERROR: Failed to look up user %s: %v", email, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			log.Printf("ERROR: Invalid password attempt for %s from IP %s", email, r.RemoteAddr)
			writeError(w, apperr.ErrInvalidCredentials)
			return
		}

		// Approval gate: correct credentials are not enough until an admin
		// approves the account. The seeded admin passes regardless of flags.
		ident := policy.IdentityFor(user, adminEmail)
		if !ident.IsApproved {
			log.Printf("ERROR: Unapproved account attempted login - Email: %s", email)
			writeError(w, apperr.ErrPendingApproval)
			return
		}

		token, err := issueToken(user)
		if err != nil {
			log.Printf("ERROR: Failed to generate JWT token for %s: %v", user.Email, err)
			http.Error(w, "Error generating token", http.StatusInternalServerError)
			return
		}

		if err := st.UpdateUserLastLogin(r.Context(), user.ID); err != nil {
			log.Printf("ERROR: Failed to update last_login for %s: %v", user.Email, err)
		}

		log.Printf("INFO: Successful login - Email: %s, ID: %d", user.Email, user.ID)
		writeJSON(w, http.StatusOK, map[string]string{
			"token": token,
		})
	}
}

func issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(time.Hour * 168).Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
