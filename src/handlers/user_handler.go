package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"budget-server/src/store"
	"budget-server/src/util"
)

func GetUser(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		requestedID := chi.URLParam(r, "user_id")
		parsedID, err := strconv.ParseInt(requestedID, 10, 64)
		if err != nil {
			log.Printf("ERROR: Failed to parse user_id from URL - user_id: %s: %v", requestedID, err)
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		if ident.ID != parsedID {
			log.Printf("ERROR: Unauthorized profile access attempt - Authenticated user: %d, Requested user: %d", ident.ID, parsedID)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		user, err := st.GetUserByID(r.Context(), parsedID)
		if err != nil {
			log.Printf("ERROR: Failed to get user - user_id: %d: %v", parsedID, err)
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func UpdateUser(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		var req struct {
			Email       string `json:"email"`
			DisplayName string `json:"display_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update user request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during user update - Email: %s, User: %d", req.Email, ident.ID)
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		if err := st.UpdateUserProfile(r.Context(), ident.ID, req.Email, strings.TrimSpace(req.DisplayName)); err != nil {
			if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
				log.Printf("ERROR: Profile update rejected - email already exists - Email: %s, User: %d", req.Email, ident.ID)
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to update user profile - user_id: %d: %v", ident.ID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: User profile updated - User: %d", ident.ID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "profile updated successfully",
		})
	}
}

func ChangePassword(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode change password request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		user, err := st.GetUserByID(r.Context(), ident.ID)
		if err != nil {
			log.Printf("ERROR: Failed to get user for password change - user_id: %d: %v", ident.ID, err)
			writeError(w, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			log.Printf("ERROR: Invalid current password attempt for user %d", ident.ID)
			http.Error(w, "current password is incorrect", http.StatusUnauthorized)
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			log.Printf("ERROR: Password validation failed during change password - User: %d", ident.ID)
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash new password for user %d: %v", ident.ID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := st.UpdateUserPassword(r.Context(), ident.ID, hashedPassword); err != nil {
			log.Printf("ERROR: Failed to update user password - user_id: %d: %v", ident.ID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: User password changed - User: %d", ident.ID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "password changed successfully",
		})
	}
}
