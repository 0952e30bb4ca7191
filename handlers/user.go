package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/cafeteria/database/dbhelper"
	"github.com/ray-remotestate/cafeteria/middlewares"
	"github.com/ray-remotestate/cafeteria/models"
	"github.com/ray-remotestate/cafeteria/utils"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := decodeBody(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		utils.RespondMessage(w, http.StatusBadRequest, "Username and password required")
		return
	}

	exists, err := dbhelper.IsUserExists(r.Context(), h.DB, req.Username)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	if exists {
		utils.RespondError(w, r, models.ErrDuplicateUsername)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	// signups always start as plain users
	userID, err := dbhelper.CreateUser(r.Context(), h.DB, req.Username, hashedPassword, models.RoleUser)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	logrus.WithField("user_id", userID).Info("user registered")
	utils.RespondMessage(w, http.StatusCreated, "User registered successfully!")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := decodeBody(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		utils.RespondMessage(w, http.StatusBadRequest, "Username and password required")
		return
	}

	user, err := dbhelper.GetUserByPassword(r.Context(), h.DB, req.Username, req.Password)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	token, expiresAt, err := utils.GenerateSessionToken(h.Session.Secret, user, h.Session.TTL)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   h.Session.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  expiresAt,
	})

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Login successful!",
		"username": user.Username,
		"role":     user.Role,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   h.Session.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  time.Unix(0, 0), // Expire immediately
		MaxAge:   -1,
	})

	utils.RespondMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := dbhelper.ListUsers(r.Context(), h.DB)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, users)
}
