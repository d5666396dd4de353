package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/vaughan-dsouza/codeatlas/internal/auth"
	"github.com/vaughan-dsouza/codeatlas/internal/middleware"
	"github.com/vaughan-dsouza/codeatlas/internal/models"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
	"github.com/vaughan-dsouza/codeatlas/internal/utils"
)

// WebHandler serves the signup/login/account flow: server-rendered pages,
// form posts, and the http-only identity cookie.
type WebHandler struct {
	Store *store.Store
	Tmpl  *template.Template
}

func NewWebHandler(s *store.Store, tmpl *template.Template) *WebHandler {
	return &WebHandler{Store: s, Tmpl: tmpl}
}

type pageData struct {
	User  *models.User
	Error string
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data any) {
	if err := h.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

// -------------- HOME ------------------------

func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home.html", pageData{User: middleware.CurrentUser(r.Context())})
}

// -------------- SIGN UP ----------------------

func (h *WebHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "signup.html", pageData{User: middleware.CurrentUser(r.Context())})
}

func (h *WebHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	firstName := optionalForm(r, "first_name")
	lastName := optionalForm(r, "last_name")

	if msg := validateUserFields(username, email, firstName, lastName); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validatePassword(password); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.Store.CreateUser(r.Context(), store.CreateUserParams{
		Username:       username,
		Email:          email,
		HashedPassword: &hash,
		FirstName:      firstName,
		LastName:       lastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			utils.JSONError(w, http.StatusConflict, fmt.Sprintf("Username '%s' is already taken", username))
		case errors.Is(err, store.ErrEmailTaken):
			utils.JSONError(w, http.StatusConflict, fmt.Sprintf("Email '%s' is already registered", email))
		default:
			utils.JSONError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	setSessionCookie(w, user.ID)
	utils.JSON(w, http.StatusCreated, map[string]string{"id": user.ID, "username": user.Username})
}

// -------------- LOGIN ------------------------

func (h *WebHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", pageData{User: middleware.CurrentUser(r.Context())})
}

func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.Store.GetUserByUsername(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !user.HashedPassword.Valid || !auth.VerifyPassword(password, user.HashedPassword.String) {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	setSessionCookie(w, user.ID)
	utils.JSON(w, http.StatusOK, map[string]string{"id": user.ID, "username": user.Username})
}

// -------------- SIGN OUT ----------------------

func (h *WebHandler) Signout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

// -------------- ACCOUNT ----------------------

func (h *WebHandler) Account(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, "account.html", pageData{User: user})
}

func setSessionCookie(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    userID,
		Path:     "/",
		HttpOnly: true,
	})
}

func optionalForm(r *http.Request, name string) *string {
	v := r.PostFormValue(name)
	if v == "" {
		return nil
	}
	return &v
}
