package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/codeatlas/internal/auth"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
	"github.com/vaughan-dsouza/codeatlas/internal/utils"
)

type UserHandler struct {
	Store *store.Store
}

func NewUserHandler(s *store.Store) *UserHandler {
	return &UserHandler{Store: s}
}

// ---------------------- CREATE ----------------------

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string  `json:"username"`
		Email     string  `json:"email"`
		Password  *string `json:"password"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if msg := validateUserFields(body.Username, body.Email, body.FirstName, body.LastName); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}

	params := store.CreateUserParams{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}

	// Password is optional here: accounts created without one cannot log in
	// until an admin sets a credential.
	if body.Password != nil {
		if msg := validatePassword(*body.Password); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
		hash, err := auth.HashPassword(*body.Password)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		params.HashedPassword = &hash
	}

	user, err := h.Store.CreateUser(r.Context(), params)
	if err != nil {
		h.writeUserError(w, err, body.Username, body.Email, "")
		return
	}

	utils.JSON(w, http.StatusCreated, user)
}

// ---------------------- GET ONE ----------------------

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "", "", id)
		return
	}

	if utils.BoolParam(r, "load_enrollments") {
		byUser, err := h.Store.EnrollmentsForUsers(r.Context(), []string{user.ID})
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		user.Enrollments = byUser[user.ID]
	}

	utils.JSON(w, http.StatusOK, user)
}

// ---------------------- LIST ----------------------

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit := utils.Pagination(r)

	users, err := h.Store.ListUsers(r.Context(), skip, limit)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if utils.BoolParam(r, "load_enrollments") && len(users) > 0 {
		ids := make([]string, len(users))
		for i := range users {
			ids[i] = users[i].ID
		}
		byUser, err := h.Store.EnrollmentsForUsers(r.Context(), ids)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for i := range users {
			users[i].Enrollments = byUser[users[i].ID]
		}
	}

	utils.JSON(w, http.StatusOK, users)
}

// ---------------------- UPDATE ----------------------

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Username != nil {
		if msg := validateUsername(*body.Username); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if body.Email != nil {
		if msg := validateEmail(*body.Email); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if body.FirstName != nil {
		if msg := validateName("first_name", *body.FirstName, maxFirstNameLen); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if body.LastName != nil {
		if msg := validateName("last_name", *body.LastName, maxLastNameLen); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
	}

	user, err := h.Store.UpdateUser(r.Context(), id, store.UpdateUserParams{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		username, email := "", ""
		if body.Username != nil {
			username = *body.Username
		}
		if body.Email != nil {
			email = *body.Email
		}
		h.writeUserError(w, err, username, email, id)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// ---------------------- DELETE ----------------------

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		h.writeUserError(w, err, "", "", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, username, email, id string) {
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		utils.JSONError(w, http.StatusConflict, fmt.Sprintf("Username '%s' is already taken", username))
	case errors.Is(err, store.ErrEmailTaken):
		utils.JSONError(w, http.StatusConflict, fmt.Sprintf("Email '%s' is already registered", email))
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("User with id '%s' not found", id))
	default:
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func validateUserFields(username, email string, firstName, lastName *string) string {
	if msg := validateUsername(username); msg != "" {
		return msg
	}
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	if firstName != nil {
		if msg := validateName("first_name", *firstName, maxFirstNameLen); msg != "" {
			return msg
		}
	}
	if lastName != nil {
		if msg := validateName("last_name", *lastName, maxLastNameLen); msg != "" {
			return msg
		}
	}
	return ""
}
