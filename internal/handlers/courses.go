package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/codeatlas/internal/store"
	"github.com/vaughan-dsouza/codeatlas/internal/utils"
)

type CourseHandler struct {
	Store *store.Store
}

func NewCourseHandler(s *store.Store) *CourseHandler {
	return &CourseHandler{Store: s}
}

// ---------------------- CREATE ----------------------

func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if msg := validateTitle(body.Title); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}
	if body.Description != nil {
		if msg := validateDescription(*body.Description); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
	}

	course, err := h.Store.CreateCourse(r.Context(), store.CreateCourseParams{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		h.writeCourseError(w, err, body.Title, "")
		return
	}

	utils.JSON(w, http.StatusCreated, course)
}

// ---------------------- GET ONE ----------------------

func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	course, err := h.Store.GetCourse(r.Context(), id)
	if err != nil {
		h.writeCourseError(w, err, "", id)
		return
	}

	if utils.BoolParam(r, "load_enrollments") {
		byCourse, err := h.Store.EnrollmentsForCourses(r.Context(), []string{course.ID})
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		course.Enrollments = byCourse[course.ID]
	}

	utils.JSON(w, http.StatusOK, course)
}

// ---------------------- LIST ----------------------

func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	skip, limit := utils.Pagination(r)

	courses, err := h.Store.ListCourses(r.Context(), skip, limit)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, courses)
}

// ---------------------- UPDATE ----------------------

func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Title != nil {
		if msg := validateTitle(*body.Title); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if body.Description != nil {
		if msg := validateDescription(*body.Description); msg != "" {
			utils.JSONError(w, http.StatusBadRequest, msg)
			return
		}
	}

	course, err := h.Store.UpdateCourse(r.Context(), id, store.UpdateCourseParams{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		title := ""
		if body.Title != nil {
			title = *body.Title
		}
		h.writeCourseError(w, err, title, id)
		return
	}

	utils.JSON(w, http.StatusOK, course)
}

// ---------------------- DELETE ----------------------

func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteCourse(r.Context(), id); err != nil {
		h.writeCourseError(w, err, "", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) writeCourseError(w http.ResponseWriter, err error, title, id string) {
	switch {
	case errors.Is(err, store.ErrTitleTaken):
		utils.JSONError(w, http.StatusConflict, fmt.Sprintf("Course with title '%s' already exists", title))
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("Course with id '%s' not found", id))
	default:
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}
