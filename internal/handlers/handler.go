package handlers

import (
	"fmt"

	"github.com/vaughan-dsouza/codeatlas/internal/auth"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
	"github.com/vaughan-dsouza/codeatlas/internal/web"
)

type Handler struct {
	Users   *UserHandler
	Courses *CourseHandler
	Web     *WebHandler
	Admin   *AdminHandler
}

func NewHandler(s *store.Store, tokens *auth.Tokens) (*Handler, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Handler{
		Users:   NewUserHandler(s),
		Courses: NewCourseHandler(s),
		Web:     NewWebHandler(s, tmpl),
		Admin:   NewAdminHandler(s, tokens, tmpl),
	}, nil
}
