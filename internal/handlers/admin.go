package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/codeatlas/internal/auth"
	"github.com/vaughan-dsouza/codeatlas/internal/middleware"
	"github.com/vaughan-dsouza/codeatlas/internal/models"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
)

// AdminHandler serves the hand-written admin panel: session login plus
// list/detail/create/edit/delete views over users, courses, and enrollments.
// Auto-managed columns (ids, timestamps, relationship collections) never
// appear in forms, and the password hash never appears anywhere.
type AdminHandler struct {
	Store  *store.Store
	Tokens *auth.Tokens
	Tmpl   *template.Template
}

func NewAdminHandler(s *store.Store, tokens *auth.Tokens, tmpl *template.Template) *AdminHandler {
	return &AdminHandler{Store: s, Tokens: tokens, Tmpl: tmpl}
}

func (h *AdminHandler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

// ---------------------- SESSION ----------------------

type adminLoginData struct {
	Error string
}

func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "admin_login.html", adminLoginData{})
}

// Login checks username and password against the user table. Password
// verification is mandatory here regardless of how the account was created.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "admin_login.html", adminLoginData{Error: "Invalid form data"})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.render(w, http.StatusBadRequest, "admin_login.html", adminLoginData{Error: "Username and password are required"})
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), username)
	if err != nil || !user.HashedPassword.Valid || !auth.VerifyPassword(password, user.HashedPassword.String) {
		h.render(w, http.StatusUnauthorized, "admin_login.html", adminLoginData{Error: "Invalid username or password"})
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		h.render(w, http.StatusInternalServerError, "admin_login.html", adminLoginData{Error: "Internal error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

// ---------------------- DASHBOARD ----------------------

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, courses, enrollments, err := h.Store.EntityCounts(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "admin_dashboard.html", struct {
		Admin           *models.User
		UserCount       int64
		CourseCount     int64
		EnrollmentCount int64
	}{middleware.AdminUser(r.Context()), users, courses, enrollments})
}

// ---------------------- USERS ----------------------

type adminUserForm struct {
	Title     string
	Action    string
	Error     string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func (h *AdminHandler) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context(), 0, 500)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "admin_users.html", struct{ Users []models.User }{users})
}

func (h *AdminHandler) UserDetail(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	byUser, err := h.Store.EnrollmentsForUsers(r.Context(), []string{user.ID})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	user.Enrollments = byUser[user.ID]

	h.render(w, http.StatusOK, "admin_user_detail.html", struct{ User *models.User }{user})
}

func (h *AdminHandler) UserNewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "admin_user_form.html", adminUserForm{Title: "New user", Action: "/admin/users/new"})
}

func (h *AdminHandler) UserCreate(w http.ResponseWriter, r *http.Request) {
	form, params, msg := h.userFormParams(r, "")
	form.Title = "New user"
	form.Action = "/admin/users/new"
	if msg != "" {
		form.Error = msg
		h.render(w, http.StatusBadRequest, "admin_user_form.html", form)
		return
	}

	// No password means the account has no credential and cannot log in.
	_, err := h.Store.CreateUser(r.Context(), store.CreateUserParams{
		Username:       form.Username,
		Email:          form.Email,
		HashedPassword: params.HashedPassword,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
	})
	if err != nil {
		h.renderUserFormError(w, form, err)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusFound)
}

func (h *AdminHandler) UserEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.Store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	form := adminUserForm{
		Title:    "Edit user",
		Action:   "/admin/users/" + id + "/edit",
		Username: user.Username,
		Email:    user.Email,
	}
	if user.FirstName != nil {
		form.FirstName = *user.FirstName
	}
	if user.LastName != nil {
		form.LastName = *user.LastName
	}
	h.render(w, http.StatusOK, "admin_user_form.html", form)
}

func (h *AdminHandler) UserUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, params, msg := h.userFormParams(r, id)
	form.Title = "Edit user"
	form.Action = "/admin/users/" + id + "/edit"
	if msg != "" {
		form.Error = msg
		h.render(w, http.StatusBadRequest, "admin_user_form.html", form)
		return
	}

	_, err := h.Store.UpdateUser(r.Context(), id, params)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderUserFormError(w, form, err)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusFound)
}

func (h *AdminHandler) UserDelete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/users", http.StatusFound)
}

// userFormParams parses the shared user form. The password field is optional:
// when supplied it is hashed, when blank the stored credential is untouched.
func (h *AdminHandler) userFormParams(r *http.Request, editID string) (adminUserForm, store.UpdateUserParams, string) {
	_ = r.ParseForm()

	form := adminUserForm{
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
	}
	password := r.PostFormValue("password")

	var firstName, lastName *string
	if editID == "" {
		firstName = optionalForm(r, "first_name")
		lastName = optionalForm(r, "last_name")
	} else {
		// On edit a cleared field is written back, not skipped.
		firstName = &form.FirstName
		lastName = &form.LastName
	}

	if msg := validateUserFields(form.Username, form.Email, firstName, lastName); msg != "" {
		return form, store.UpdateUserParams{}, msg
	}

	params := store.UpdateUserParams{
		Username:  &form.Username,
		Email:     &form.Email,
		FirstName: firstName,
		LastName:  lastName,
	}

	if password != "" {
		if msg := validatePassword(password); msg != "" {
			return form, store.UpdateUserParams{}, msg
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return form, store.UpdateUserParams{}, "internal error"
		}
		params.HashedPassword = &hash
	}

	return form, params, ""
}

func (h *AdminHandler) renderUserFormError(w http.ResponseWriter, form adminUserForm, err error) {
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		form.Error = fmt.Sprintf("Username '%s' is already taken", form.Username)
		h.render(w, http.StatusConflict, "admin_user_form.html", form)
	case errors.Is(err, store.ErrEmailTaken):
		form.Error = fmt.Sprintf("Email '%s' is already registered", form.Email)
		h.render(w, http.StatusConflict, "admin_user_form.html", form)
	default:
		form.Error = "Internal error"
		h.render(w, http.StatusInternalServerError, "admin_user_form.html", form)
	}
}

// ---------------------- COURSES ----------------------

type adminCourseForm struct {
	Title       string
	Action      string
	Error       string
	CourseTitle string
	Description string
}

func (h *AdminHandler) CoursesList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Store.ListCourses(r.Context(), 0, 500)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "admin_courses.html", struct{ Courses []models.Course }{courses})
}

func (h *AdminHandler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	course, err := h.Store.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	byCourse, err := h.Store.EnrollmentsForCourses(r.Context(), []string{course.ID})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	course.Enrollments = byCourse[course.ID]

	h.render(w, http.StatusOK, "admin_course_detail.html", struct{ Course *models.Course }{course})
}

func (h *AdminHandler) CourseNewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "admin_course_form.html", adminCourseForm{Title: "New course", Action: "/admin/courses/new"})
}

func (h *AdminHandler) CourseCreate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := adminCourseForm{
		Title:       "New course",
		Action:      "/admin/courses/new",
		CourseTitle: r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
	}

	if msg := validateTitle(form.CourseTitle); msg != "" {
		form.Error = msg
		h.render(w, http.StatusBadRequest, "admin_course_form.html", form)
		return
	}
	if msg := validateDescription(form.Description); msg != "" {
		form.Error = msg
		h.render(w, http.StatusBadRequest, "admin_course_form.html", form)
		return
	}

	_, err := h.Store.CreateCourse(r.Context(), store.CreateCourseParams{
		Title:       form.CourseTitle,
		Description: optionalForm(r, "description"),
	})
	if err != nil {
		h.renderCourseFormError(w, form, err)
		return
	}

	http.Redirect(w, r, "/admin/courses", http.StatusFound)
}

func (h *AdminHandler) CourseEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	course, err := h.Store.GetCourse(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	form := adminCourseForm{
		Title:       "Edit course",
		Action:      "/admin/courses/" + id + "/edit",
		CourseTitle: course.Title,
	}
	if course.Description != nil {
		form.Description = *course.Description
	}
	h.render(w, http.StatusOK, "admin_course_form.html", form)
}

func (h *AdminHandler) CourseUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	form := adminCourseForm{
		Title:       "Edit course",
		Action:      "/admin/courses/" + id + "/edit",
		CourseTitle: r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
	}

	if msg := validateTitle(form.CourseTitle); msg != "" {
		form.Error = msg
		h.render(w, http.StatusBadRequest, "admin_course_form.html", form)
		return
	}
	if msg := validateDescription(form.Description); msg != "" {
		form.Error = msg
		h.render(w, http.StatusBadRequest, "admin_course_form.html", form)
		return
	}

	_, err := h.Store.UpdateCourse(r.Context(), id, store.UpdateCourseParams{
		Title:       &form.CourseTitle,
		Description: optionalForm(r, "description"),
	})
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderCourseFormError(w, form, err)
		return
	}

	http.Redirect(w, r, "/admin/courses", http.StatusFound)
}

func (h *AdminHandler) CourseDelete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteCourse(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/courses", http.StatusFound)
}

func (h *AdminHandler) renderCourseFormError(w http.ResponseWriter, form adminCourseForm, err error) {
	if errors.Is(err, store.ErrTitleTaken) {
		form.Error = fmt.Sprintf("Course with title '%s' already exists", form.CourseTitle)
		h.render(w, http.StatusConflict, "admin_course_form.html", form)
		return
	}
	form.Error = "Internal error"
	h.render(w, http.StatusInternalServerError, "admin_course_form.html", form)
}

// ---------------------- ENROLLMENTS ----------------------

type adminEnrollmentForm struct {
	Title    string
	Action   string
	Error    string
	UserID   string
	CourseID string
	Users    []models.User
	Courses  []models.Course
}

func (h *AdminHandler) EnrollmentsList(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.Store.ListEnrollments(r.Context(), 0, 500)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "admin_enrollments.html", struct{ Enrollments []models.Enrollment }{enrollments})
}

func (h *AdminHandler) EnrollmentNewForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.enrollmentFormChoices(w, r, adminEnrollmentForm{Title: "New enrollment", Action: "/admin/enrollments/new"})
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "admin_enrollment_form.html", form)
}

func (h *AdminHandler) EnrollmentCreate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := adminEnrollmentForm{
		Title:    "New enrollment",
		Action:   "/admin/enrollments/new",
		UserID:   r.PostFormValue("user_id"),
		CourseID: r.PostFormValue("course_id"),
	}

	_, err := h.Store.CreateEnrollment(r.Context(), form.UserID, form.CourseID)
	if err != nil {
		h.renderEnrollmentFormError(w, r, form, err)
		return
	}

	http.Redirect(w, r, "/admin/enrollments", http.StatusFound)
}

func (h *AdminHandler) EnrollmentEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	enrollment, err := h.Store.GetEnrollment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	form, ok := h.enrollmentFormChoices(w, r, adminEnrollmentForm{
		Title:    "Edit enrollment",
		Action:   "/admin/enrollments/" + id + "/edit",
		UserID:   enrollment.UserID,
		CourseID: enrollment.CourseID,
	})
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "admin_enrollment_form.html", form)
}

func (h *AdminHandler) EnrollmentUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	form := adminEnrollmentForm{
		Title:    "Edit enrollment",
		Action:   "/admin/enrollments/" + id + "/edit",
		UserID:   r.PostFormValue("user_id"),
		CourseID: r.PostFormValue("course_id"),
	}

	_, err := h.Store.UpdateEnrollment(r.Context(), id, form.UserID, form.CourseID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderEnrollmentFormError(w, r, form, err)
		return
	}

	http.Redirect(w, r, "/admin/enrollments", http.StatusFound)
}

func (h *AdminHandler) EnrollmentDelete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteEnrollment(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/enrollments", http.StatusFound)
}

// enrollmentFormChoices loads the user and course options for the select
// inputs. Returns false after writing an error response.
func (h *AdminHandler) enrollmentFormChoices(w http.ResponseWriter, r *http.Request, form adminEnrollmentForm) (adminEnrollmentForm, bool) {
	users, err := h.Store.ListUsers(r.Context(), 0, 500)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return form, false
	}
	courses, err := h.Store.ListCourses(r.Context(), 0, 500)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return form, false
	}
	form.Users = users
	form.Courses = courses
	return form, true
}

func (h *AdminHandler) renderEnrollmentFormError(w http.ResponseWriter, r *http.Request, form adminEnrollmentForm, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrDuplicateEnrollment):
		form.Error = "User is already enrolled in that course"
		status = http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		form.Error = "Selected user or course no longer exists"
		status = http.StatusBadRequest
	default:
		form.Error = "Internal error"
	}

	form, ok := h.enrollmentFormChoices(w, r, form)
	if !ok {
		return
	}
	h.render(w, status, "admin_enrollment_form.html", form)
}
