package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/vaughan-dsouza/codeatlas/internal/auth"
	"github.com/vaughan-dsouza/codeatlas/internal/config"
	"github.com/vaughan-dsouza/codeatlas/internal/db"
	"github.com/vaughan-dsouza/codeatlas/internal/handlers"
	"github.com/vaughan-dsouza/codeatlas/internal/middleware"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
	"github.com/vaughan-dsouza/codeatlas/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DB)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer dbConn.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(context.Background(), dbConn); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	s := store.New(dbConn)
	tokens := auth.NewTokens(cfg.JWT)

	h, err := handlers.NewHandler(s, tokens)
	if err != nil {
		log.Fatalf("handlers: %v", err)
	}

	staticFS, err := web.Static()
	if err != nil {
		log.Fatalf("static assets: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Session(s))

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Web auth
	r.Get("/", h.Web.Home)
	r.Get("/signup", h.Web.SignupPage)
	r.Post("/signup", h.Web.Signup)
	r.Get("/login", h.Web.LoginPage)
	r.Post("/login", h.Web.Login)
	r.Get("/signout", h.Web.Signout)
	r.Get("/account", h.Web.Account)

	// REST API
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/users", h.Users.CreateUser)
		r.Get("/users", h.Users.ListUsers)
		r.Get("/users/{id}", h.Users.GetUser)
		r.Patch("/users/{id}", h.Users.UpdateUser)
		r.Delete("/users/{id}", h.Users.DeleteUser)

		r.Post("/courses", h.Courses.CreateCourse)
		r.Get("/courses", h.Courses.ListCourses)
		r.Get("/courses/{id}", h.Courses.GetCourse)
		r.Patch("/courses/{id}", h.Courses.UpdateCourse)
		r.Delete("/courses/{id}", h.Courses.DeleteCourse)
	})

	// Admin panel
	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", h.Admin.LoginPage)
		r.Post("/login", h.Admin.Login)
		r.Get("/logout", h.Admin.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(tokens, s))

			r.Get("/", h.Admin.Dashboard)

			r.Get("/users", h.Admin.UsersList)
			r.Get("/users/new", h.Admin.UserNewForm)
			r.Post("/users/new", h.Admin.UserCreate)
			r.Get("/users/{id}", h.Admin.UserDetail)
			r.Get("/users/{id}/edit", h.Admin.UserEditForm)
			r.Post("/users/{id}/edit", h.Admin.UserUpdate)
			r.Post("/users/{id}/delete", h.Admin.UserDelete)

			r.Get("/courses", h.Admin.CoursesList)
			r.Get("/courses/new", h.Admin.CourseNewForm)
			r.Post("/courses/new", h.Admin.CourseCreate)
			r.Get("/courses/{id}", h.Admin.CourseDetail)
			r.Get("/courses/{id}/edit", h.Admin.CourseEditForm)
			r.Post("/courses/{id}/edit", h.Admin.CourseUpdate)
			r.Post("/courses/{id}/delete", h.Admin.CourseDelete)

			r.Get("/enrollments", h.Admin.EnrollmentsList)
			r.Get("/enrollments/new", h.Admin.EnrollmentNewForm)
			r.Post("/enrollments/new", h.Admin.EnrollmentCreate)
			r.Get("/enrollments/{id}/edit", h.Admin.EnrollmentEditForm)
			r.Post("/enrollments/{id}/edit", h.Admin.EnrollmentUpdate)
			r.Post("/enrollments/{id}/delete", h.Admin.EnrollmentDelete)
		})
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
