package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"project-management-api/config"
	"project-management-api/db"
	"project-management-api/handlers"
	"project-management-api/logging"
	"project-management-api/middleware"
	"project-management-api/policy"
	"project-management-api/response"
	"project-management-api/services"
	"project-management-api/utils"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func newRouter(cfg *config.Config, store *db.Store) http.Handler {
	pl := policy.Policy{OpenTaskRead: cfg.OpenTaskRead}

	userService := services.NewUserService(store.Users)
	projectService := services.NewProjectService(store.Projects)
	taskService := services.NewTaskService(store.Tasks)
	commentService := services.NewCommentService(store.Comments)
	actionService := services.NewActionService(store.Actions, store.Tasks)

	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService, actionService, pl)
	projectHandler := handlers.NewProjectHandler(projectService, actionService, pl)
	taskHandler := handlers.NewTaskHandler(taskService, projectService, actionService, pl)
	commentHandler := handlers.NewCommentHandler(commentService, taskService, projectService, actionService, pl)
	actionHandler := handlers.NewActionHandler(actionService, projectService, pl)

	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, http.StatusOK, "Project Management API is running")
	}).Methods("GET")

	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.JWTAuth(userService.GetByID))

	protected.HandleFunc("/auth/profile", authHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/users", userHandler.GetUsers).Methods("GET")
	protected.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")
	protected.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods("PUT")
	protected.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods("DELETE")

	protected.HandleFunc("/projects", projectHandler.GetProjects).Methods("GET")
	protected.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	protected.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	protected.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PUT")
	protected.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")

	protected.HandleFunc("/tasks/project/{projectId}", taskHandler.GetTasks).Methods("GET")
	protected.HandleFunc("/tasks/project/{projectId}", taskHandler.CreateTask).Methods("POST")
	protected.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods("GET")
	protected.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	protected.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")

	protected.HandleFunc("/comments/task/{taskId}", commentHandler.GetComments).Methods("GET")
	protected.HandleFunc("/comments/task/{taskId}", commentHandler.CreateComment).Methods("POST")
	protected.HandleFunc("/comments/{id}", commentHandler.UpdateComment).Methods("PUT")
	protected.HandleFunc("/comments/{id}", commentHandler.DeleteComment).Methods("DELETE")

	protected.HandleFunc("/actions", actionHandler.GetAllActions).Methods("GET")
	protected.HandleFunc("/actions/project/{projectId}", actionHandler.GetProjectActions).Methods("GET")
	protected.HandleFunc("/actions/me", actionHandler.GetMyActions).Methods("GET")
	protected.HandleFunc("/actions/user/{userId}", actionHandler.GetUserActions).Methods("GET")

	return enableCORS(r)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("")
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}

	logging.InitLogger(cfg.LogFile)
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Project Management API...")

	utils.SetJWTSecret(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)

	if err := store.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: newRouter(cfg, store),
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Event ID: SERVICE_STOPPING, Description: Shutdown signal received.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: DB_DISCONNECT_ERROR, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Server stopped.")
}
