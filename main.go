package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard-service/handlers"
	"dashboard-service/logging"
	"dashboard-service/middleware"
	"dashboard-service/repositories"
	"dashboard-service/services"
	"dashboard-service/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createUsernameIndex(collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"username": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on username: %v", err)
	}
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
	logging.InitLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// MongoDB
	mongoURI := env("MONGO_URI", "mongodb://localhost:27017")
	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Database connection failed:", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("MongoDB connection error:", err)
	}
	logging.Logger.Info("Event ID: MONGO_CONNECTED, Description: Connected to MongoDB.")

	db := client.Database(env("MONGO_DB", "dashboard_db"))
	usersCollection := db.Collection("users")
	projectsCollection := db.Collection("projects")
	tasksCollection := db.Collection("tasks")
	subtasksCollection := db.Collection("subtasks")
	membersCollection := db.Collection("team_members")
	meetingsCollection := db.Collection("meetings")
	documentsCollection := db.Collection("documents")
	requestsCollection := db.Collection("change_requests")

	if err := createUsernameIndex(usersCollection); err != nil {
		log.Fatal(err)
	}

	// Neo4j dependency graph
	neo4jURI := env("NEO4J_URI", "bolt://localhost:7687")
	driver, err := neo4j.NewDriverWithContext(neo4jURI,
		neo4j.BasicAuth(env("NEO4J_USER", "neo4j"), env("NEO4J_PASS", "password"), ""))
	if err != nil {
		log.Fatal("Neo4j connection failed:", err)
	}
	defer driver.Close(context.TODO())
	logging.Logger.Info("Event ID: NEO4J_CONNECTED, Description: Connected to Neo4j.")

	// Notification delivery. Cassandra backs the in-process feed; if an
	// external notifications deployment is configured, deliveries go over
	// HTTP behind a circuit breaker instead.
	var notifier services.Notifier = services.LogNotifier{}
	var notificationHandler *handlers.NotificationHandler

	notificationRepo, err := repositories.NewNotificationRepo()
	if err != nil {
		logging.Logger.Warnf("Event ID: CASS_UNAVAILABLE, Description: Cassandra unavailable, notifications will only be logged: %v", err)
	} else {
		defer notificationRepo.CloseSession()
		notificationRepo.CreateTable()

		notificationService := services.NewNotificationService(notificationRepo)
		notificationHandler = handlers.NewNotificationHandler(notificationService)
		notifier = services.NewMemberNotifier(usersCollection, notificationService)
	}

	if notificationsURL := os.Getenv("NOTIFICATIONS_URL"); notificationsURL != "" {
		breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "notifications",
			Timeout: 10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
		})
		notifier = services.NewHTTPNotifier(notificationsURL, utils.NewHTTPClient(), breaker, usersCollection)
	}

	// Services
	workflowService := services.NewWorkflowService(driver)
	accessService := &services.AccessService{
		UsersCollection:    usersCollection,
		TasksCollection:    tasksCollection,
		SubtasksCollection: subtasksCollection,
		MembersCollection:  membersCollection,
	}
	userService := services.NewUserService(usersCollection, membersCollection)
	projectService := services.NewProjectService(projectsCollection, tasksCollection, membersCollection)
	teamService := services.NewTeamService(membersCollection, projectsCollection, tasksCollection, subtasksCollection, usersCollection)
	taskService := services.NewTaskService(tasksCollection, subtasksCollection, projectsCollection, membersCollection, workflowService, notifier)
	meetingService := services.NewMeetingService(meetingsCollection, projectsCollection, notifier)
	subtaskService := services.NewSubtaskService(subtasksCollection, tasksCollection, meetingService, notifier)
	documentService := services.NewDocumentService(documentsCollection, projectsCollection)
	scheduleService := services.NewScheduleService(tasksCollection)
	changeRequestService := services.NewChangeRequestService(client, requestsCollection, tasksCollection, subtasksCollection, usersCollection, notifier)
	reportService := services.NewReportService(projectService, taskService, teamService, meetingService, changeRequestService)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService, accessService)
	taskHandler := handlers.NewTaskHandler(taskService, accessService)
	subtaskHandler := handlers.NewSubtaskHandler(subtaskService)
	teamHandler := handlers.NewTeamHandler(teamService)
	meetingHandler := handlers.NewMeetingHandler(meetingService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	changeRequestHandler := handlers.NewChangeRequestHandler(changeRequestService, accessService)
	reportHandler := handlers.NewReportHandler(reportService)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)

	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/api/users/register", userHandler.Register).Methods("POST")
	r.HandleFunc("/api/users/login", userHandler.Login).Methods("POST")

	// Authenticated routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/users", userHandler.GetUsers).Methods("GET")
	api.HandleFunc("/users/password", userHandler.ChangePassword).Methods("PUT")
	api.HandleFunc("/users/password/reset", userHandler.ResetPassword).Methods("POST")
	api.HandleFunc("/users/{userId}", userHandler.GetUser).Methods("GET")
	api.HandleFunc("/users/{userId}/member", userHandler.LinkTeamMember).Methods("PUT")

	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects", projectHandler.GetProjects).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.GetProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.UpdateProject).Methods("PUT")
	api.HandleFunc("/projects/{projectId}/archive", projectHandler.ArchiveProject).Methods("POST")
	api.HandleFunc("/projects/{projectId}/restore", projectHandler.RestoreProject).Methods("POST")
	api.HandleFunc("/projects/{projectId}/tasks", taskHandler.GetTasksByProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}/team", teamHandler.GetTeamMembersByProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}/team/leaders", teamHandler.GetTeamLeaders).Methods("GET")
	api.HandleFunc("/projects/{projectId}/meetings", meetingHandler.GetMeetingsByProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}/documents", documentHandler.GetDocumentsByProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}/report", reportHandler.GetProjectReport).Methods("GET")
	api.HandleFunc("/projects/{projectId}/graph", workflowHandler.GetProjectGraph).Methods("GET")

	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/awaiting-approval", taskHandler.GetTasksAwaitingApproval).Methods("GET")
	api.HandleFunc("/tasks/{taskId}", taskHandler.GetTask).Methods("GET")
	api.HandleFunc("/tasks/{taskId}", taskHandler.DeleteTask).Methods("DELETE")
	api.HandleFunc("/tasks/{taskId}/status", taskHandler.UpdateTaskStatus).Methods("PUT")
	api.HandleFunc("/tasks/{taskId}/members", taskHandler.AssignMember).Methods("POST")
	api.HandleFunc("/tasks/{taskId}/members/{memberId}", taskHandler.UnassignMember).Methods("DELETE")
	api.HandleFunc("/tasks/{taskId}/dependencies", taskHandler.AddDependency).Methods("POST")
	api.HandleFunc("/tasks/{taskId}/dependencies/{dependsOnId}", taskHandler.RemoveDependency).Methods("DELETE")
	api.HandleFunc("/tasks/{taskId}/submit-approval", taskHandler.SubmitForApproval).Methods("POST")
	api.HandleFunc("/tasks/{taskId}/approve", taskHandler.ApproveTask).Methods("POST")
	api.HandleFunc("/tasks/{taskId}/reject", taskHandler.RejectTask).Methods("POST")
	api.HandleFunc("/tasks/{taskId}/subtasks", subtaskHandler.GetSubtasksByTask).Methods("GET")
	api.HandleFunc("/tasks/{taskId}/impact", scheduleHandler.AnalyzeImpact).Methods("POST")
	api.HandleFunc("/tasks/{taskId}/dependents", scheduleHandler.GetDependentTasks).Methods("GET")
	api.HandleFunc("/tasks/{taskId}/graph/dependencies", workflowHandler.GetTaskDependencies).Methods("GET")
	api.HandleFunc("/tasks/{taskId}/graph/dependents", workflowHandler.GetTaskDependents).Methods("GET")

	api.HandleFunc("/subtasks", subtaskHandler.CreateSubtask).Methods("POST")
	api.HandleFunc("/subtasks/awaiting-approval", subtaskHandler.GetSubtasksAwaitingApproval).Methods("GET")
	api.HandleFunc("/subtasks/{subtaskId}", subtaskHandler.GetSubtask).Methods("GET")
	api.HandleFunc("/subtasks/{subtaskId}", subtaskHandler.DeleteSubtask).Methods("DELETE")
	api.HandleFunc("/subtasks/{subtaskId}/progress", subtaskHandler.UpdateProgress).Methods("PUT")
	api.HandleFunc("/subtasks/{subtaskId}/members", subtaskHandler.AssignMember).Methods("POST")
	api.HandleFunc("/subtasks/{subtaskId}/report", subtaskHandler.SubmitCompletionReport).Methods("POST")
	api.HandleFunc("/subtasks/{subtaskId}/approve", subtaskHandler.ApproveSubtask).Methods("POST")
	api.HandleFunc("/subtasks/{subtaskId}/reject", subtaskHandler.RejectSubtask).Methods("POST")

	api.HandleFunc("/team/members", teamHandler.AddTeamMember).Methods("POST")
	api.HandleFunc("/team/members/{memberId}", teamHandler.RemoveTeamMember).Methods("DELETE")
	api.HandleFunc("/team/members/{memberId}/reports", teamHandler.GetDirectReports).Methods("GET")
	api.HandleFunc("/team/members/{memberId}/reports-to", teamHandler.SetReportsTo).Methods("PUT")
	api.HandleFunc("/team/members/{memberId}/leader", teamHandler.SetTeamLeader).Methods("PUT")

	api.HandleFunc("/meetings", meetingHandler.CreateMeeting).Methods("POST")
	api.HandleFunc("/meetings/{meetingId}", meetingHandler.GetMeeting).Methods("GET")
	api.HandleFunc("/meetings/{meetingId}/start", meetingHandler.StartMeeting).Methods("POST")
	api.HandleFunc("/meetings/{meetingId}/complete", meetingHandler.CompleteMeeting).Methods("POST")
	api.HandleFunc("/meetings/{meetingId}/cancel", meetingHandler.CancelMeeting).Methods("POST")
	api.HandleFunc("/meetings/{meetingId}/action-items", meetingHandler.AddActionItem).Methods("POST")
	api.HandleFunc("/meetings/{meetingId}/action-items/{itemId}/complete", meetingHandler.CompleteActionItem).Methods("POST")

	api.HandleFunc("/documents", documentHandler.AddDocument).Methods("POST")
	api.HandleFunc("/documents/{documentId}", documentHandler.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{documentId}", documentHandler.DeleteDocument).Methods("DELETE")

	api.HandleFunc("/change-requests", changeRequestHandler.CreateChangeRequest).Methods("POST")
	api.HandleFunc("/change-requests", changeRequestHandler.ListChangeRequests).Methods("GET")
	api.HandleFunc("/change-requests/mine", changeRequestHandler.ListMyChangeRequests).Methods("GET")
	api.HandleFunc("/change-requests/{requestId}", changeRequestHandler.GetChangeRequest).Methods("GET")
	api.HandleFunc("/change-requests/{requestId}/approve", changeRequestHandler.ApproveChangeRequest).Methods("POST")
	api.HandleFunc("/change-requests/{requestId}/reject", changeRequestHandler.RejectChangeRequest).Methods("POST")

	api.HandleFunc("/schedule/apply-shift", scheduleHandler.ApplyShift).Methods("POST")

	if notificationHandler != nil {
		api.HandleFunc("/notifications/add", notificationHandler.AddNotification).Methods("POST")
		api.HandleFunc("/notifications", notificationHandler.GetMyNotifications).Methods("GET")
		api.HandleFunc("/notifications/{notificationId}/read", notificationHandler.MarkAsRead).Methods("PUT")
		api.HandleFunc("/notifications/{notificationId}", notificationHandler.DeleteNotification).Methods("DELETE")
	}

	corsRouter := enableCORS(r)

	srv := &http.Server{
		Addr:         ":" + env("PORT", "8080"),
		Handler:      corsRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("Dashboard service running on http://localhost%s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server shutdown error:", err)
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Dashboard service stopped.")
}

// enableCORS allows the dashboard frontend to call the API from another
// origin.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", env("CORS_ORIGIN", "http://localhost:4200"))
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
