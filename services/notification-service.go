package services

import (
	"fmt"
	"time"

	"dashboard-service/models"
	"dashboard-service/repositories"
)

// NotificationService exposes the per-user notification feed on top of
// the Cassandra repository.
type NotificationService struct {
	repo *repositories.NotificationRepo
}

func NewNotificationService(repo *repositories.NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

func (ns *NotificationService) CreateNotification(userID, username, message string) error {
	if userID == "" || username == "" || message == "" {
		return fmt.Errorf("userID, username, and message are required")
	}
	notification := models.Notification{
		UserID:    userID,
		Username:  username,
		Message:   message,
		CreatedAt: time.Now(),
		IsRead:    false,
	}
	return ns.repo.CreateNotification(&notification)
}

func (ns *NotificationService) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	return ns.repo.GetNotificationsByUsername(username)
}

func (ns *NotificationService) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	if username == "" || notificationID == "" || createdAt == "" {
		return fmt.Errorf("username, notificationID, and createdAt are required")
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("invalid createdAt format: %v", err)
	}
	return ns.repo.MarkNotificationAsRead(username, notificationID, parsed)
}

func (ns *NotificationService) DeleteNotification(username, notificationID, createdAt string) error {
	if username == "" || notificationID == "" || createdAt == "" {
		return fmt.Errorf("username, notificationID, and createdAt are required")
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("invalid createdAt format: %v", err)
	}
	return ns.repo.DeleteNotification(username, notificationID, parsed)
}
