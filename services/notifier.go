package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"dashboard-service/logging"
	"dashboard-service/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Notifier delivers best-effort messages to the users linked to a set of
// team members. The workflow core only depends on this interface, so the
// delivery mechanism stays swappable.
type Notifier interface {
	NotifyMembers(ctx context.Context, memberIDs []primitive.ObjectID, message string) error
}

// LogNotifier is the stub implementation: it only records that a
// notification would have been sent.
type LogNotifier struct{}

func (LogNotifier) NotifyMembers(ctx context.Context, memberIDs []primitive.ObjectID, message string) error {
	logging.Logger.Infof("Event ID: NOTIFY_STUB, Description: Would notify members %v: %s", memberIDs, message)
	return nil
}

// MemberNotifier resolves team members to their user accounts and writes
// a notification into the feed for each.
type MemberNotifier struct {
	UsersCollection *mongo.Collection
	Notifications   *NotificationService
}

func NewMemberNotifier(users *mongo.Collection, notifications *NotificationService) *MemberNotifier {
	return &MemberNotifier{UsersCollection: users, Notifications: notifications}
}

func (n *MemberNotifier) NotifyMembers(ctx context.Context, memberIDs []primitive.ObjectID, message string) error {
	if len(memberIDs) == 0 {
		return nil
	}

	cursor, err := n.UsersCollection.Find(ctx, bson.M{"teamMemberId": bson.M{"$in": memberIDs}})
	if err != nil {
		return fmt.Errorf("failed to resolve users for members: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return fmt.Errorf("failed to decode users for members: %v", err)
	}

	var firstErr error
	for _, user := range users {
		if err := n.Notifications.CreateNotification(user.ID.Hex(), user.Username, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HTTPNotifier posts notifications to an external notifications
// deployment, guarded by a circuit breaker so a dead notifier cannot
// drag request handling down with it.
type HTTPNotifier struct {
	BaseURL         string
	Client          *http.Client
	Breaker         *gobreaker.CircuitBreaker
	UsersCollection *mongo.Collection
}

func NewHTTPNotifier(baseURL string, client *http.Client, breaker *gobreaker.CircuitBreaker, users *mongo.Collection) *HTTPNotifier {
	return &HTTPNotifier{BaseURL: baseURL, Client: client, Breaker: breaker, UsersCollection: users}
}

func (n *HTTPNotifier) NotifyMembers(ctx context.Context, memberIDs []primitive.ObjectID, message string) error {
	if len(memberIDs) == 0 {
		return nil
	}

	cursor, err := n.UsersCollection.Find(ctx, bson.M{"teamMemberId": bson.M{"$in": memberIDs}})
	if err != nil {
		return fmt.Errorf("failed to resolve users for members: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return fmt.Errorf("failed to decode users for members: %v", err)
	}

	var firstErr error
	for _, user := range users {
		payload, err := json.Marshal(map[string]string{
			"userId":   user.ID.Hex(),
			"username": user.Username,
			"message":  message,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		_, err = n.Breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.BaseURL+"/api/notifications/add", bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := n.Client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				return nil, fmt.Errorf("notifications service returned %s", resp.Status)
			}
			return nil, nil
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
