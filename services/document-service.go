package services

import (
	"context"
	"fmt"
	"time"

	"dashboard-service/logging"
	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentService tracks document metadata per project. Files live on
// disk or in object storage; only the path is recorded here.
type DocumentService struct {
	DocumentsCollection *mongo.Collection
	ProjectsCollection  *mongo.Collection
}

func NewDocumentService(documents, projects *mongo.Collection) *DocumentService {
	return &DocumentService{DocumentsCollection: documents, ProjectsCollection: projects}
}

func (s *DocumentService) AddDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.Name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if doc.FilePath == "" {
		return nil, &models.ValidationError{Field: "filePath", Reason: "file path is required"}
	}

	count, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"_id": doc.ProjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check project: %v", err)
	}
	if count == 0 {
		return nil, models.ErrNotFound
	}

	doc.ID = primitive.NewObjectID()
	doc.UploadDate = time.Now()

	if _, err := s.DocumentsCollection.InsertOne(ctx, doc); err != nil {
		return nil, &models.PersistenceError{Op: "add document", Err: err}
	}

	logging.Logger.Infof("Event ID: DOCUMENT_ADDED, Description: Document %s added to project %s", doc.ID.Hex(), doc.ProjectID.Hex())
	return doc, nil
}

func (s *DocumentService) GetDocument(ctx context.Context, documentID primitive.ObjectID) (*models.Document, error) {
	var doc models.Document
	if err := s.DocumentsCollection.FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %v", err)
	}
	return &doc, nil
}

func (s *DocumentService) GetDocumentsByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Document, error) {
	cursor, err := s.DocumentsCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %v", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %v", err)
	}
	return docs, nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, documentID primitive.ObjectID) error {
	result, err := s.DocumentsCollection.DeleteOne(ctx, bson.M{"_id": documentID})
	if err != nil {
		return &models.PersistenceError{Op: "delete document", Err: err}
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
