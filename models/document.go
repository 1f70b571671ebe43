package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Document struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID  `bson:"projectId" json:"projectId"`
	Name        string              `bson:"name" json:"name"`
	FileType    string              `bson:"fileType" json:"fileType"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	FilePath    string              `bson:"filePath" json:"filePath"`
	UploadedBy  *primitive.ObjectID `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	UploadDate  time.Time           `bson:"uploadDate" json:"uploadDate"`
}
