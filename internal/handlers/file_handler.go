package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cloudvault/cloudvault/internal/models"
	"github.com/cloudvault/cloudvault/internal/storage"
)

type FileHandler struct {
	files   *mongo.Collection
	objects *minio.Client
}

func NewFileHandler(db *mongo.Database, objects *minio.Client) *FileHandler {
	return &FileHandler{
		files:   db.Collection("files"),
		objects: objects,
	}
}

func objectName(owner, name string) string {
	return fmt.Sprintf("%s/%s", owner, name)
}

// List returns the caller's file records.
func (h *FileHandler) List(c *fiber.Ctx) error {
	owner := c.Locals("username").(string)

	cursor, err := h.files.Find(c.Context(), bson.M{"owner": owner})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch files"})
	}
	defer cursor.Close(c.Context())

	files := []models.FileRecord{}
	if err := cursor.All(c.Context(), &files); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to decode files"})
	}
	return c.JSON(fiber.Map{"files": files})
}

// Upload stores the file bytes and upserts the metadata record keyed by
// name, so re-uploading a name replaces the old version (latest-wins).
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	owner := c.Locals("username").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to retrieve file"})
	}
	if fileHeader.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File name must not be empty"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to open file"})
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read file"})
	}

	record := models.FileRecord{
		Name:         fileHeader.Filename,
		Size:         int64(len(fileBytes)),
		LastModified: time.Now(),
		VersionID:    uuid.NewString(),
		Owner:        owner,
	}

	// Store bytes and metadata in parallel; the metadata upsert keyed on
	// (owner, name) is what makes the upload latest-wins.
	objectErrChan := make(chan error, 1)
	metadataErrChan := make(chan error, 1)

	go func() {
		_, err := h.objects.PutObject(
			context.Background(),
			storage.Bucket,
			objectName(owner, record.Name),
			bytes.NewReader(fileBytes),
			record.Size,
			minio.PutObjectOptions{ContentType: fileHeader.Header.Get("Content-Type")},
		)
		objectErrChan <- err
	}()

	go func() {
		_, err := h.files.ReplaceOne(
			context.Background(),
			bson.M{"owner": owner, "name": record.Name},
			record,
			options.Replace().SetUpsert(true),
		)
		metadataErrChan <- err
	}()

	objectErr := <-objectErrChan
	metadataErr := <-metadataErrChan

	if objectErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file to storage"})
	}
	if metadataErr != nil {
		// Clean up the orphaned object so list stays consistent.
		go func() {
			err := h.objects.RemoveObject(context.Background(), storage.Bucket, objectName(owner, record.Name), minio.RemoveObjectOptions{})
			if err != nil {
				log.Printf("Failed to clean up object after metadata error: %v", err)
			}
		}()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save file metadata"})
	}

	return c.JSON(fiber.Map{"message": "File uploaded successfully", "file": record})
}

// Delete removes one file by name. Deleting a name that does not exist is a
// reportable not-found, not a silent success.
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	owner := c.Locals("username").(string)
	name, err := fiberParamName(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file name"})
	}

	result, err := h.files.DeleteOne(c.Context(), bson.M{"owner": owner, "name": name})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete file"})
	}
	if result.DeletedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}

	if err := h.objects.RemoveObject(c.Context(), storage.Bucket, objectName(owner, name), minio.RemoveObjectOptions{}); err != nil {
		log.Printf("Failed to remove object %s: %v", objectName(owner, name), err)
	}

	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}

// Download hands out a short-lived presigned link for the object.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	owner := c.Locals("username").(string)
	name, err := fiberParamName(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file name"})
	}

	var record models.FileRecord
	err = h.files.FindOne(c.Context(), bson.M{"owner": owner, "name": name}).Decode(&record)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}

	expiry := 10 * time.Minute
	url, err := h.objects.PresignedGetObject(c.Context(), storage.Bucket, objectName(owner, name), expiry, nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate download link"})
	}

	return c.JSON(fiber.Map{"url": url.String(), "expires_in": expiry.String()})
}

// fiberParamName decodes the :name route parameter, which arrives
// percent-encoded for names containing spaces or slashes.
func fiberParamName(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("name"))
}
