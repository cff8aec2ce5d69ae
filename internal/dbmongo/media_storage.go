package dbmongo

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instafeed/internal/common"
)

// ImageStore keeps post and profile images in GridFS. Image references in
// post and user documents are hex object ids into this bucket.
type ImageStore struct {
	bucket *gridfs.Bucket
}

func NewImageStore(mc *MongoClient) *ImageStore {
	return &ImageStore{bucket: mc.GridFS}
}

type ImageFile struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (s *ImageStore) Upload(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*ImageFile, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("only images are stored here, got %s: %w", mimeType, common.ErrValidation)
	}

	metadata := bson.M{
		"mimeType":   mimeType,
		"uploadedBy": uploaderID,
		"uploadedAt": time.Now().UTC(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := s.bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("open upload stream: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	return &ImageFile{
		ID:         stream.FileID.(primitive.ObjectID).Hex(),
		Filename:   filename,
		Size:       size,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Open returns a stream over the stored image plus its metadata.
func (s *ImageStore) Open(ctx context.Context, ref string) (io.ReadCloser, *ImageFile, error) {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, nil, common.ErrNotFound
	}

	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		return nil, nil, common.ErrNotFound
	}

	file := stream.GetFile()
	img := &ImageFile{
		ID:       ref,
		Filename: file.Name,
		Size:     file.Length,
	}
	if file.Metadata != nil {
		var meta struct {
			MimeType   string    `bson:"mimeType"`
			UploadedBy string    `bson:"uploadedBy"`
			UploadedAt time.Time `bson:"uploadedAt"`
		}
		if err := bson.Unmarshal(file.Metadata, &meta); err == nil {
			img.MimeType = meta.MimeType
			img.UploadedBy = meta.UploadedBy
			img.UploadedAt = meta.UploadedAt
		}
	}
	return stream, img, nil
}

// Release deletes the stored image once nothing references it anymore.
// A reference that never pointed into the bucket is not an error; posts
// created before the bucket existed carry external urls.
func (s *ImageStore) Release(ctx context.Context, ref string) error {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil
	}
	if err := s.bucket.Delete(id); err != nil {
		if err == gridfs.ErrFileNotFound {
			return nil
		}
		return fmt.Errorf("delete image %s: %w", ref, err)
	}
	return nil
}
