package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	fig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AmmarC10/ContractinGO-BE/config"
	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
)

const (
	maxImageSize   = 10 << 20 // 10MB
	thumbnailWidth = 320
)

// MediaService uploads images for ad photos and message attachments to S3
// and returns their public URLs.
type MediaService interface {
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, userID uint) (*UploadResult, error)
}

type UploadResult struct {
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type mediaService struct {
	Config *config.Config
	logger *zap.SugaredLogger
}

func NewMediaService(conf *config.Config, logger *zap.SugaredLogger) MediaService {
	return &mediaService{
		Config: conf,
		logger: logger,
	}
}

var supportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func (m *mediaService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, userID uint) (*UploadResult, error) {
	if fileHeader.Size > maxImageSize {
		return nil, apiError.New("image exceeds the 10MB limit", http.StatusBadRequest)
	}
	extension := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := supportedImageExtensions[extension]
	if !ok {
		return nil, apiError.New("unsupported image type", http.StatusBadRequest)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apiError.New("failed to open uploaded file", http.StatusBadRequest)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, apiError.New("uploaded file is not a valid image", http.StatusBadRequest)
	}

	client, err := m.s3Client(ctx)
	if err != nil {
		m.logger.Errorw("failed to build s3 client", "error", err)
		return nil, apiError.ErrInternalServerError
	}

	baseKey := fmt.Sprintf("media/%d_%s", userID, uuid.New().String())

	var full bytes.Buffer
	if err := imaging.Encode(&full, img, formatForExtension(extension)); err != nil {
		m.logger.Errorw("failed to encode image", "error", err)
		return nil, apiError.ErrInternalServerError
	}
	imageURL, err := m.putObject(ctx, client, baseKey+extension, contentType, full.Bytes())
	if err != nil {
		m.logger.Errorw("failed to upload image to s3", "error", err)
		return nil, apiError.New("failed to store image", http.StatusBadGateway)
	}

	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	var thumb bytes.Buffer
	if err := imaging.Encode(&thumb, thumbnail, imaging.JPEG); err != nil {
		m.logger.Errorw("failed to encode thumbnail", "error", err)
		return &UploadResult{ImageURL: imageURL}, nil
	}
	thumbnailURL, err := m.putObject(ctx, client, baseKey+"_thumb.jpg", "image/jpeg", thumb.Bytes())
	if err != nil {
		// The full-size upload already succeeded; the thumbnail is optional.
		m.logger.Warnw("failed to upload thumbnail to s3", "error", err)
		return &UploadResult{ImageURL: imageURL}, nil
	}

	return &UploadResult{ImageURL: imageURL, ThumbnailURL: thumbnailURL}, nil
}

func (m *mediaService) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := fig.LoadDefaultConfig(ctx,
		fig.WithRegion(m.Config.AwsRegion),
		fig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(m.Config.AwsAccessKeyID, m.Config.AwsSecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func (m *mediaService) putObject(ctx context.Context, client *s3.Client, key, contentType string, body []byte) (string, error) {
	if m.Config.AwsBucket == "" {
		return "", fmt.Errorf("S3 bucket name is not configured")
	}

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.Config.AwsBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Config.AwsBucket, m.Config.AwsRegion, key), nil
}

func formatForExtension(extension string) imaging.Format {
	switch extension {
	case ".png":
		return imaging.PNG
	default:
		return imaging.JPEG
	}
}
