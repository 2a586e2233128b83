package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // register decoders for DecodeConfig
	"image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/imageproc"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// UploadFile is one multipart file handed over by the handler. Bytes are
// copied out of the request so storage can continue after the response.
type UploadFile struct {
	Filename string
	Data     []byte
}

// UploadResult returns the created rows plus the batch handle to poll
type UploadResult struct {
	BatchID string          `json:"batch_id"`
	Images  []*models.Image `json:"images"`
}

// ProcessedImage is the response shape of the canvas tools
type ProcessedImage struct {
	Success           bool   `json:"success"`
	ProcessedImageURL string `json:"processedImageUrl"`
	VariantURL        string `json:"variantUrl"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
}

var allowedImageMimes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageService owns image rows, their files on disk, and the canvas tools
type ImageService struct {
	images    *persistence.ImageRepository
	galleries *persistence.GalleryRepository
	metadata  *persistence.ImageMetadataRepository
	cars      *persistence.CarRepository
	tx        *TransactionManager
	outbox    *OutboxService
	tracker   *UploadTracker
	analysis  *AnalysisService
	uploadDir string
	maxBytes  int64
}

// NewImageService creates a new ImageService
func NewImageService(
	images *persistence.ImageRepository,
	galleries *persistence.GalleryRepository,
	metadata *persistence.ImageMetadataRepository,
	cars *persistence.CarRepository,
	tx *TransactionManager,
	outbox *OutboxService,
	tracker *UploadTracker,
	analysis *AnalysisService,
	uploadDir string,
	maxSizeMB int,
) *ImageService {
	return &ImageService{
		images:    images,
		galleries: galleries,
		metadata:  metadata,
		cars:      cars,
		tx:        tx,
		outbox:    outbox,
		tracker:   tracker,
		analysis:  analysis,
		uploadDir: uploadDir,
		maxBytes:  int64(maxSizeMB) * 1024 * 1024,
	}
}

// UploadImages validates the batch, creates the rows, and hands the file
// writes plus analysis to the background. The caller polls the batch status.
func (s *ImageService) UploadImages(ctx context.Context, carID *string, files []UploadFile, actorID string) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, errors.NewValidationError("files", "At least one file is required")
	}

	if carID != nil && *carID != "" {
		car, err := s.cars.GetByID(ctx, *carID)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if car == nil {
			return nil, errors.NewNotFoundError("Car", *carID)
		}
	} else {
		carID = nil
	}

	batchID := utils.GenerateID()
	images := make([]*models.Image, 0, len(files))

	for _, f := range files {
		if int64(len(f.Data)) > s.maxBytes {
			return nil, errors.NewValidationError("files", fmt.Sprintf("%s exceeds the %dMB size limit", f.Filename, s.maxBytes/(1024*1024)))
		}

		mime := http.DetectContentType(f.Data)
		ext, ok := allowedImageMimes[mime]
		if !ok {
			return nil, errors.NewValidationError("files", fmt.Sprintf("%s is not a supported image type (%s)", f.Filename, mime))
		}

		cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data))
		if err != nil {
			return nil, errors.NewValidationError("files", fmt.Sprintf("%s could not be decoded: %v", f.Filename, err))
		}

		id := utils.GenerateID()
		images = append(images, &models.Image{
			ID:             id,
			CarID:          carID,
			Filename:       sanitizeFilename(f.Filename),
			Path:           filepath.Join(s.uploadDir, id+ext),
			URL:            "/uploads/" + id + ext,
			Width:          cfg.Width,
			Height:         cfg.Height,
			SizeBytes:      int64(len(f.Data)),
			MimeType:       mime,
			StorageStatus:  string(constants.StoragePending),
			AnalysisStatus: string(constants.AnalysisPending),
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		})
	}

	// Every file validated; a rejected batch leaves no rows behind
	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		for _, img := range images {
			if err := s.images.Create(txCtx, img); err != nil {
				return fmt.Errorf("failed to create image record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(images))
	names := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.ID
		names[i] = img.Filename
	}
	s.tracker.StartBatch(batchID, ids, names)

	// Storage and analysis continue after the response; the request context
	// is gone by then.
	go s.storeBatch(context.Background(), batchID, images, files, actorID)

	log.Printf("📤 Upload batch %s accepted with %d images", batchID, len(images))
	return &UploadResult{BatchID: batchID, Images: images}, nil
}

// storeBatch writes each file to disk and feeds the analysis pool
func (s *ImageService) storeBatch(ctx context.Context, batchID string, images []*models.Image, files []UploadFile, actorID string) {
	for i, img := range images {
		if err := os.WriteFile(img.Path, files[i].Data, 0o644); err != nil {
			log.Printf("❌ Failed to store %s: %v", img.Filename, err)
			s.markStorageFailed(ctx, batchID, img.ID, err)
			continue
		}

		if err := s.images.UpdateStorageStatus(ctx, img.ID, string(constants.StorageStored)); err != nil {
			log.Printf("⚠️ Failed to record storage for image %s: %v", img.ID, err)
		}
		s.tracker.SetStorageStatus(batchID, img.ID, string(constants.StorageStored), "")

		if err := s.outbox.EnqueueEvent(ctx, constants.EventImageUploaded, EventPayload{
			Entity:   "image",
			EntityID: img.ID,
			ActorID:  actorID,
			Detail:   map[string]interface{}{"filename": img.Filename},
		}); err != nil {
			log.Printf("⚠️ Failed to enqueue image.uploaded for %s: %v", img.ID, err)
		}

		s.analysis.Submit(ctx, AnalysisJob{ImageID: img.ID, BatchID: batchID})
	}
}

func (s *ImageService) markStorageFailed(ctx context.Context, batchID, imageID string, cause error) {
	if err := s.images.UpdateStorageStatus(ctx, imageID, string(constants.StorageFailed)); err != nil {
		log.Printf("⚠️ Failed to record storage failure for image %s: %v", imageID, err)
	}
	// Analysis can never run without the file
	if err := s.images.UpdateAnalysis(ctx, imageID, string(constants.AnalysisSkipped), nil); err != nil {
		log.Printf("⚠️ Failed to skip analysis for image %s: %v", imageID, err)
	}
	s.tracker.SetStorageStatus(batchID, imageID, string(constants.StorageFailed), cause.Error())
}

// BatchStatus reports upload progress, false when the batch is unknown
func (s *ImageService) BatchStatus(batchID string) (BatchStatus, bool) {
	return s.tracker.Status(batchID)
}

// GetImage fetches a single image
func (s *ImageService) GetImage(ctx context.Context, id string) (*models.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.NewNotFoundError("Image", id)
	}
	return img, nil
}

// ListByCar returns a car's images in shoot order
func (s *ImageService) ListByCar(ctx context.Context, carID string) ([]*models.Image, error) {
	return s.images.ListByCar(ctx, carID)
}

// UpdateImageRequest carries the PATCHable analysis/caption fields
type UpdateImageRequest struct {
	Caption   *string `json:"caption"`
	Angle     *string `json:"angle"`
	View      *string `json:"view"`
	Movement  *string `json:"movement"`
	TimeOfDay *string `json:"tod"`
}

// UpdateImage applies manual corrections to the catalogued fields
func (s *ImageService) UpdateImage(ctx context.Context, id string, req UpdateImageRequest) (*models.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.NewNotFoundError("Image", id)
	}

	updates := make(map[string]interface{})
	if req.Caption != nil {
		updates["caption"] = nullable(*req.Caption)
	}
	if req.Angle != nil {
		updates["angle"] = nullable(*req.Angle)
	}
	if req.View != nil {
		updates["view"] = nullable(*req.View)
	}
	if req.Movement != nil {
		updates["movement"] = nullable(*req.Movement)
	}
	if req.TimeOfDay != nil {
		updates["tod"] = nullable(*req.TimeOfDay)
	}

	if len(updates) == 0 {
		return img, nil
	}
	if err := s.images.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update image: %w", err)
	}
	return s.images.GetByID(ctx, id)
}

// DeleteImage removes the row, its gallery memberships, provider metadata and
// primary-image references in one transaction, then the file best-effort.
func (s *ImageService) DeleteImage(ctx context.Context, id string) error {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if img == nil {
		return errors.NewNotFoundError("Image", id)
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.galleries.RemoveImageEverywhere(txCtx, tx, id); err != nil {
			return fmt.Errorf("failed to detach image from galleries: %w", err)
		}
		if err := s.metadata.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete image metadata: %w", err)
		}
		if err := s.cars.ClearPrimaryImage(txCtx, id); err != nil {
			return fmt.Errorf("failed to clear primary image references: %w", err)
		}
		if err := s.images.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete image: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Failed to remove file for deleted image %s: %v", id, err)
	}

	log.Printf("🗑️ Image deleted: %s (%s)", id, img.Filename)
	return nil
}

// ExtendCanvasRequest mirrors the studio tool's knobs
type ExtendCanvasRequest struct {
	DesiredHeight   int     `json:"desiredHeight"`
	PaddingPct      float64 `json:"paddingPct"`
	WhiteThreshold  int     `json:"whiteThresh"`
	RequestedWidth  int     `json:"requestedWidth"`
	RequestedHeight int     `json:"requestedHeight"`
}

// ExtendCanvas grows a studio shot vertically without touching the car
func (s *ImageService) ExtendCanvas(ctx context.Context, id string, req ExtendCanvasRequest) (*ProcessedImage, error) {
	src, img, err := s.openStored(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := imageproc.ExtendCanvas(src, imageproc.ExtendOptions{
		DesiredHeight:   req.DesiredHeight,
		PaddingPct:      req.PaddingPct,
		WhiteThreshold:  req.WhiteThreshold,
		RequestedWidth:  req.RequestedWidth,
		RequestedHeight: req.RequestedHeight,
	})
	if err != nil {
		return nil, errors.NewValidationError("image", err.Error())
	}

	return s.finishProcessed(img, "extend", result.Image)
}

// MatteRequest mirrors the matte generator's knobs
type MatteRequest struct {
	CanvasWidth    int     `json:"canvasWidth"`
	CanvasHeight   int     `json:"canvasHeight"`
	PaddingPercent float64 `json:"paddingPct"`
	Color          string  `json:"color"`
}

// Matte centers the image on a solid color canvas
func (s *ImageService) Matte(ctx context.Context, id string, req MatteRequest) (*ProcessedImage, error) {
	src, img, err := s.openStored(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := imageproc.Matte(src, imageproc.MatteOptions{
		CanvasWidth:    req.CanvasWidth,
		CanvasHeight:   req.CanvasHeight,
		PaddingPercent: req.PaddingPercent,
		Color:          req.Color,
	})
	if err != nil {
		return nil, errors.NewValidationError("image", err.Error())
	}

	return s.finishProcessed(img, "matte", out)
}

// CropRequest mirrors the cropper's knobs
type CropRequest struct {
	CropX        int     `json:"cropX"`
	CropY        int     `json:"cropY"`
	CropWidth    int     `json:"cropWidth"`
	CropHeight   int     `json:"cropHeight"`
	OutputWidth  int     `json:"outputWidth"`
	OutputHeight int     `json:"outputHeight"`
	Scale        float64 `json:"scale"`
}

// Crop cuts a region and centers it on the output canvas
func (s *ImageService) Crop(ctx context.Context, id string, req CropRequest) (*ProcessedImage, error) {
	src, img, err := s.openStored(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := imageproc.Crop(src, imageproc.CropOptions{
		CropX:        req.CropX,
		CropY:        req.CropY,
		CropWidth:    req.CropWidth,
		CropHeight:   req.CropHeight,
		OutputWidth:  req.OutputWidth,
		OutputHeight: req.OutputHeight,
		Scale:        req.Scale,
	})
	if err != nil {
		return nil, errors.NewValidationError("image", err.Error())
	}

	return s.finishProcessed(img, "crop", out)
}

// openStored loads the image row and decodes its file
func (s *ImageService) openStored(ctx context.Context, id string) (image.Image, *models.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if img == nil {
		return nil, nil, errors.NewNotFoundError("Image", id)
	}
	if img.StorageStatus != string(constants.StorageStored) {
		return nil, nil, errors.NewValidationError("image", "Image file is not stored yet")
	}

	src, err := imaging.Open(img.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image file: %w", err)
	}
	return src, img, nil
}

// finishProcessed persists the variant file and builds the data URL response
func (s *ImageService) finishProcessed(img *models.Image, op string, out image.Image) (*ProcessedImage, error) {
	processedDir := filepath.Join(s.uploadDir, "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create processed dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%d.jpg", img.ID, op, time.Now().Unix())
	variantPath := filepath.Join(processedDir, name)
	if err := imaging.Save(out, variantPath, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to save processed variant: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode processed image: %w", err)
	}

	bounds := out.Bounds()
	log.Printf("✅ Processed image %s (%s) -> %dx%d", img.ID, op, bounds.Dx(), bounds.Dy())

	return &ProcessedImage{
		Success:           true,
		ProcessedImageURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		VariantURL:        "/uploads/processed/" + name,
		Width:             bounds.Dx(),
		Height:            bounds.Dy(),
	}, nil
}

// sanitizeFilename guards against path tricks in user-supplied names
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, "..", "")
}
