package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoding
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Proof photos are recompressed into this size window.
const (
	proofMaxBytes = 150 * 1024
	proofMinBytes = 50 * 1024
)

type StoredFile struct {
	Key string
	URL string
}

type FileService interface {
	// UploadAttendanceProof stores a clock-in/out proof photo as JPEG under
	// attendance/{date}/{employeeID}-{transition}-{id}.jpg.
	UploadAttendanceProof(ctx context.Context, employeeID string, date time.Time, transition string, file io.Reader, filename string) (StoredFile, error)

	DeleteFile(ctx context.Context, key string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadAttendanceProof implements FileService.
func (s *fileServiceImpl) UploadAttendanceProof(ctx context.Context, employeeID string, date time.Time, transition string, file io.Reader, filename string) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return StoredFile{}, fmt.Errorf("invalid file type: only jpg, jpeg, png allowed")
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, proofMaxBytes, proofMinBytes)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to compress image: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to generate file id: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.jpg", employeeID, transition, id.String())
	key := path.Join("attendance", date.Format("2006-01-02"), name)

	stored, err := s.storage.Upload(ctx, bytes.NewReader(compressed), int64(len(compressed)), key, "image/jpeg")
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to upload attendance proof: %w", err)
	}

	return StoredFile{Key: stored, URL: s.storage.URL(stored)}, nil
}

// DeleteFile implements FileService.
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes an image as JPEG until it fits between minSize
// and maxSize bytes, lowering quality first and resizing last.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Already a JPEG of acceptable size
	if format == "jpeg" && len(buffer) <= maxSize && len(buffer) >= minSize {
		return buffer, nil
	}

	var compressed []byte
	for quality := 85; quality >= 50; quality -= 5 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	// Still too large: scale towards the middle of the window.
	bounds := img.Bounds()
	ratio := math.Sqrt(float64(maxSize+minSize) / 2 / float64(len(compressed)))
	width := max(int(float64(bounds.Dx())*ratio), 600)
	height := max(int(float64(bounds.Dy())*ratio), 400)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resizeImage(img, width, height), &jpeg.Options{Quality: 70}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage scales src with CatmullRom interpolation.
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
