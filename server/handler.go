package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krau/lesionscan/catalog"
	"github.com/krau/lesionscan/inference"
	"github.com/krau/lesionscan/model"
	"github.com/krau/lesionscan/preprocess"
)

// multipart framing allowance on top of the image size limit
const formOverhead = 1 << 20

type RankEntry struct {
	Index              int     `json:"index"`
	Label              string  `json:"label"`
	MedicalCategory    string  `json:"medical_category"`
	ProbabilityPercent float64 `json:"probability_percent"`
}

type PredictResponse struct {
	Label              string      `json:"label"`
	MedicalCategory    string      `json:"medical_category"`
	ProbabilityPercent float64     `json:"probability_percent"`
	Probability        string      `json:"probability"`
	Ranking            []RankEntry `json:"ranking"`
}

func NewPredictResponse(res *inference.PredictionResult) PredictResponse {
	ranking := make([]RankEntry, len(res.Ranking))
	for i, s := range res.Ranking {
		ranking[i] = RankEntry{
			Index:              s.Index,
			Label:              s.Label.DisplayName,
			MedicalCategory:    s.Label.Category.String(),
			ProbabilityPercent: inference.Percent(s.Probability),
		}
	}
	return PredictResponse{
		Label:              res.Label.DisplayName,
		MedicalCategory:    res.Label.Category.String(),
		ProbabilityPercent: res.ProbabilityPercent,
		Probability:        FormatPercent(res.ProbabilityPercent),
		Ranking:            ranking,
	}
}

func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

func (s *Server) PredictHandler(c *gin.Context) {
	if limit := s.opts.Decode.MaxBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded. Use 'file' as the form field name"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open the uploaded file"})
		return
	}
	defer file.Close()

	img, format, err := preprocess.Decode(file, s.opts.Decode)
	if err != nil {
		s.fail(c, err)
		return
	}
	slog.DebugContext(c.Request.Context(), "Decoded upload",
		slog.String("filename", fileHeader.Filename),
		slog.String("format", format),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()))

	res, err := s.engine.Classify(c.Request.Context(), img)
	if err != nil {
		s.fail(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "Prediction",
		slog.String("label", res.Label.DisplayName),
		slog.String("category", res.Label.Category.String()),
		slog.Float64("probability_percent", res.ProbabilityPercent))
	c.JSON(http.StatusOK, NewPredictResponse(res))
}

// fail maps pipeline errors to responses. Internal details are only logged.
func (s *Server) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	var (
		unsupported *preprocess.UnsupportedImageError
		loadErr     *model.ModelLoadError
		mappingErr  *catalog.LabelMappingError
	)
	switch {
	case errors.As(err, &unsupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image: " + unsupported.Reason + ". Upload a JPG, JPEG or PNG photo"})
	case errors.As(err, &loadErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The classification model is unavailable. Restart the service after fixing the model file"})
	case errors.As(err, &mappingErr):
		slog.ErrorContext(ctx, "Label mapping failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
	default:
		slog.ErrorContext(ctx, "Prediction failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
	}
}

func (s *Server) HealthHandler(c *gin.Context) {
	status := s.engine.Status()
	code := http.StatusOK
	health := "healthy"
	if status == model.StatusFailed {
		code = http.StatusServiceUnavailable
		health = "unhealthy"
	}
	c.JSON(code, gin.H{"status": health, "model": status.String()})
}

func (s *Server) CatalogHandler(c *gin.Context) {
	classes := s.engine.Catalog().Classes()
	out := make([]gin.H, len(classes))
	for i, cl := range classes {
		out[i] = gin.H{
			"index":            i,
			"label":            cl.DisplayName,
			"medical_category": cl.Category.String(),
		}
	}
	c.JSON(http.StatusOK, gin.H{"classes": out})
}
