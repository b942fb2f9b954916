package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/domain"
	"github.com/slicehub/slicehub/internal/metrics"
	"github.com/slicehub/slicehub/internal/pipeline"
	"github.com/slicehub/slicehub/internal/queue"
)

// defaultInfillPercent is used when the multipart "infill" field is absent
// on an FDM request.
const defaultInfillPercent = 20

// SliceController handles POST /slice/{FDM,SLA}: it parses and validates
// the multipart request, admits it through the queue, runs the ingestion
// pipeline, and builds the response envelope.
type SliceController struct {
	queue     *queue.Queue
	deps      pipeline.Deps
	errorLog  *logger.ErrorLog
	inputDir  string
}

// NewSliceController builds a SliceController over q and deps.
func NewSliceController(q *queue.Queue, deps pipeline.Deps, errorLog *logger.ErrorLog, inputDir string) *SliceController {
	return &SliceController{queue: q, deps: deps, errorLog: errorLog, inputDir: inputDir}
}

// sliceOutcome carries a completed pipeline's result (or error) back from
// the worker goroutine to the request goroutine.
type sliceOutcome struct {
	stats    domain.PrintStats
	artifact pipeline.OutputArtifact
	err      error
}

// Slice builds a gin.HandlerFunc for technology tech (fixed at registration
// time, per the spec's dropped-inference open question: only path-based
// routes exist, technology is never inferred from the request body).
func (s *SliceController) Slice(tech domain.Technology) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, uploadedPath, err := s.ingestUpload(c, tech)
		if err != nil {
			s.respondError(c, rec, "", err)
			return
		}
		defer rec.Cleanup()

		outcomeCh := make(chan sliceOutcome, 1)
		submitErr := s.queue.Submit(func(ctx context.Context) {
			stats, artifact, runErr := pipeline.Run(ctx, s.deps, rec, uploadedPath)
			outcomeCh <- sliceOutcome{stats: stats, artifact: artifact, err: runErr}
		})

		if submitErr != nil {
			s.respondQueueError(c, submitErr)
			return
		}

		outcome := <-outcomeCh
		if outcome.err != nil {
			s.respondError(c, rec, rec.RequestID, outcome.err)
			return
		}

		metrics.GlobalRecorder.RecordSliceOutcome(string(tech), "success")
		c.JSON(http.StatusOK, gin.H{
			"success":              true,
			"technology":           tech,
			"material":             rec.Material,
			"infill":               strconv.Itoa(rec.Infill) + "%",
			"hourly_rate":          s.deps.Pricing.RateFor(tech, rec.Material),
			"print_time_seconds":   outcome.stats.PrintTimeSeconds,
			"print_time_readable":  outcome.stats.PrintTimeReadable,
			"material_used_m":      outcome.stats.MaterialUsedM,
			"object_height_mm":     outcome.stats.ObjectHeightMM,
			"estimated_price_huf":  outcome.stats.EstimatedPriceHUF,
			"download_url":         "/download/" + filepath.Base(outcome.artifact.Path),
		})
	}
}

func (s *SliceController) ingestUpload(c *gin.Context, tech domain.Technology) (*pipeline.Context, string, error) {
	requestID := uuid.NewString()

	rec := &pipeline.Context{
		RequestID:  requestID,
		Technology: tech,
		Material:   strings.TrimSpace(c.PostForm("material")),
	}

	layerHeightRaw := c.PostForm("layerHeight")
	layerHeight, err := pipeline.ParseLayerHeight(layerHeightRaw)
	if err != nil {
		return rec, "", err
	}
	if err := pipeline.ValidateLayerHeight(tech, layerHeight); err != nil {
		return rec, "", err
	}
	rec.LayerHeightMM = layerHeight

	if rec.Material == "" {
		return rec, "", pipeline.NewPipelineError(pipeline.ErrInvalidSourceGeometryCode, errors.New("material is required"))
	}

	rec.Infill = defaultInfillPercent
	if raw := c.PostForm("infill"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return rec, "", pipeline.NewPipelineError(pipeline.ErrInvalidSourceGeometryCode, errors.Wrap(convErr, "parse infill"))
		}
		rec.Infill = domain.ClampInfill(n)
	}

	rec.DepthMM = domain.DefaultExtrusionDepthMM
	if raw := c.PostForm("depth"); raw != "" {
		d, convErr := strconv.ParseFloat(raw, 64)
		if convErr == nil && d > 0 {
			rec.DepthMM = d
		}
	}

	fileHeader, err := c.FormFile("choosenFile")
	if err != nil {
		return rec, "", pipeline.NewPipelineError(pipeline.ErrInvalidSourceGeometryCode, errors.Wrap(err, "read uploaded file"))
	}

	rec.OriginalFilename = fileHeader.Filename
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	rec.Extension = ext

	destPath := filepath.Join(s.inputDir, fmt.Sprintf("upload-%s%s", requestID, ext))
	if err := c.SaveUploadedFile(fileHeader, destPath); err != nil {
		return rec, "", pipeline.NewPipelineError(pipeline.ErrInternalProcessingError, errors.Wrap(err, "save uploaded file"))
	}
	rec.Track(destPath)

	return rec, destPath, nil
}

func (s *SliceController) respondQueueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queue.ErrFull):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "errorCode": "QUEUE_FULL"})
	case errors.Is(err, queue.ErrTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "errorCode": "QUEUE_TIMEOUT"})
	default:
		gmw.GetLogger(c).Error("queue submission failed unexpectedly", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "errorCode": "INTERNAL_PROCESSING_ERROR"})
	}
}

func (s *SliceController) respondError(c *gin.Context, rec *pipeline.Context, requestID string, err error) {
	var pe *pipeline.PipelineError
	if !errors.As(err, &pe) {
		pe = pipeline.NewPipelineError(pipeline.ErrInternalProcessingError, err)
	}

	if rec != nil {
		metrics.GlobalRecorder.RecordSliceOutcome(string(rec.Technology), string(pe.Code))
	}

	if pe.Code == pipeline.ErrInternalProcessingError && s.errorLog != nil {
		entry := logger.ErrorEntry{
			Timestamp: time.Now().UTC(),
			Error:     pe.Err.Error(),
			Path:      c.Request.URL.Path,
			RequestID: requestID,
		}
		if logErr := s.errorLog.Record(entry); logErr != nil {
			gmw.GetLogger(c).Warn("failed to record rolling error log entry", zap.Error(logErr))
		}
		gmw.GetLogger(c).Error("internal processing error", zap.String("request_id", requestID), zap.Error(pe.Err))
		c.JSON(pe.Code.HTTPStatus(), gin.H{"success": false, "errorCode": string(pe.Code)})
		return
	}

	c.JSON(pe.Code.HTTPStatus(), gin.H{"success": false, "errorCode": string(pe.Code), "message": pe.Err.Error()})
}
