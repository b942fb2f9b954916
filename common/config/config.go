// Package config provides centralized configuration management for slicehub.
//
// This file defines every environment variable the service reads, grouped and
// documented by concern. Defaults are provided for everything except the
// admin secret so the process can start with a minimal environment during
// development.
//
// # Configuration Groups
//
//   - Server Configuration: listen port, graceful shutdown timeout
//   - Filesystem Layout: input/output/log/config directories
//   - Admin Authentication: pre-shared API key
//   - Upload & Body Limits: multipart and JSON body size caps
//   - Rate Limiting: per-IP fixed window
//   - Slice Queue: bounded concurrency and admission timeouts
//   - Archive Guards: zip-bomb protection
//   - Logging: rotation interval and retention
//   - Debug & Metrics: verbose subprocess echoing, Prometheus toggle
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/slicehub/slicehub/common/env"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

var (
	// ServerPort is the TCP port the HTTP server listens on.
	//
	// Environment variable: PORT
	// Default: 3000
	ServerPort = env.Int("PORT", 3000)

	// GinMode controls the Gin HTTP framework's operating mode.
	//
	// Environment variable: GIN_MODE
	// Default: "release"
	GinMode = strings.TrimSpace(env.String("GIN_MODE", "release"))

	// ShutdownTimeout bounds how long the server waits for in-flight slice
	// requests to drain before forcing an exit on SIGTERM.
	//
	// Environment variable: SHUTDOWN_TIMEOUT (seconds)
	// Default: 30s
	ShutdownTimeout = time.Duration(env.Int("SHUTDOWN_TIMEOUT", 30)) * time.Second
)

// =============================================================================
// FILESYSTEM LAYOUT
// =============================================================================

var (
	// InputDir holds uploaded source files and archive extraction scratch space.
	InputDir = strings.TrimSpace(env.String("INPUT_DIR", "./input"))

	// OutputDir holds finished slicer artifacts served by GET /download/{name}.
	OutputDir = strings.TrimSpace(env.String("OUTPUT_DIR", "./output"))

	// LogDir holds the rolling structured error log.
	LogDir = strings.TrimSpace(env.String("LOG_DIR", "./logs"))

	// ConfigsDir holds pricing.json and the per-technology slicer .ini profiles.
	ConfigsDir = strings.TrimSpace(env.String("CONFIGS_DIR", "./configs"))

	// ConfigFile is an optional YAML overlay applied on top of the defaults
	// above; empty disables it.
	//
	// Environment variable: CONFIG_FILE
	ConfigFile = strings.TrimSpace(env.String("CONFIG_FILE", ""))
)

// =============================================================================
// ADMIN AUTHENTICATION
// =============================================================================

var (
	// AdminAPIKey is the pre-shared secret required in the x-api-key header
	// for every /pricing mutation route. The process must fail fast when this
	// is unset; see ValidateAdminAPIKey (run by common.Init) and
	// middleware.RequireAdminKey.
	//
	// Environment variable: ADMIN_API_KEY
	AdminAPIKey = env.String("ADMIN_API_KEY", "")
)

// =============================================================================
// UPLOAD & BODY LIMITS
// =============================================================================

const (
	mib = 1024 * 1024
)

var (
	// MaxUploadBytes bounds the size of the multipart file field accepted by
	// /slice/{tech}.
	//
	// Environment variable: MAX_UPLOAD_BYTES
	// Default: 100 MiB
	MaxUploadBytes = int64(env.Int("MAX_UPLOAD_BYTES", 100*mib))

	// JSONBodyLimit bounds admin JSON request bodies.
	//
	// Environment variable: JSON_BODY_LIMIT
	// Default: 1 MiB
	JSONBodyLimit = int64(env.Int("JSON_BODY_LIMIT", 1*mib))

	// FormBodyLimit bounds the non-file portion of multipart slice requests.
	//
	// Environment variable: FORM_BODY_LIMIT
	// Default: 1 MiB
	FormBodyLimit = int64(env.Int("FORM_BODY_LIMIT", 1*mib))
)

// =============================================================================
// RATE LIMITING
// =============================================================================

var (
	// SliceRateLimitWindowMS is the fixed-window duration for the per-IP
	// slicing rate limiter.
	//
	// Environment variable: SLICE_RATE_LIMIT_WINDOW_MS
	// Default: 60000 (60s)
	SliceRateLimitWindowMS = env.Int("SLICE_RATE_LIMIT_WINDOW_MS", 60_000)

	// SliceRateLimitMaxRequests caps the number of slice requests a single IP
	// may issue within the window above.
	//
	// Environment variable: SLICE_RATE_LIMIT_MAX_REQUESTS
	// Default: 5
	SliceRateLimitMaxRequests = env.Int("SLICE_RATE_LIMIT_MAX_REQUESTS", 5)
)

// =============================================================================
// SLICE QUEUE
// =============================================================================

var (
	// MaxConcurrentSlices sizes the worker pool that drains the admission
	// queue; defaults to the host's logical CPU count.
	//
	// Environment variable: MAX_CONCURRENT_SLICES
	MaxConcurrentSlices = env.Int("MAX_CONCURRENT_SLICES", runtime.NumCPU())

	// MaxSliceQueueLength caps the number of requests waiting for a worker.
	// Submissions beyond this are rejected immediately with QUEUE_FULL.
	//
	// Environment variable: MAX_SLICE_QUEUE_LENGTH
	// Default: 20
	MaxSliceQueueLength = env.Int("MAX_SLICE_QUEUE_LENGTH", 20)

	// MaxSliceQueueWaitMS bounds how long a queued request waits for a free
	// worker before it is rejected with QUEUE_TIMEOUT.
	//
	// Environment variable: MAX_SLICE_QUEUE_WAIT_MS
	// Default: 30000 (30s)
	MaxSliceQueueWaitMS = env.Int("MAX_SLICE_QUEUE_WAIT_MS", 30_000)
)

// =============================================================================
// ARCHIVE GUARDS
// =============================================================================

var (
	// MaxZipEntries caps the number of entries accepted from an uploaded zip
	// archive, guarding against entry-count zip bombs.
	//
	// Environment variable: MAX_ZIP_ENTRIES
	// Default: 1000
	MaxZipEntries = env.Int("MAX_ZIP_ENTRIES", 1000)

	// MaxZipUncompressedBytes caps the cumulative uncompressed size accepted
	// from an uploaded zip archive.
	//
	// Environment variable: MAX_ZIP_UNCOMPRESSED_BYTES
	// Default: 500 MiB
	MaxZipUncompressedBytes = int64(env.Int("MAX_ZIP_UNCOMPRESSED_BYTES", 500*mib))
)

// =============================================================================
// EXTERNAL TOOL BINARIES
// =============================================================================

var (
	// SlicerBinary is the external slicer executable invoked in both info
	// mode (dimension probing) and export mode (gcode/sl1 production).
	//
	// Environment variable: SLICER_BINARY
	SlicerBinary = strings.TrimSpace(env.String("SLICER_BINARY", "prusa-slicer"))

	// ImageToMeshBinary converts raster images {.png,.jpg,.jpeg,.bmp} into STL.
	//
	// Environment variable: IMAGE_TO_MESH_BINARY
	ImageToMeshBinary = strings.TrimSpace(env.String("IMAGE_TO_MESH_BINARY", "image2mesh"))

	// VectorToMeshBinary converts vector formats {.dxf,.svg,.eps,.pdf} into STL.
	//
	// Environment variable: VECTOR_TO_MESH_BINARY
	VectorToMeshBinary = strings.TrimSpace(env.String("VECTOR_TO_MESH_BINARY", "vector2mesh"))

	// MeshToMeshBinary normalizes mesh formats {.obj,.3mf,.ply} into STL.
	//
	// Environment variable: MESH_TO_MESH_BINARY
	MeshToMeshBinary = strings.TrimSpace(env.String("MESH_TO_MESH_BINARY", "mesh2mesh"))

	// CADToMeshBinary converts CAD formats {.stp,.step,.igs,.iges} into STL.
	//
	// Environment variable: CAD_TO_MESH_BINARY
	CADToMeshBinary = strings.TrimSpace(env.String("CAD_TO_MESH_BINARY", "cad2mesh"))

	// OrientBinary is the best-effort mesh orientation optimizer.
	//
	// Environment variable: ORIENT_BINARY
	OrientBinary = strings.TrimSpace(env.String("ORIENT_BINARY", "orient-optimizer"))
)

// =============================================================================
// LOGGING
// =============================================================================

var (
	// DebugEnabled toggles verbose (debug-level) structured logging.
	//
	// Environment variable: DEBUG
	DebugEnabled = env.Bool("DEBUG", false)

	// DebugCommandLogs gates command-line echoing in the subprocess runner.
	// The echo is written at debug level, so it only appears when DEBUG is
	// also enabled.
	//
	// Environment variable: DEBUG_COMMAND_LOGS
	DebugCommandLogs = env.Bool("DEBUG_COMMAND_LOGS", false)

	// LogRotationInterval selects how frequently the rolling error log file
	// rotates.
	//
	// Environment variable: LOG_ROTATION_INTERVAL
	// Default: "daily"
	// Allowed values: "hourly", "daily", "weekly"
	LogRotationInterval = strings.TrimSpace(strings.ToLower(env.String("LOG_ROTATION_INTERVAL", "daily")))

	// LogRetentionDays determines how many days of rolling error log entries
	// are kept before the retention worker purges them.
	//
	// Environment variable: LOG_RETENTION_DAYS
	// Default: 7 days
	LogRetentionDays = func() int {
		v := env.Int("LOG_RETENTION_DAYS", 7)
		if v < 0 {
			return 0
		}
		return v
	}()
)

// =============================================================================
// METRICS
// =============================================================================

var (
	// MetricsEnabled toggles the Prometheus /metrics endpoint.
	//
	// Environment variable: METRICS_ENABLED
	// Default: true
	MetricsEnabled = env.Bool("METRICS_ENABLED", true)
)
