// Package constants provides shared constants used throughout the designlib codebase.
// This includes timeouts, file permissions, default file names and the persisted
// column layouts that must stay consistent across the catalog components.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// RemoteTimeout bounds a single mirror push or pull, including its conflict retry
	RemoteTimeout = 10 * time.Second

	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the remote mirror
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout is how long the HTTP server waits for in-flight requests
	ShutdownTimeout = 5 * time.Second

	// ReadHeaderTimeout protects the HTTP server against slow clients
	ReadHeaderTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxConflictRetries is how many times a stale-sha push is re-attempted
	MaxConflictRetries = 1

	// RecentUploads is the number of uploads shown in recent-upload views
	RecentUploads = 5

	// DefaultMaxUploadBytes caps a single upload accepted by the HTTP API (64 MiB)
	DefaultMaxUploadBytes = 64 << 20
)

// Deployment layout constants
const (
	// DefaultRoot is the default deployment root directory
	DefaultRoot = "designlib-data"

	// FilesDir holds the raw uploaded bytes below the deployment root
	FilesDir = "uploaded_files"

	// LedgerFile is the metadata ledger below the deployment root
	LedgerFile = "file_metadata.csv"

	// ActivityFile is the append-only activity log below the deployment root
	ActivityFile = "activity_log.csv"

	// CorruptSuffix is appended to a ledger that was moved aside during reset
	CorruptSuffix = ".corrupt-"
)

// Persisted column layouts
var (
	// LedgerHeader is the fixed column order of the ledger file
	LedgerHeader = []string{"File Name", "Category", "Upload Date"}

	// ActivityHeader is the fixed column order of the activity log
	ActivityHeader = []string{"Action", "File Name", "Category", "Timestamp"}
)

// Format constants
const (
	// TimeFormatPersisted is the timestamp layout written to the ledger and
	// activity log, always in UTC
	TimeFormatPersisted = "2006-01-02T15:04:05Z07:00"

	// TimeFormatLedger is the zone-less layout of older ledgers, read as local
	// time, and the layout used for display
	TimeFormatLedger = "2006-01-02 15:04:05"

	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)

// Remote mirror defaults
const (
	// DefaultGitHubAPIURL is the GitHub REST API base URL
	DefaultGitHubAPIURL = "https://api.github.com"

	// DefaultGitHubBranch is the branch the ledger is mirrored to
	DefaultGitHubBranch = "main"

	// DefaultMirrorPath is the remote path of the mirrored ledger
	DefaultMirrorPath = LedgerFile
)

// Server defaults
const (
	// DefaultServerHost is the default bind host for the HTTP API
	DefaultServerHost = "localhost"

	// DefaultServerPort is the default port for the HTTP API
	DefaultServerPort = 8080

	// APIPrefix is the path prefix of every HTTP API route
	APIPrefix = "/api/v1"
)
