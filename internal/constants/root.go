package constants

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "medremind"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/medremind"
	DefaultDBFileName  = "medremind.db"
	Version            = "v0.3.0"

	// TimeFormat is the standard time-of-day format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Document constants
	DocumentVersion     = 2
	RemindersCollection = "reminders"
	SettingsCollection  = "settings"
	SettingsDocumentID  = "app"

	// Local state file names, relative to the config directory
	CacheDirName      = "cache"
	CacheFileName     = "reminder.json"
	SessionIDFileName = "session-id"
	LockfileName      = "medremind.lock"
	ConfigFileName    = "config.yaml"
	EnvFileName       = ".env"
	AnonIDPrefix      = "anon-"

	// Server constants
	DefaultServerAddr = "127.0.0.1:8787"
	SourceHeader      = "X-Medremind-Source"
)

const (
	StateWeek SessionState = iota
	StateEditTime
	StateConfirmDelete
	StateSaved
)
