package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/cli/backups"
	"github.com/julianstephens/medremind/internal/cli/reminders"
	"github.com/julianstephens/medremind/internal/cli/settings"
	"github.com/julianstephens/medremind/internal/cli/system"
	"github.com/julianstephens/medremind/internal/config"
	"github.com/julianstephens/medremind/internal/constants"
	apperrors "github.com/julianstephens/medremind/internal/errors"
	"github.com/julianstephens/medremind/internal/identity"
	"github.com/julianstephens/medremind/internal/keyring"
	"github.com/julianstephens/medremind/internal/logger"
	"github.com/julianstephens/medremind/internal/storage"
	"github.com/julianstephens/medremind/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config directory holding config.yaml, .env, the SQLite database and local state." type:"path" default:"${config_dir}" env:"MEDREMIND_CONFIG"`
	Store   string `help:"SQLite path or postgres://, redis://, firestore:// connection string. PostgreSQL credentials must NOT be embedded; use the OS keyring, .pgpass or environment variables." env:"MEDREMIND_STORE"`
	ID      string `name:"id" help:"Reminder identifier. Defaults to the anonymous id kept in the config directory." env:"MEDREMIND_ID"`
	Verbose bool   `name:"debug" help:"Log debug output to stderr."`

	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive reminder form." default:"1"`
	Init    system.InitCmd    `cmd:"" help:"Initialize medremind storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Serve the reminder API over HTTP."`

	Show    reminders.ShowCmd    `cmd:"" help:"Show saved reminders."`
	Set     reminders.SetCmd     `cmd:"" help:"Set a reminder time."`
	Enable  reminders.EnableCmd  `cmd:"" help:"Enable reminders."`
	Disable reminders.DisableCmd `cmd:"" help:"Disable reminders, keeping their times."`
	Days    reminders.DaysCmd    `cmd:"" help:"Choose which days are selected."`
	Copy    reminders.CopyCmd    `cmd:"" help:"Copy one day's reminders to every day."`
	Delete  reminders.DeleteCmd  `cmd:"" help:"Delete saved reminders."`
	Next    reminders.NextCmd    `cmd:"" help:"List upcoming reminders."`
	Export  reminders.ExportCmd  `cmd:"" help:"Export reminders."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage default reminder times."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage connection strings in the OS keyring."`
	Debug   system.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
}

// Commands that handle an unloaded store themselves.
var skipLoad = map[string]bool{
	"init":    true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	// .env may set MEDREMIND_* variables, so it is read before parsing.
	loadEnvFiles()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Medication reminder schedule editor"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":      constants.Version,
			"config_dir":   constants.DefaultConfigDir,
			"default_addr": constants.DefaultServerAddr,
		},
	)

	paths, err := config.ResolvePaths(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	cfg, err := config.Load(paths.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Verbose, ConfigDir: paths.Dir, Level: cfg.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := openStore(paths, cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	idOverride := CLI.ID
	if idOverride == "" {
		idOverride = cfg.ID
	}
	id, err := identity.Resolve(paths.Dir, idOverride)
	if err != nil {
		apperrors.Fatal(err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "store", store.GetConfigPath(), "id", id)

	if !skipLoad[strings.Fields(ctx.Command())[0]] {
		store, err = loadStore(store)
		if err != nil {
			apperrors.Fatal(err)
		}
	}

	apperrors.Fatal(ctx.Run(cli.NewContext(store, paths, cfg, id)))
}

func loadEnvFiles() {
	dir := os.Getenv("MEDREMIND_CONFIG")
	if dir == "" {
		dir = constants.DefaultConfigDir
	}
	files := []string{constants.EnvFileName}
	if expanded, err := config.ExpandPath(dir); err == nil {
		files = append(files, filepath.Join(expanded, constants.EnvFileName))
	}
	if _, err := config.LoadEnv(files...); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// openStore resolves the store DSN: --store or MEDREMIND_STORE, then
// config.yaml, then a connection string kept in the OS keyring, then the
// SQLite database in the config directory.
func openStore(paths config.Paths, cfg config.File) (storage.Provider, error) {
	defaults := cfg.Defaults.Settings()
	switch {
	case CLI.Store != "":
		return cli.OpenStore(CLI.Store, paths, defaults)
	case cfg.Store != "":
		return cli.OpenStore(cfg.Store, paths, defaults)
	}

	dsn, backend, err := keyring.FirstConnectionString()
	switch {
	case err == nil:
		logger.Debug("Using connection string from keyring", "backend", backend)
		return cli.OpenKeyringStore(dsn, paths, defaults)
	case !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("Keyring unavailable", "err", err)
	}
	return cli.OpenStore("", paths, defaults)
}

// loadStore opens the store. A remote store that cannot be reached is
// replaced by an offline provider so commands fall back to the local cache.
func loadStore(store storage.Provider) (storage.Provider, error) {
	err := store.Load()
	if err == nil {
		return store, nil
	}
	if errors.Is(err, storage.ErrNotInitialized) {
		return nil, apperrors.WithHint(err, "run 'medremind init' to create the database")
	}
	if _, ok := store.(*sqlite.Store); ok {
		return nil, err
	}
	logger.Warn("Store unreachable, using local cache", "store", store.GetConfigPath(), "err", err)
	return storage.Offline(store, err), nil
}
