package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/config"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/storage/sqlite"
)

const testID = "anon-test"

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	t.Helper()
	paths, err := config.ResolvePaths(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve paths: %v", err)
	}

	store := sqlite.NewStore(paths.Database)
	ctx := cli.NewContext(store, paths, config.File{}, testID)

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}
	return ctx, paths.Database, cleanup
}

func saveWeek(t *testing.T, ctx *cli.Context) {
	t.Helper()
	var week models.WeekSchedule
	day := &week.Days[models.Monday]
	day.Selected = true
	coord := models.Coord{Slot: models.Morning, Occasion: models.AfterMeal}
	if err := day.Set(coord, models.SlotSetting{Enabled: true, Time: models.MustTimeOfDay(8, 0)}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, err := ctx.Adapter.Save(context.Background(), testID, week); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	saveWeek(t, ctx)

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}

	if _, err := ctx.Store.GetReminder(context.Background(), testID); err == nil {
		t.Error("document should be gone after init --force")
	}

	backups, err := ctx.Backups().List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("got %d backups, want 1 taken before reset", len(backups))
	}
}

func TestInitCmd_ForceSameSource(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx); err == nil {
		t.Error("expected error when source and destination are the same")
	}
}

func TestInitCmd_CopyFromSource(t *testing.T) {
	source, _, cleanupSource := setupTestInitDB(t)
	defer cleanupSource()
	if err := (&InitCmd{}).Run(source); err != nil {
		t.Fatalf("source init failed: %v", err)
	}
	saveWeek(t, source)
	if err := source.Store.SaveSettings(models.Settings{DefaultNoon: "11:45"}); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}

	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()
	cmd := &InitCmd{Source: source.Store.GetConfigPath()}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init --source failed: %v", err)
	}

	res, err := ctx.Adapter.Load(context.Background(), testID)
	if err != nil {
		t.Fatalf("Load() after copy failed: %v", err)
	}
	if !res.Week.IsAnyEnabled() {
		t.Error("copied document should have an enabled reminder")
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if settings.DefaultNoon != "11:45" {
		t.Errorf("DefaultNoon = %s, want 11:45", settings.DefaultNoon)
	}
}

func TestMigrateCmd(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Errorf("migrate on an up-to-date database failed: %v", err)
	}
}

func TestDoctorCmd(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail before init")
	}

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	saveWeek(t, ctx)
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor on a healthy profile failed: %v", err)
	}
}

func TestCheckDocument_Malformed(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := ctx.Store.PutReminder(context.Background(), testID, []byte(`{"version":9}`)); err != nil {
		t.Fatalf("PutReminder() failed: %v", err)
	}
	if err := checkDocument(ctx); !errors.Is(err, reminder.ErrUnsupportedVersion) {
		t.Errorf("checkDocument() error = %v, want %v", err, reminder.ErrUnsupportedVersion)
	}
}

func TestDebugCmds(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Errorf("debug db-path failed: %v", err)
	}
	if err := (&DebugPathsCmd{}).Run(ctx); err != nil {
		t.Errorf("debug paths failed: %v", err)
	}
	if err := (&DebugSettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("debug settings failed: %v", err)
	}
	if err := (&DebugDumpCmd{}).Run(ctx); err == nil {
		t.Error("debug dump should fail when nothing is saved")
	}

	saveWeek(t, ctx)
	if err := (&DebugDumpCmd{}).Run(ctx); err != nil {
		t.Errorf("debug dump failed: %v", err)
	}
	if err := (&DebugDumpCmd{ID: "anon-other"}).Run(ctx); err == nil {
		t.Error("debug dump of an unknown id should fail")
	}
}

func TestServeCmd_BadAddr(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&ServeCmd{Addr: filepath.Join("no", "such", "addr")}).Run(ctx); err == nil {
		t.Error("serve with an invalid address should fail")
	}
}
