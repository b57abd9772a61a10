package storage

import (
	"context"
	"errors"
	"testing"
)

type pathOnly struct{ Provider }

func (pathOnly) GetConfigPath() string { return "redis://localhost:6379/0" }

func TestOffline(t *testing.T) {
	loadErr := errors.New("dial tcp: connection refused")
	p := Offline(pathOnly{}, loadErr)

	if got := p.GetConfigPath(); got != "redis://localhost:6379/0" {
		t.Errorf("GetConfigPath() = %q, want redis://localhost:6379/0", got)
	}
	if _, err := p.GetReminder(context.Background(), "anon-1"); !errors.Is(err, loadErr) {
		t.Errorf("GetReminder() error = %v, want %v", err, loadErr)
	}
	if _, err := p.PutReminder(context.Background(), "anon-1", []byte("{}")); !errors.Is(err, loadErr) {
		t.Errorf("PutReminder() error = %v, want %v", err, loadErr)
	}
	if err := p.DeleteReminder(context.Background(), "anon-1"); !errors.Is(err, loadErr) {
		t.Errorf("DeleteReminder() error = %v, want %v", err, loadErr)
	}
	if _, err := p.GetSettings(); !errors.Is(err, loadErr) {
		t.Errorf("GetSettings() error = %v, want %v", err, loadErr)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
