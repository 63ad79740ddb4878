// Package updater checks for and applies binary self-updates from GitHub
// releases.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/version"
)

// UpdateInfo describes the latest published release relative to the running
// binary.
type UpdateInfo struct {
	CurrentVersion  string     `json:"current_version"`
	LatestVersion   string     `json:"latest_version"`
	ReleaseNotes    string     `json:"release_notes,omitempty"`
	ReleaseURL      string     `json:"release_url,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	UpdateAvailable bool       `json:"update_available"`
}

// Updater checks a GitHub repository for newer releases of the running
// binary and can replace it in place.
type Updater struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	logger     *slog.Logger

	latest *selfupdate.Release
}

// New creates an Updater for the given "owner/name" repository slug.
// Returns an error when the binary's directory is not writable, since an
// update could never be applied.
func New(repository string, prerelease bool) (*Updater, error) {
	if err := checkWritePermission(); err != nil {
		return nil, err
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	u, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Updater{
		repository: selfupdate.ParseSlug(repository),
		updater:    u,
		logger:     logging.GetLogger("updater"),
	}, nil
}

// CheckForUpdate queries the repository for the latest release and compares
// it against the running version without downloading anything.
func (u *Updater) CheckForUpdate(ctx context.Context) (*UpdateInfo, error) {
	current := version.Version

	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("repository has no releases")
	}

	// A dev build is always considered outdated.
	newer := current == "dev" || release.GreaterThan(current)
	info := &UpdateInfo{
		CurrentVersion:  current,
		LatestVersion:   release.Version(),
		UpdateAvailable: newer,
	}
	if newer {
		info.ReleaseNotes = release.ReleaseNotes
		info.ReleaseURL = release.URL
		info.PublishedAt = &release.PublishedAt
		u.latest = release
	}
	return info, nil
}

// ApplyUpdate downloads the latest release and replaces the running binary.
// Runs a check first if none has been done.
func (u *Updater) ApplyUpdate(ctx context.Context) error {
	if u.latest == nil {
		info, err := u.CheckForUpdate(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return fmt.Errorf("already running the latest version %s", info.CurrentVersion)
		}
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	u.logger.Info("Applying update", "version", u.latest.Version())
	if err := u.updater.UpdateTo(ctx, u.latest, exe); err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}
	u.logger.Info("Update applied", "version", u.latest.Version())
	return nil
}

// checkWritePermission verifies the binary's directory accepts new files.
func checkWritePermission() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(exe), ".winevat.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("no write permission to %s: %w", filepath.Dir(exe), err)
	}
	f.Close()
	os.Remove(tmp)
	return nil
}
