// Package installer provisions Ant installations automatically: when a
// registered installation names a download URL and its home directory is
// not present yet, the archive is fetched and unpacked under the tools
// directory.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	resty "resty.dev/v3"

	"github.com/fugi/antrun/internal/ctxlog"
	"github.com/fugi/antrun/internal/install"
)

// Installer downloads and unpacks tool distributions.
type Installer struct {
	client   *resty.Client
	toolsDir string
}

// New creates an Installer rooted at toolsDir.
func New(toolsDir string) *Installer {
	return &Installer{
		client:   resty.New(),
		toolsDir: toolsDir,
	}
}

// Close releases the underlying HTTP client.
func (ins *Installer) Close() error {
	return ins.client.Close()
}

// Ensure makes the installation available on disk and returns its home
// directory. If the home already holds an unpacked distribution, Ensure
// is a no-op. Otherwise the archive at the installation's download URL is
// fetched and unpacked; archives with a single top-level directory are
// flattened so the home points directly at the distribution root.
func (ins *Installer) Ensure(ctx context.Context, inst install.Installation) (string, error) {
	logger := ctxlog.FromContext(ctx).With("installation", inst.Name)

	home := filepath.Join(ins.toolsDir, inst.Name)
	if isProvisioned(home) {
		logger.Debug("Installation already provisioned.", "home", home)
		return home, nil
	}

	if inst.DownloadURL == "" {
		return "", fmt.Errorf("installation %q is not present at %s and has no download URL", inst.Name, home)
	}

	logger.Info("Downloading tool distribution.", "url", inst.DownloadURL)
	res, err := ins.client.R().SetContext(ctx).Get(inst.DownloadURL)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", inst.DownloadURL, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("downloading %s: unexpected status %s", inst.DownloadURL, res.Status())
	}

	staging := home + ".part"
	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("clearing staging dir: %w", err)
	}

	archive := res.Bytes()
	switch {
	case strings.HasSuffix(inst.DownloadURL, ".zip"):
		err = unzip(archive, staging)
	case strings.HasSuffix(inst.DownloadURL, ".tar.gz"), strings.HasSuffix(inst.DownloadURL, ".tgz"):
		err = untarGz(archive, staging)
	default:
		err = fmt.Errorf("unsupported archive format in %s", inst.DownloadURL)
	}
	if err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("unpacking %s: %w", inst.DownloadURL, err)
	}

	if err := flattenSingleRoot(staging); err != nil {
		os.RemoveAll(staging)
		return "", err
	}

	if err := os.Rename(staging, home); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("activating %s: %w", home, err)
	}

	logger.Info("Tool distribution installed.", "home", home)
	return home, nil
}

// isProvisioned checks for the tool launcher scripts rather than just the
// directory, so an interrupted earlier unpack does not pass for a working
// installation.
func isProvisioned(home string) bool {
	for _, candidate := range []string{"ant", "ant.bat"} {
		if _, err := os.Stat(filepath.Join(home, "bin", candidate)); err == nil {
			return true
		}
	}
	return false
}

// flattenSingleRoot lifts the contents of a lone top-level directory up
// one level. Distribution archives conventionally wrap everything in a
// versioned directory like apache-ant-1.10.14/.
func flattenSingleRoot(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	root := filepath.Join(dir, entries[0].Name())
	inner, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range inner {
		if err := os.Rename(filepath.Join(root, entry.Name()), filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return os.Remove(root)
}
