// Package provision makes the province boundary dataset available at a fixed
// local path, downloading it once when the file is absent.
//
// A file present at the cache path is trusted as-is: there is no expiry and
// no checksum verification. Removing the file is the only way to refresh it.
package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/juju/utils/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/province-map/internal/boundary"
	"github.com/sells-group/province-map/internal/fetcher"
	"github.com/sells-group/province-map/internal/model"
)

// Recorder receives one row per provisioning outcome. store.Store satisfies
// it.
type Recorder interface {
	RecordProvision(ctx context.Context, p model.Provision) (*model.Provision, error)
}

// Options configures a Provisioner.
type Options struct {
	// Path is the local cache file.
	Path string
	// URLs are the remote sources, tried in order once each.
	URLs []string
	// Features is the exact feature count a download must have.
	// Zero means boundary.ProvinceCount.
	Features int
	// Recorder is optional.
	Recorder Recorder
}

// Provisioner guarantees the boundary dataset exists at Options.Path.
type Provisioner struct {
	fetcher fetcher.Fetcher
	opts    Options
	log     *zap.Logger
}

// New creates a Provisioner. f performs the downloads.
func New(f fetcher.Fetcher, opts Options) (*Provisioner, error) {
	if f == nil {
		return nil, eris.New("provision: fetcher is required")
	}
	if opts.Path == "" {
		return nil, eris.New("provision: path is required")
	}
	if len(opts.URLs) == 0 {
		return nil, eris.New("provision: at least one source URL is required")
	}
	if opts.Features <= 0 {
		opts.Features = boundary.ProvinceCount
	}
	return &Provisioner{
		fetcher: f,
		opts:    opts,
		log: zap.L().With(
			zap.String("component", "provision"),
			zap.String("path", opts.Path),
		),
	}, nil
}

// PresentOrFetch returns path when a file exists there, otherwise downloads
// url into it. It is Ensure for a single source without history.
func PresentOrFetch(ctx context.Context, f fetcher.Fetcher, path, url string) (string, error) {
	p, err := New(f, Options{Path: path, URLs: []string{url}})
	if err != nil {
		return "", err
	}
	return p.Ensure(ctx)
}

// Path returns the configured cache path.
func (p *Provisioner) Path() string {
	return p.opts.Path
}

// Ensure returns the cache path, downloading the dataset first when no file
// exists there. Sources are tried in order and each is requested at most
// once. Fetch failures are *ProvisionError, local I/O failures are
// *StorageError. A failed call never leaves a file at the cache path.
func (p *Provisioner) Ensure(ctx context.Context) (string, error) {
	present, err := p.present()
	if err != nil {
		return "", err
	}
	if present {
		p.log.Debug("boundary dataset present, skipping download")
		p.record(ctx, model.Provision{Path: p.opts.Path, Status: model.ProvisionStatusCached})
		return p.opts.Path, nil
	}

	dir := filepath.Dir(p.opts.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "create dir", Path: dir, Err: err}
	}

	var lastErr error
	for _, url := range p.opts.URLs {
		log := p.log.With(zap.String("url", url))
		log.Info("downloading boundary dataset")

		res, err := p.fetchTo(ctx, url)
		if err != nil {
			log.Warn("boundary dataset download failed", zap.Error(err))
			p.record(ctx, model.Provision{
				URL:    url,
				Path:   p.opts.Path,
				Status: model.ProvisionStatusFailed,
				Error:  err.Error(),
			})

			var serr *StorageError
			if errors.As(err, &serr) {
				return "", err
			}
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		log.Info("boundary dataset written",
			zap.Int64("bytes", res.Bytes),
			zap.String("sha256", res.SHA256),
		)
		p.record(ctx, res)
		return p.opts.Path, nil
	}

	return "", lastErr
}

// Load ensures the dataset and decodes it.
func (p *Provisioner) Load(ctx context.Context) (*boundary.Dataset, error) {
	path, err := p.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := boundary.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "provision: load dataset")
	}
	return ds, nil
}

func (p *Provisioner) present() (bool, error) {
	info, err := os.Stat(p.opts.Path)
	switch {
	case err == nil && info.IsDir():
		return false, &StorageError{Op: "stat", Path: p.opts.Path, Err: eris.New("is a directory")}
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &StorageError{Op: "stat", Path: p.opts.Path, Err: err}
	}
}

// fetchTo downloads url fully into memory, validates it, and commits it to
// the cache path with a temp-file rename.
func (p *Provisioner) fetchTo(ctx context.Context, url string) (model.Provision, error) {
	body, err := p.fetcher.Download(ctx, url)
	if err != nil {
		return model.Provision{}, &ProvisionError{URL: url, Err: err}
	}
	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return model.Provision{}, &ProvisionError{URL: url, Err: eris.Wrap(err, "read body")}
	}

	ds, err := boundary.Parse(data)
	if err != nil {
		return model.Provision{}, &ProvisionError{URL: url, Err: err}
	}
	if err := boundary.Validate(ds, p.opts.Features); err != nil {
		return model.Provision{}, &ProvisionError{URL: url, Err: err}
	}

	if err := writeAtomic(p.opts.Path, data); err != nil {
		return model.Provision{}, err
	}

	sum := sha256.Sum256(data)
	return model.Provision{
		URL:    url,
		Path:   p.opts.Path,
		Status: model.ProvisionStatusFetched,
		Bytes:  int64(len(data)),
		SHA256: hex.EncodeToString(sum[:]),
	}, nil
}

// writeAtomic writes data to a temp file beside path and renames it into
// place. The temp file is removed on failure.
func writeAtomic(path string, data []byte) error {
	// A bare file name would put the temp file in os.TempDir, which may be on
	// another filesystem than path.
	abs, err := filepath.Abs(path)
	if err != nil {
		return &StorageError{Op: "resolve", Path: path, Err: err}
	}
	if err := utils.AtomicWriteFile(abs, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (p *Provisioner) record(ctx context.Context, row model.Provision) {
	if p.opts.Recorder == nil {
		return
	}
	if _, err := p.opts.Recorder.RecordProvision(ctx, row); err != nil {
		p.log.Warn("failed to record provision", zap.Error(err))
	}
}
