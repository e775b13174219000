// Package packagestore materializes problem packages (input, answer,
// checker, optional interactor) onto the local filesystem from object
// storage, the rclone-equivalent collaborator named but left concrete-free by
// the judging core's external interfaces.
package packagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/judgecore/judgecore/internal/jcerr"
)

// ProblemPackage is the local filesystem layout of a synced problem.
type ProblemPackage struct {
	Dir            string
	InputPath      string
	AnswerPath     string
	CheckerPath    string
	InteractorPath string // empty if the problem has no interactor
}

// Config configures the object-storage endpoint packages are synced from.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// WorkRoot is the local directory packages are synced into, one
	// subdirectory per slug.
	WorkRoot string
}

// Store syncs problem packages from a bucket prefix per slug into a local
// work directory, skipping the download when an up-to-date copy already
// exists.
type Store struct {
	client   *minio.Client
	bucket   string
	workRoot string
}

// New connects a Store to the object-storage endpoint described by cfg.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, jcerr.New(jcerr.Io, err)
	}
	return &Store{client: client, bucket: cfg.Bucket, workRoot: cfg.WorkRoot}, nil
}

const versionMarkerName = ".synced-etag"

// Sync downloads the objects under the "<slug>/" prefix into
// "<workroot>/<slug>/" unless a previous sync already pulled the same
// version, identified by the slug's manifest ETag.
func (s *Store) Sync(ctx context.Context, slug string) (ProblemPackage, error) {
	dir := filepath.Join(s.workRoot, slug)
	pkg := ProblemPackage{
		Dir:            dir,
		InputPath:      filepath.Join(dir, "input"),
		AnswerPath:     filepath.Join(dir, "answer"),
		CheckerPath:    filepath.Join(dir, "checker"),
		InteractorPath: filepath.Join(dir, "interactor"),
	}

	manifestKey := slug + "/input"
	info, err := s.client.StatObject(ctx, s.bucket, manifestKey, minio.StatObjectOptions{})
	if err != nil {
		return ProblemPackage{}, jcerr.New(jcerr.Io, err)
	}

	if markerMatches(dir, info.ETag) {
		if _, err := os.Stat(pkg.InteractorPath); err != nil {
			pkg.InteractorPath = ""
		}
		return pkg, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ProblemPackage{}, jcerr.New(jcerr.Io, err)
	}

	required := map[string]string{
		"input":   pkg.InputPath,
		"answer":  pkg.AnswerPath,
		"checker": pkg.CheckerPath,
	}
	for name, destPath := range required {
		if err := s.downloadObject(ctx, slug+"/"+name, destPath, name == "checker"); err != nil {
			return ProblemPackage{}, err
		}
	}

	hasInteractor, err := s.downloadOptionalObject(ctx, slug+"/interactor", pkg.InteractorPath)
	if err != nil {
		return ProblemPackage{}, err
	}
	if !hasInteractor {
		pkg.InteractorPath = ""
	}

	if err := writeMarker(dir, info.ETag); err != nil {
		return ProblemPackage{}, err
	}
	return pkg, nil
}

func (s *Store) downloadObject(ctx context.Context, objectKey, destPath string, executable bool) error {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return jcerr.New(jcerr.Io, err)
	}
	defer obj.Close()

	mode := os.FileMode(0o644)
	if executable {
		mode = 0o755
	}
	dest, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return jcerr.New(jcerr.Io, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, obj); err != nil {
		return jcerr.New(jcerr.Io, err)
	}
	return nil
}

// downloadOptionalObject reports whether objectKey exists and, if so,
// downloads it as an executable.
func (s *Store) downloadOptionalObject(ctx context.Context, objectKey, destPath string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, jcerr.New(jcerr.Io, err)
	}
	if err := s.downloadObject(ctx, objectKey, destPath, true); err != nil {
		return false, err
	}
	return true, nil
}

func markerMatches(dir, etag string) bool {
	data, err := os.ReadFile(filepath.Join(dir, versionMarkerName))
	if err != nil {
		return false
	}
	return string(data) == etag
}

func writeMarker(dir, etag string) error {
	if err := os.WriteFile(filepath.Join(dir, versionMarkerName), []byte(etag), 0o644); err != nil {
		return jcerr.New(jcerr.Io, fmt.Errorf("writing sync marker: %w", err))
	}
	return nil
}
