package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Local writes images under a directory that the HTTP server exposes at
// URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{Dir: dir, URLPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

func (l *Local) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	extension, err := ValidateImage(file)
	if err != nil {
		return "", err
	}

	name := objectName(extension)
	fullPath := filepath.Join(l.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		zap.S().Errorf("[UPLOAD] Local.Save: failed to create directory for %s: %v", fullPath, err)
		return "", err
	}

	out, err := os.Create(fullPath)
	if err != nil {
		zap.S().Errorf("[UPLOAD] Local.Save: failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		zap.S().Errorf("[UPLOAD] Local.Save: failed to open upload %s: %v", file.Filename, err)
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		zap.S().Errorf("[UPLOAD] Local.Save: failed to write %s: %v", fullPath, err)
		_ = os.Remove(fullPath)
		return "", err
	}

	zap.S().Infof("[UPLOAD] Local.Save: stored %s (%d bytes)", name, file.Size)
	return l.URLPrefix + "/" + name, nil
}

func (l *Local) Delete(_ context.Context, ref string) error {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" || !strings.HasPrefix(trimmed, l.URLPrefix+"/") {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, l.URLPrefix+"/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")
	if !strings.HasPrefix(cleanRel, "products/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", ref)
	}

	cleanBase := filepath.Clean(l.Dir)
	cleanTarget := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(cleanRel)))
	if !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload dir: %s", ref)
	}

	if err := os.Remove(cleanTarget); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
