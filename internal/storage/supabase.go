package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"
)

// Supabase stores images in a public Supabase Storage bucket through its
// REST API.
type Supabase struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewSupabase(baseURL, serviceKey, bucket string, httpClient *http.Client) *Supabase {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Supabase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: httpClient,
	}
}

func (s *Supabase) objectURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)
}

func (s *Supabase) publicPrefix() string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/", s.baseURL, s.bucket)
}

func (s *Supabase) headers(contentType string) gout.H {
	h := gout.H{
		"Authorization": "Bearer " + s.serviceKey,
		"apikey":        s.serviceKey,
	}
	if contentType != "" {
		h["Content-Type"] = contentType
		h["x-upsert"] = "false"
	}
	return h
}

func (s *Supabase) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	extension, err := ValidateImage(file)
	if err != nil {
		return "", err
	}

	in, err := file.Open()
	if err != nil {
		return "", err
	}
	defer in.Close()

	body, err := io.ReadAll(io.LimitReader(in, MaxImageSize+1))
	if err != nil {
		return "", err
	}
	if len(body) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	name := objectName(extension)
	var (
		code     int
		response string
	)
	err = gout.New(s.httpClient).POST(s.objectURL(name)).
		WithContext(ctx).
		SetHeader(s.headers(contentTypeFor(extension))).
		SetBody(body).
		BindBody(&response).
		Code(&code).
		Do()
	if err != nil {
		zap.S().Errorf("[UPLOAD] Supabase.Save: request failed for %s: %v", name, err)
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if code < 200 || code >= 300 {
		zap.S().Errorf("[UPLOAD] Supabase.Save: status %d for %s: %s", code, name, response)
		return "", fmt.Errorf("upload %s: storage responded %d", name, code)
	}

	zap.S().Infof("[UPLOAD] Supabase.Save: stored %s in bucket %s", name, s.bucket)
	return s.publicPrefix() + name, nil
}

func (s *Supabase) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(strings.TrimSpace(ref), s.publicPrefix())
	if !ok || name == "" {
		return nil
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("refusing to delete object outside bucket: %s", ref)
	}

	var code int
	err := gout.New(s.httpClient).DELETE(s.objectURL(name)).
		WithContext(ctx).
		SetHeader(s.headers("")).
		Code(&code).
		Do()
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if code == http.StatusNotFound {
		return nil
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("delete %s: storage responded %d", name, code)
	}
	return nil
}
