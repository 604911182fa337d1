package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Root folder names mirroring the shared drive layout.
const (
	FolderQuotationHistory = "QUOTATION_HISTORY"
	FolderCustomerPO       = "PO_KHACH_HANG"
	FolderSupplierPO       = "PO_NCC"
	FolderTrackingProof    = "TRACKING_PROOF"
	FolderProductImages    = "PRODUCT_IMAGES"
)

// BlobStore is a hierarchical file archive. EnsureFolder is
// create-if-absent; Upload returns a stable ref that Open resolves back
// to bytes. Implementations may be a local disk or a cloud drive.
type BlobStore interface {
	EnsureFolder(segments ...string) (string, error)
	Upload(folder, filename string, r io.Reader) (string, error)
	Open(ref string) (io.ReadCloser, error)
}

var unsafeSegment = regexp.MustCompile(`[\\/*?:"<>|]`)

// CleanSegment uppercases and strips filesystem-hostile characters from a
// folder segment (customer names come straight from user input).
func CleanSegment(s string) string {
	return unsafeSegment.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "")
}

// LocalStore keeps blobs under a root directory on disk. Refs are
// slash-separated paths relative to the root.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// EnsureFolder creates the nested folder chain and returns its ref.
func (s *LocalStore) EnsureFolder(segments ...string) (string, error) {
	cleaned := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = CleanSegment(seg)
		if seg == "" {
			return "", errors.New("empty folder segment")
		}
		cleaned = append(cleaned, seg)
	}
	rel := strings.Join(cleaned, "/")
	if err := os.MkdirAll(filepath.Join(s.root, filepath.FromSlash(rel)), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", rel, err)
	}
	return rel, nil
}

// Upload writes the stream into the folder and returns the blob's ref.
func (s *LocalStore) Upload(folder, filename string, r io.Reader) (string, error) {
	filename = filepath.Base(filepath.Clean(filename))
	if filename == "." || filename == string(os.PathSeparator) {
		return "", errors.New("invalid file name")
	}
	rel := filename
	if folder != "" {
		rel = folder + "/" + filename
	}

	path, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create blob %s: %w", rel, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", rel, err)
	}
	return rel, nil
}

// Open resolves a ref back to its content.
func (s *LocalStore) Open(ref string) (io.ReadCloser, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blob %s not found: %w", ref, err)
	}
	return f, nil
}

// resolve maps a ref to an absolute path, refusing anything that escapes
// the root.
func (s *LocalStore) resolve(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob ref %q", ref)
	}
	path := filepath.Join(s.root, clean)
	if !strings.HasPrefix(path, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob ref %q", ref)
	}
	return path, nil
}
