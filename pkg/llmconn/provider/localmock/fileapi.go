package localmock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 内存文件存储
// ═══════════════════════════════════════════════════════════════════════════

// fileEntry 内存中的文件
type fileEntry struct {
	handle  *llmconn.FileHandle
	content []byte
}

// fileStore 内存文件存储
type fileStore struct {
	mu      sync.Mutex
	entries map[string]*fileEntry
	order   []string // 上传顺序，用于 List
}

func newFileStore() *fileStore {
	return &fileStore{entries: make(map[string]*fileEntry)}
}

// fileService 文件服务
//
// 实现 [llmconn.FileAPI] 接口，所有内容保存在内存中。
type fileService struct {
	client *Client
}

// Upload 上传文件
func (s *fileService) Upload(ctx context.Context, content []byte, filename string, purpose llmconn.Purpose) (string, error) {
	if len(content) == 0 {
		return "", llmconn.NewFileError("file content is empty", nil)
	}
	if filename == "" {
		filename = "upload.bin"
	}

	id := "file_" + uuid.NewString()
	entry := &fileEntry{
		handle: &llmconn.FileHandle{
			ID:        id,
			Filename:  filename,
			Purpose:   purpose,
			Bytes:     int64(len(content)),
			CreatedAt: time.Now().Unix(),
			Status:    "processed",
		},
		content: append([]byte(nil), content...),
	}

	store := s.client.files
	store.mu.Lock()
	store.entries[id] = entry
	store.order = append(store.order, id)
	store.mu.Unlock()

	return id, nil
}

// Retrieve 获取文件元数据
func (s *fileService) Retrieve(ctx context.Context, id string) (*llmconn.FileHandle, error) {
	store := s.client.files
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[id]
	if !ok {
		return nil, llmconn.NewNotFoundError(id, "")
	}

	handle := *entry.handle
	return &handle, nil
}

// Download 下载文件内容
func (s *fileService) Download(ctx context.Context, id string) ([]byte, error) {
	store := s.client.files
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[id]
	if !ok {
		return nil, llmconn.NewNotFoundError(id, "")
	}

	return append([]byte(nil), entry.content...), nil
}

// Delete 删除文件
func (s *fileService) Delete(ctx context.Context, id string) error {
	store := s.client.files
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.entries[id]; !ok {
		return llmconn.NewNotFoundError(id, "")
	}

	delete(store.entries, id)
	for i, fid := range store.order {
		if fid == id {
			store.order = append(store.order[:i], store.order[i+1:]...)
			break
		}
	}
	return nil
}

// List 列出文件（按上传顺序）
func (s *fileService) List(ctx context.Context) ([]*llmconn.FileHandle, error) {
	store := s.client.files
	store.mu.Lock()
	defer store.mu.Unlock()

	files := make([]*llmconn.FileHandle, 0, len(store.order))
	for _, id := range store.order {
		handle := *store.entries[id].handle
		files = append(files, &handle)
	}
	return files, nil
}

// 确保 fileService 实现了接口
var _ llmconn.FileAPI = (*fileService)(nil)
