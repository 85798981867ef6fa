package anthropic

import (
	"context"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// 文件服务 (beta Files API)
// ═══════════════════════════════════════════════════════════════════════════

// filesBetaHeader Files API 处于 beta，所有请求需要此头
const filesBetaHeader = "files-api-2025-04-14"

// fileService 文件服务
//
// 实现 [llmconn.FileAPI] 接口，封装 Anthropic beta Files API。
//
// 与 OpenAI 的差异：
//   - 所有请求需要 anthropic-beta 头
//   - 上传不使用 purpose 参数（按 MIME 类型自动归类）
//   - 元数据字段为 size_bytes / mime_type
type fileService struct {
	client *Client
}

// betaHeaders Files API 的 beta 请求头
func betaHeaders() map[string]string {
	return map[string]string{"anthropic-beta": filesBetaHeader}
}

// Upload 上传文件
//
// purpose 参数被忽略（Anthropic 按 MIME 类型自动归类）。
// 返回服务端分配的文件 ID。
func (s *fileService) Upload(ctx context.Context, content []byte, filename string, purpose llmconn.Purpose) (string, error) {
	if len(content) == 0 {
		return "", llmconn.NewFileError("file content is empty", nil)
	}
	if filename == "" {
		filename = "upload.bin"
	}

	resp, err := s.client.base.UploadMultipart(ctx, "/files", "file", filename, content, nil, betaHeaders())
	if err != nil {
		return "", err
	}

	id := core.GetString(resp["id"])
	if id == "" {
		return "", llmconn.NewFileError("upload response missing file id", nil)
	}
	return id, nil
}

// Retrieve 获取文件元数据
func (s *fileService) Retrieve(ctx context.Context, id string) (*llmconn.FileHandle, error) {
	if id == "" {
		return nil, llmconn.NewFileError("file id is required", nil)
	}

	resp, err := s.client.base.GetJSON(ctx, "/files/"+id, nil, betaHeaders())
	if err != nil {
		return nil, err
	}

	return parseFileHandle(resp), nil
}

// Download 下载文件内容
//
// 仅 API 生成的文件（如代码执行产物）可下载，
// 用户上传的文件下载会返回错误。
func (s *fileService) Download(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, llmconn.NewFileError("file id is required", nil)
	}

	return s.client.base.Download(ctx, "/files/"+id+"/content", betaHeaders())
}

// Delete 删除文件
func (s *fileService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return llmconn.NewFileError("file id is required", nil)
	}

	_, err := s.client.base.DeleteJSON(ctx, "/files/"+id, betaHeaders())
	return err
}

// List 列出文件
func (s *fileService) List(ctx context.Context) ([]*llmconn.FileHandle, error) {
	resp, err := s.client.base.GetJSON(ctx, "/files", nil, betaHeaders())
	if err != nil {
		return nil, err
	}

	data, _ := resp["data"].([]any)
	files := make([]*llmconn.FileHandle, 0, len(data))
	for _, item := range data {
		files = append(files, parseFileHandle(core.GetMap(item)))
	}
	return files, nil
}

// parseFileHandle 解析 Anthropic 文件对象
func parseFileHandle(resp map[string]any) *llmconn.FileHandle {
	return &llmconn.FileHandle{
		ID:        core.GetString(resp["id"]),
		Filename:  core.GetString(resp["filename"]),
		Bytes:     core.GetInt64(resp["size_bytes"]),
		CreatedAt: core.ParseUnixOrRFC3339(resp["created_at"]),
	}
}

// 确保 fileService 实现了接口
var _ llmconn.FileAPI = (*fileService)(nil)
