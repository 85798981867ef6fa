package openai

import (
	"context"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// 文件服务
// ═══════════════════════════════════════════════════════════════════════════

// fileService 文件服务
//
// 实现 [llmconn.FileAPI] 接口，封装 OpenAI Files API：
// multipart 上传、元数据查询、内容下载、删除、列表。
type fileService struct {
	client *Client
}

// Upload 上传文件
//
// OpenAI 要求 multipart 表单携带 file 与 purpose 两个字段。
// 返回服务端分配的文件 ID。
func (s *fileService) Upload(ctx context.Context, content []byte, filename string, purpose llmconn.Purpose) (string, error) {
	if len(content) == 0 {
		return "", llmconn.NewFileError("file content is empty", nil)
	}
	if filename == "" {
		filename = "upload.bin"
	}
	if purpose == "" {
		purpose = llmconn.PurposeUserData
	}

	resp, err := s.client.base.UploadMultipart(ctx, "/files", "file", filename, content,
		map[string]string{"purpose": purpose.String()}, nil)
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

	resp, err := s.client.base.GetJSON(ctx, "/files/"+id, nil, nil)
	if err != nil {
		return nil, err
	}

	return parseFileHandle(resp), nil
}

// Download 下载文件内容
func (s *fileService) Download(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, llmconn.NewFileError("file id is required", nil)
	}

	return s.client.base.Download(ctx, "/files/"+id+"/content", nil)
}

// Delete 删除文件
func (s *fileService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return llmconn.NewFileError("file id is required", nil)
	}

	_, err := s.client.base.DeleteJSON(ctx, "/files/"+id, nil)
	return err
}

// List 列出文件
func (s *fileService) List(ctx context.Context) ([]*llmconn.FileHandle, error) {
	resp, err := s.client.base.GetJSON(ctx, "/files", nil, nil)
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

// parseFileHandle 解析 OpenAI 文件对象
func parseFileHandle(resp map[string]any) *llmconn.FileHandle {
	return &llmconn.FileHandle{
		ID:        core.GetString(resp["id"]),
		Filename:  core.GetString(resp["filename"]),
		Purpose:   llmconn.Purpose(core.GetString(resp["purpose"])),
		Bytes:     core.GetInt64(resp["bytes"]),
		CreatedAt: core.GetInt64(resp["created_at"]),
		Status:    core.GetString(resp["status"]),
	}
}

// 确保 fileService 实现了接口
var _ llmconn.FileAPI = (*fileService)(nil)
