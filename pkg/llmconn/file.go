package llmconn

// ═══════════════════════════════════════════════════════════════════════════
// 文件类型
// ═══════════════════════════════════════════════════════════════════════════

// Purpose 文件用途
//
// OpenAI/Groq 在上传时要求指定；Anthropic 的 Files API 不使用此参数，
// 按 MIME 类型自动归类（传入值被忽略）。
type Purpose string

const (
	PurposeBatch      Purpose = "batch"
	PurposeFineTune   Purpose = "fine-tune"
	PurposeAssistants Purpose = "assistants"
	PurposeUserData   Purpose = "user_data"
)

// String 返回字符串表示
func (p Purpose) String() string {
	return string(p)
}

// FileHandle 已上传文件的句柄
type FileHandle struct {
	ID        string  `json:"id"`
	Filename  string  `json:"filename,omitempty"`
	Purpose   Purpose `json:"purpose,omitempty"`
	Bytes     int64   `json:"bytes,omitempty"`
	CreatedAt int64   `json:"created_at,omitempty"` // Unix 秒
	Status    string  `json:"status,omitempty"`
}
