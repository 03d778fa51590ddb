package domain

// ChatRole チャットメッセージの話者
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	// ChatRoleModel 生成AI側の呼称（assistant をこれに読み替える）
	ChatRoleModel ChatRole = "model"
)

// ChatMessage チャットウィジェットから届くメッセージ
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatTurn 生成AIへ渡す会話履歴の1ターン
type ChatTurn struct {
	Role ChatRole
	Text string
}

// Weather 天気情報
type Weather struct {
	City        string
	Temperature float64
	Condition   string
	Humidity    int
}
