package assistant

import (
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type IntentType string

const (
	IntentTimesheetCreate  IntentType = "TIMESHEET_CREATE"
	IntentTimesheetSubmit  IntentType = "TIMESHEET_SUBMIT"
	IntentTimesheetQuery   IntentType = "TIMESHEET_QUERY"
	IntentValidationQuery  IntentType = "VALIDATION_QUERY"
	IntentValidationAction IntentType = "VALIDATION_ACTION"
	IntentProjectQuery     IntentType = "PROJECT_QUERY"
	IntentConsultantQuery  IntentType = "CONSULTANT_QUERY"
	IntentDashboardQuery   IntentType = "DASHBOARD_QUERY"
	IntentHelp             IntentType = "HELP"
	IntentUnknown          IntentType = "UNKNOWN"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// IntentParams holds what the classifier could extract from the message, all optional.
type IntentParams struct {
	Days     *decimal.Decimal `json:"days,omitempty"`
	Project  string           `json:"project,omitempty"`
	Period   string           `json:"period,omitempty"`
	Decision string           `json:"decision,omitempty"`
}

type Intent struct {
	Type       IntentType   `json:"type"`
	Params     IntentParams `json:"params"`
	Confidence float64      `json:"confidence"`
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Conversation struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId" gorm:"index:chat_conversation_user_idx"`
	Title  string   `json:"title"`

	CreateTime time.Time `json:"createTime"`
}

func (c *Conversation) TableName() string {
	return "chat_conversations"
}

type ChatMessage struct {
	ID             types.ID    `json:"id" gorm:"primary_key"`
	ConversationID types.ID    `json:"conversationId" gorm:"index:chat_message_conversation_idx"`
	Role           MessageRole `json:"role" sql:"type:VARCHAR(16)"`
	Content        string      `json:"content" sql:"type:TEXT"`
	Intent         IntentType  `json:"intent,omitempty" sql:"type:VARCHAR(32)"`

	CreateTime time.Time `json:"createTime"`
}

func (m *ChatMessage) TableName() string {
	return "chat_messages"
}

type ChatRequest struct {
	Message        string   `json:"message" binding:"required,lte=1000"`
	ConversationID types.ID `json:"conversationId"`
}

type ChatReply struct {
	Response       string      `json:"response"`
	Intent         Intent      `json:"intent"`
	Data           interface{} `json:"data"`
	ConversationID types.ID    `json:"conversationId"`
}

type ConversationSummary struct {
	Conversation
	LastMessage string `json:"lastMessage"`
}
