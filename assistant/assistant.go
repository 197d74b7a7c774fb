package assistant

import (
	"staffing/bizerror"
	"staffing/common"
	"staffing/idgen"
	"staffing/persistence"
	"staffing/session"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const titleLength = 60

var (
	chatIdWorker = idgen.NewWorker()

	HandleMessageFunc      = HandleMessage
	QueryConversationsFunc = QueryConversations
	QueryMessagesFunc      = QueryMessages
)

func title(message string) string {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) <= titleLength {
		return message
	}
	return string([]rune(message)[:titleLength]) + "…"
}

func findConversation(db *gorm.DB, id types.ID, sec *session.Session) (*Conversation, error) {
	c := Conversation{}
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, bizerror.OrNotFound(err)
	}
	if c.UserID != sec.Identity.ID && !sec.Role.CanManageUsers() {
		return nil, bizerror.ErrForbidden
	}
	return &c, nil
}

func saveMessage(db *gorm.DB, conversationID types.ID, role MessageRole, content string, intent IntentType) error {
	return db.Create(&ChatMessage{ID: idgen.NextID(chatIdWorker), ConversationID: conversationID, Role: role,
		Content: content, Intent: intent, CreateTime: time.Now()}).Error
}

// HandleMessage stores the message, runs the detected intent and stores the reply.
func HandleMessage(req *ChatRequest, sec *session.Session) (*ChatReply, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())

	var conversation *Conversation
	if req.ConversationID != 0 {
		c, err := findConversation(db, req.ConversationID, sec)
		if err != nil {
			return nil, err
		}
		if c.UserID != sec.Identity.ID {
			return nil, bizerror.ErrForbidden
		}
		conversation = c
	} else {
		conversation = &Conversation{ID: idgen.NextID(chatIdWorker), UserID: sec.Identity.ID, Title: title(req.Message), CreateTime: time.Now()}
		if err := db.Create(conversation).Error; err != nil {
			return nil, err
		}
	}
	if err := saveMessage(db, conversation.ID, RoleUser, req.Message, ""); err != nil {
		return nil, err
	}

	intent := DetectIntent(req.Message)
	data, err := execute(intent, sec)
	if err != nil {
		_, body := bizerror.Translate(err)
		common.Log.WithFields(logrus.Fields{"intent": intent.Type, "userId": sec.Identity.ID}).Info("assistant action refused: ", err)
		data = &ActionFailure{Code: body.Code, Error: body.Message}
	}

	reply := respond(sec.Ctx(), req.Message, intent, data)
	if err := saveMessage(db, conversation.ID, RoleAssistant, reply, intent.Type); err != nil {
		return nil, err
	}
	return &ChatReply{Response: reply, Intent: intent, Data: data, ConversationID: conversation.ID}, nil
}

// QueryConversations lists the caller's conversations, most recent first, with their last message.
func QueryConversations(sec *session.Session) ([]ConversationSummary, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	var conversations []Conversation
	if err := db.Where("user_id = ?", sec.Identity.ID).Order("create_time DESC, id DESC").Find(&conversations).Error; err != nil {
		return nil, err
	}
	result := make([]ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		summary := ConversationSummary{Conversation: c}
		last := ChatMessage{}
		err := db.Where("conversation_id = ?", c.ID).Order("create_time DESC, id DESC").First(&last).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return nil, err
		}
		summary.LastMessage = last.Content
		result = append(result, summary)
	}
	return result, nil
}

// QueryMessages returns a conversation in chronological order, for its owner or an administrator.
func QueryMessages(conversationID types.ID, sec *session.Session) ([]ChatMessage, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if _, err := findConversation(db, conversationID, sec); err != nil {
		return nil, err
	}
	messages := []ChatMessage{}
	if err := db.Where("conversation_id = ?", conversationID).Order("create_time ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
