package filters

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type fakeMemberAPI struct {
	status string
	calls  int
}

func (f *fakeMemberAPI) GetChatMember(_ tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.calls++
	return tgbotapi.ChatMember{Status: f.status}, nil
}

func groupMessage(chatID, userID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID, Type: "supergroup"},
		From: &tgbotapi.User{ID: userID},
	}
}

func privateMessage(userID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		From: &tgbotapi.User{ID: userID},
	}
}

func TestCheckAccessHomeChat(t *testing.T) {
	f := NewChatFilter(-100, &fakeMemberAPI{status: "left"})

	assert.True(t, f.CheckAccess(groupMessage(-100, 1)))
	assert.False(t, f.CheckAccess(groupMessage(-200, 1)), "чужая группа")
	assert.False(t, f.CheckAccess(nil))
}

func TestCheckAccessDisabledFilter(t *testing.T) {
	f := NewChatFilter(0, &fakeMemberAPI{status: "left"})
	assert.True(t, f.CheckAccess(groupMessage(-999, 1)), "CHAT_ID=0 — фильтр выключен")
}

func TestCheckAccessPrivateMember(t *testing.T) {
	api := &fakeMemberAPI{status: "member"}
	f := NewChatFilter(-100, api)

	assert.True(t, f.CheckAccess(privateMessage(7)))
	assert.True(t, f.CheckAccess(privateMessage(7)))
	assert.Equal(t, 1, api.calls, "положительный ответ кэшируется")
}

func TestCheckAccessPrivateStranger(t *testing.T) {
	f := NewChatFilter(-100, &fakeMemberAPI{status: "left"})
	assert.False(t, f.CheckAccess(privateMessage(7)))
}
