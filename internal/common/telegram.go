package common

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender — минимальная поверхность Telegram API, нужная хэндлерам.
// *tgbotapi.BotAPI её реализует, тесты подставляют запись в память.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ReplyTo строит ответ на сообщение пользователя.
func ReplyTo(msg *tgbotapi.Message, text string) tgbotapi.MessageConfig {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	return reply
}

// UserKey — строковый ключ пользователя в хранилище.
func UserKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// DisplayName — имя для упоминания: username, иначе имя.
func DisplayName(user *tgbotapi.User) string {
	if user == nil {
		return "unknown"
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return user.FirstName
}
