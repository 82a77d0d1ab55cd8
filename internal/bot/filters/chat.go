// Package filters отсекает сообщения из чужих чатов до обработчиков.
package filters

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// chatMemberAPI — кусок Telegram API, нужный фильтру. Отдельный интерфейс,
// чтобы в тестах не поднимать настоящий *tgbotapi.BotAPI.
type chatMemberAPI interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// ChatFilter пропускает сообщения из основного чата и личные сообщения
// участников основного чата. При homeChatID == 0 фильтрация выключена.
type ChatFilter struct {
	homeChatID int64
	api        chatMemberAPI

	mu      sync.Mutex
	members map[int64]bool // кэш положительных ответов GetChatMember
}

// NewChatFilter создаёт фильтр для чата homeChatID.
func NewChatFilter(homeChatID int64, api chatMemberAPI) *ChatFilter {
	return &ChatFilter{
		homeChatID: homeChatID,
		api:        api,
		members:    make(map[int64]bool),
	}
}

// CheckAccess сообщает, обрабатывать ли сообщение.
func (f *ChatFilter) CheckAccess(message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil || message.From == nil {
		return false
	}
	if f.homeChatID == 0 {
		return true
	}
	if message.Chat.ID == f.homeChatID {
		return true
	}

	// Личка: пускаем только участников основного чата, ответ кэшируем.
	if message.Chat.IsPrivate() {
		userID := message.From.ID

		f.mu.Lock()
		cached := f.members[userID]
		f.mu.Unlock()
		if cached {
			return true
		}

		cm, err := f.api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: f.homeChatID,
				UserID: userID,
			},
		})
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("GetChatMember не ответил")
			return false
		}

		switch cm.Status {
		case "creator", "administrator", "member", "restricted":
			f.mu.Lock()
			f.members[userID] = true
			f.mu.Unlock()
			return true
		}

		log.WithFields(log.Fields{
			"user_id":   userID,
			"tg_status": cm.Status,
		}).Debug("личка от не-участника отклонена")
		return false
	}

	return false
}
