// handlers.go — команды предметов: !roll, !inventory, !sell, !sellall,
// !shop, !buy, !boxes.
package items

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/common"
)

// Handler связывает команды чата с сервисом предметов.
type Handler struct {
	svc    *Service
	sender common.Sender
}

// NewHandler создаёт обработчик команд предметов.
func NewHandler(svc *Service, sender common.Sender) *Handler {
	return &Handler{svc: svc, sender: sender}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if _, err := h.sender.Send(common.ReplyTo(msg, text)); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

func (h *Handler) replyInternalError(msg *tgbotapi.Message, err error, op string) {
	log.WithError(err).WithField("op", op).Error("ошибка обработки команды предметов")
	h.reply(msg, "Something went wrong, try again later.")
}

// HandleRoll — команда !roll.
func (h *Handler) HandleRoll(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Roll(ctx, userID)
	switch {
	case errors.Is(err, common.ErrInsufficientBalance):
		h.reply(msg, fmt.Sprintf("You need %s to roll for items!", common.FormatCoins(h.svc.RollCost())))
		return
	case err != nil:
		h.replyInternalError(msg, err, "roll")
		return
	}

	var b strings.Builder
	if res.Special != "" {
		fmt.Fprintf(&b, "💀 %s! 💀\n", res.Special)
	}
	fmt.Fprintf(&b, "🎲 You rolled: %s\n", res.Item)
	fmt.Fprintf(&b, "Rarity: %s | Value: %s | Owned: %d",
		res.Rarity, common.FormatCoins(res.Value), res.Quantity)
	h.reply(msg, b.String())
}

// HandleInventory — команда !inventory [page].
func (h *Handler) HandleInventory(ctx context.Context, msg *tgbotapi.Message, args []string) {
	userID := common.UserKey(msg.From.ID)

	page := 1
	if len(args) > 0 {
		if p, err := strconv.Atoi(args[0]); err == nil {
			page = p
		}
	}

	entries, pages, err := h.svc.InventoryPage(ctx, userID, page)
	if err != nil {
		h.replyInternalError(msg, err, "inventory")
		return
	}
	if pages == 0 {
		h.reply(msg, "📦 Your inventory is empty! Use !roll to get items.")
		return
	}
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 Your inventory (page %d/%d):\n", page, pages)
	for _, e := range entries {
		fmt.Fprintf(&b, "• %s x%d — %s (%s each)\n",
			e.Name, e.Quantity, e.Rarity, common.FormatCoins(e.Value))
	}
	h.reply(msg, b.String())
}

// HandleSell — команда !sell <item name>.
func (h *Handler) HandleSell(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		h.reply(msg, "Usage: !sell <item name>")
		return
	}
	userID := common.UserKey(msg.From.ID)
	name := strings.Join(args, " ")

	res, err := h.svc.Sell(ctx, userID, name)
	switch {
	case errors.Is(err, common.ErrItemNotFound):
		h.reply(msg, fmt.Sprintf("You don't have '%s' in your inventory. Use !inventory to see your items.", name))
	case errors.Is(err, common.ErrItemWorthless):
		h.reply(msg, fmt.Sprintf("'%s' has no value and cannot be sold.", name))
	case err != nil:
		h.replyInternalError(msg, err, "sell")
	default:
		h.reply(msg, fmt.Sprintf("💰 Sold %s for %s.", res.Item, common.FormatCoins(res.Credited)))
	}
}

// HandleSellAll — команда !sellall.
func (h *Handler) HandleSellAll(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.SellAll(ctx, userID)
	switch {
	case errors.Is(err, common.ErrItemNotFound):
		h.reply(msg, "📦 You don't have any items to sell!")
		return
	case errors.Is(err, common.ErrItemWorthless):
		h.reply(msg, "None of your items can be sold.")
		return
	case err != nil:
		h.replyInternalError(msg, err, "sellall")
		return
	}

	var b strings.Builder
	b.WriteString("💰 Sold everything:\n")
	for _, sold := range res.Sold {
		fmt.Fprintf(&b, "• %s (%s)\n", sold.Item, common.FormatCoins(sold.Credited))
	}
	fmt.Fprintf(&b, "Total credited: %s", common.FormatCoins(res.Credited))
	h.reply(msg, b.String())
}

// HandleShop — команда !shop.
func (h *Handler) HandleShop(_ context.Context, msg *tgbotapi.Message, _ []string) {
	var b strings.Builder
	b.WriteString("🛒 Shop:\n")
	for _, item := range Shop() {
		fmt.Fprintf(&b, "%s — %s\n  %s\n  Buy: !buy %s\n",
			item.Name, common.FormatCoins(item.Price), item.Description, item.ID)
	}
	h.reply(msg, b.String())
}

// HandleBoxes — команда !boxes.
func (h *Handler) HandleBoxes(_ context.Context, msg *tgbotapi.Message, _ []string) {
	var b strings.Builder
	b.WriteString("📦 Mystery boxes:\n")
	for _, box := range Boxes() {
		fmt.Fprintf(&b, "%s — %s\n  %s\n  💰 %d%% coins / 🎁 %d%% items\n  Buy: !buy %s\n",
			box.Name, common.FormatCoins(box.Price), box.Description,
			box.CoinChance, 100-box.CoinChance, box.ID)
	}
	h.reply(msg, b.String())
}

// HandleBuy — команда !buy <id>.
func (h *Handler) HandleBuy(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		h.reply(msg, "Usage: !buy <item id> (see !shop and !boxes)")
		return
	}
	userID := common.UserKey(msg.From.ID)
	id := strings.ToLower(args[0])

	res, err := h.svc.Buy(ctx, userID, id)
	switch {
	case errors.Is(err, common.ErrItemNotFound):
		h.reply(msg, "That item doesn't exist! Use !shop or !boxes to see available items.")
		return
	case errors.Is(err, common.ErrInsufficientBalance):
		h.reply(msg, "Not enough coins for that purchase.")
		return
	case errors.Is(err, common.ErrAlreadyOwned):
		h.reply(msg, "You already own that role. The price was refunded.")
		return
	case err != nil:
		h.replyInternalError(msg, err, "buy")
		return
	}

	switch {
	case res.Box != nil:
		reward := res.BoxReward
		if reward.Item != "" {
			h.reply(msg, fmt.Sprintf("%s opened!\n🎁 You found %s (%s, %s)! Owned: %d",
				res.Box.Name, reward.Item, reward.Rarity, common.FormatCoins(reward.Value), reward.Quantity))
		} else {
			h.reply(msg, fmt.Sprintf("%s opened!\n🎉 You found %s!",
				res.Box.Name, common.FormatCoins(reward.Coins)))
		}
	case res.RoleName != "":
		h.reply(msg, fmt.Sprintf("✅ You bought the %s role!", res.RoleName))
	case res.Coins > 0:
		h.reply(msg, fmt.Sprintf("✅ Purchase complete: %s credited.", common.FormatCoins(res.Coins)))
	case res.XP > 0:
		h.reply(msg, fmt.Sprintf("✅ Purchase complete: +%d XP.", res.XP))
	}
}
