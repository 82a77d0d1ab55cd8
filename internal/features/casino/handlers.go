// handlers.go — команды казино и коллбэки кнопок crash/блэкджека.
package casino

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/common"
)

// Префиксы callback data игровых кнопок.
const (
	cbCrashCashOut = "crash:cashout:"
	cbBlackjackHit = "bj:hit:"
	cbBlackjackStd = "bj:stand:"
)

// Дефолтные ставки исторических команд.
const (
	defaultCardsBet = 100
	defaultSlotsBet = 50
	defaultCrashBet = 100
)

// Handler связывает команды и кнопки с сервисом казино.
type Handler struct {
	svc      *Service
	sender   common.Sender
	sessions *Sessions
}

// NewHandler создаёт обработчик казино.
func NewHandler(svc *Service, sender common.Sender) *Handler {
	return &Handler{svc: svc, sender: sender, sessions: NewSessions()}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if _, err := h.sender.Send(common.ReplyTo(msg, text)); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

// replyBetError переводит типовые ошибки ставки в сообщение; прочие
// ошибки логирует. Возвращает true, если ошибка обработана.
func (h *Handler) replyBetError(msg *tgbotapi.Message, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, common.ErrInvalidBet):
		h.reply(msg, "You must bet at least 1 coin!")
	case errors.Is(err, common.ErrInvalidAmount):
		h.reply(msg, "You must gamble at least 1 coin!")
	case errors.Is(err, common.ErrInsufficientBalance):
		h.reply(msg, "You don't have enough coins!")
	case errors.Is(err, common.ErrInvalidChoice):
		h.reply(msg, "Choose heads or tails!")
	default:
		log.WithError(err).Error("ошибка игры казино")
		h.reply(msg, "Something went wrong, try again later.")
	}
	return true
}

func parseBet(args []string, def int64) int64 {
	if len(args) == 0 {
		return def
	}
	bet, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return -1 // провалит валидацию ставки
	}
	return bet
}

// HandleGamble — команда !gamble <amount>.
func (h *Handler) HandleGamble(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		h.reply(msg, "Usage: !gamble <amount>")
		return
	}
	amount := parseBet(args, 0)
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Gamble(ctx, userID, amount)
	if h.replyBetError(msg, err) {
		return
	}
	if res.Won {
		h.reply(msg, fmt.Sprintf("🎉 You gambled %s and won %s!",
			common.FormatCoins(amount), common.FormatCoins(res.Credited)))
	} else {
		h.reply(msg, fmt.Sprintf("😢 You gambled %s and lost them all!", common.FormatCoins(amount)))
	}
}

// HandleCoinflip — команда !coinflip <bet> <heads|tails>.
func (h *Handler) HandleCoinflip(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		h.reply(msg, "Usage: !coinflip <bet> <heads|tails>")
		return
	}
	bet := parseBet(args, 0)
	choice := "heads"
	if len(args) > 1 {
		choice = strings.ToLower(args[1])
	}
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Coinflip(ctx, userID, bet, choice)
	if h.replyBetError(msg, err) {
		return
	}
	if res.Won {
		h.reply(msg, fmt.Sprintf("🪙 The coin landed on %s — you won %s!",
			res.Landed, common.FormatCoins(res.Credited)))
	} else {
		h.reply(msg, fmt.Sprintf("🪙 The coin landed on %s — you lost %s.",
			res.Landed, common.FormatCoins(bet)))
	}
}

// HandleSpin — команда !spin (колесо фортуны).
func (h *Handler) HandleSpin(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Spin(ctx, userID)
	if errors.Is(err, common.ErrInsufficientBalance) {
		h.reply(msg, fmt.Sprintf("You need %s to spin the wheel!", common.FormatCoins(SpinCost())))
		return
	}
	if h.replyBetError(msg, err) {
		return
	}
	if res.Credited > 0 {
		h.reply(msg, fmt.Sprintf("🎰 %s\nYou won %s!", res.Prize, common.FormatCoins(res.Credited)))
	} else {
		h.reply(msg, fmt.Sprintf("🎰 %s\nBetter luck next time!", res.Prize))
	}
}

// HandleSlots — команда !slots [bet].
func (h *Handler) HandleSlots(ctx context.Context, msg *tgbotapi.Message, args []string) {
	bet := parseBet(args, defaultSlotsBet)
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Slots(ctx, userID, bet)
	if h.replyBetError(msg, err) {
		return
	}

	line := strings.Join(res.Reels[:], " ")
	switch res.Kind {
	case SlotsJackpot:
		h.reply(msg, fmt.Sprintf("🎰 %s\n🎉 JACKPOT! All three %s match! Won %s.",
			line, res.Reels[0], common.FormatCoins(res.Won)))
	case SlotsPair:
		h.reply(msg, fmt.Sprintf("🎰 %s\n😊 Two symbols match! Small win: %s.",
			line, common.FormatCoins(res.Won)))
	default:
		h.reply(msg, fmt.Sprintf("🎰 %s\n😢 No match! You lost %s.",
			line, common.FormatCoins(bet)))
	}
}

// HandleCrash — команда !crash [bet]: запускает партию с кнопкой
// Cash Out и тикающим сообщением.
func (h *Handler) HandleCrash(ctx context.Context, msg *tgbotapi.Message, args []string) {
	bet := parseBet(args, defaultCrashBet)
	userID := common.UserKey(msg.From.ID)

	game, err := h.svc.NewCrashGame(ctx, userID, msg.Chat.ID, bet)
	if h.replyBetError(msg, err) {
		return
	}

	text := crashText(game.Multiplier(), bet)
	reply := common.ReplyTo(msg, text)
	reply.ReplyMarkup = crashKeyboard(game.ID)
	sent, err := h.sender.Send(reply)
	if err != nil {
		log.WithError(err).Error("не удалось отправить сообщение crash")
		return
	}
	game.MessageID = sent.MessageID
	h.sessions.PutCrash(game)

	go h.runCrash(game)
}

// runCrash гонит партию по тикам до терминального состояния.
func (h *Handler) runCrash(game *CrashGame) {
	ctx := context.Background()
	deadline := time.NewTimer(CrashTimeout)
	defer deadline.Stop()

	time.Sleep(CrashLeadIn)

	ticker := time.NewTicker(CrashTick)
	defer ticker.Stop()
	defer h.sessions.DropCrash(game.ID)

	for {
		select {
		case <-deadline.C:
			if game.ForceCrash() {
				h.finishCrashLoss(ctx, game)
			}
			return
		case <-ticker.C:
			mult, crashed := game.Tick()
			if game.State() == CrashCashedOut {
				return
			}
			if crashed {
				h.finishCrashLoss(ctx, game)
				return
			}
			edit := tgbotapi.NewEditMessageText(game.ChatID, game.MessageID, crashText(mult, game.Bet))
			markup := crashKeyboard(game.ID)
			edit.ReplyMarkup = &markup
			if _, err := h.sender.Send(edit); err != nil {
				log.WithError(err).Warn("не удалось обновить сообщение crash")
			}
		}
	}
}

func (h *Handler) finishCrashLoss(ctx context.Context, game *CrashGame) {
	if err := h.svc.SettleCrashLoss(ctx, game); err != nil {
		log.WithError(err).Error("не удалось списать проигрыш crash")
	}
	text := fmt.Sprintf("🚀 Crash Game — CRASHED!\n💥 The rocket crashed at %.2fx!\nYou lost %s.",
		game.CrashPoint, common.FormatCoins(game.Bet))
	edit := tgbotapi.NewEditMessageText(game.ChatID, game.MessageID, text)
	if _, err := h.sender.Send(edit); err != nil {
		log.WithError(err).Warn("не удалось обновить сообщение crash")
	}
}

func crashText(multiplier float64, bet int64) string {
	return fmt.Sprintf("🚀 Crash Game\nCurrent multiplier: %.2fx\nBet: %s | Potential win: %s\nCash out before it crashes!",
		multiplier, common.FormatCoins(bet), common.FormatCoins(int64(float64(bet)*multiplier)))
}

func crashKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Cash Out", cbCrashCashOut+id),
		),
	)
}

// HandleCards — команда !cards [bet]: блэкджек.
func (h *Handler) HandleCards(ctx context.Context, msg *tgbotapi.Message, args []string) {
	bet := parseBet(args, defaultCardsBet)
	userID := common.UserKey(msg.From.ID)

	game, outcome, err := h.svc.NewBlackjackGame(ctx, userID, msg.Chat.ID, bet)
	if h.replyBetError(msg, err) {
		return
	}

	if outcome != OutcomeNone {
		// Натуральный блэкджек (или двойной) — без кнопок.
		delta, err := h.svc.SettleBlackjack(ctx, game, outcome)
		if err != nil {
			log.WithError(err).Error("не удалось рассчитать блэкджек")
			return
		}
		h.reply(msg, blackjackFinalText(game, outcome, delta))
		return
	}

	text := blackjackPlayingText(game)
	reply := common.ReplyTo(msg, text)
	reply.ReplyMarkup = blackjackKeyboard(game.ID)
	sent, err := h.sender.Send(reply)
	if err != nil {
		log.WithError(err).Error("не удалось отправить сообщение блэкджека")
		return
	}
	game.MessageID = sent.MessageID
	h.sessions.PutBlackjack(game)

	// Бездействие разрешается автоматическим Stand.
	time.AfterFunc(BlackjackTimeout, func() {
		if outcome, ok := game.AutoStand(); ok {
			h.finishBlackjack(context.Background(), game, outcome)
		}
	})
}

func (h *Handler) finishBlackjack(ctx context.Context, game *BlackjackGame, outcome BlackjackOutcome) {
	h.sessions.DropBlackjack(game.ID)
	delta, err := h.svc.SettleBlackjack(ctx, game, outcome)
	if err != nil {
		log.WithError(err).Error("не удалось рассчитать блэкджек")
		return
	}
	edit := tgbotapi.NewEditMessageText(game.ChatID, game.MessageID, blackjackFinalText(game, outcome, delta))
	if _, err := h.sender.Send(edit); err != nil {
		log.WithError(err).Warn("не удалось обновить сообщение блэкджека")
	}
}

func blackjackPlayingText(g *BlackjackGame) string {
	player := g.PlayerHand()
	dealer := g.DealerHand()
	return fmt.Sprintf("🃏 Blackjack\nYour cards: %s (value %d)\nDealer shows: %s 🂠\nBet: %s",
		FormatHand(player), HandValue(player), dealer[0], common.FormatCoins(g.Bet))
}

func blackjackFinalText(g *BlackjackGame, outcome BlackjackOutcome, delta int64) string {
	player := g.PlayerHand()
	dealer := g.DealerHand()
	head := fmt.Sprintf("🃏 Blackjack — Final\nYour cards: %s (value %d)\nDealer cards: %s (value %d)\n",
		FormatHand(player), HandValue(player), FormatHand(dealer), HandValue(dealer))

	switch outcome {
	case OutcomePlayerBlackjack:
		return head + fmt.Sprintf("🎉 Blackjack! You won %s!", common.FormatCoins(delta))
	case OutcomeDealerBust:
		return head + fmt.Sprintf("🎉 Dealer bust! You won %s!", common.FormatCoins(delta))
	case OutcomePlayerWin:
		return head + fmt.Sprintf("🎉 You win! You won %s!", common.FormatCoins(delta))
	case OutcomePlayerBust:
		return head + fmt.Sprintf("💥 Bust! You lost %s!", common.FormatCoins(g.Bet))
	case OutcomeDealerWin:
		return head + fmt.Sprintf("😢 Dealer wins! You lost %s!", common.FormatCoins(g.Bet))
	default:
		return head + "🤝 Push! It's a tie!"
	}
}

func blackjackKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🃏 Hit", cbBlackjackHit+id),
			tgbotapi.NewInlineKeyboardButtonData("✋ Stand", cbBlackjackStd+id),
		),
	)
}

// HandleCallback разбирает нажатия игровых кнопок. Возвращает false,
// если callback не относится к казино.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) bool {
	data := cq.Data
	userID := common.UserKey(cq.From.ID)

	answer := func(text string) {
		if _, err := h.sender.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
			log.WithError(err).Warn("не удалось ответить на callback")
		}
	}

	switch {
	case strings.HasPrefix(data, cbCrashCashOut):
		game, ok := h.sessions.Crash(strings.TrimPrefix(data, cbCrashCashOut))
		if !ok {
			answer("This game is over.")
			return true
		}
		mult, err := game.CashOut(userID)
		switch {
		case errors.Is(err, common.ErrNotYourGame):
			answer("This isn't your game!")
			return true
		case errors.Is(err, common.ErrGameFinished):
			answer("This game is over.")
			return true
		}
		h.sessions.DropCrash(game.ID)
		credited, err := h.svc.SettleCrashWin(ctx, game, mult)
		if err != nil {
			log.WithError(err).Error("не удалось начислить выигрыш crash")
			return true
		}
		answer("Cashed out!")
		text := fmt.Sprintf("🚀 Crash Game — Cashed Out!\n🎉 You cashed out at %.2fx (rocket crashed at %.2fx).\nNet win: %s.",
			mult, game.CrashPoint, common.FormatCoinsSigned(credited))
		edit := tgbotapi.NewEditMessageText(game.ChatID, game.MessageID, text)
		if _, err := h.sender.Send(edit); err != nil {
			log.WithError(err).Warn("не удалось обновить сообщение crash")
		}
		return true

	case strings.HasPrefix(data, cbBlackjackHit):
		game, ok := h.sessions.Blackjack(strings.TrimPrefix(data, cbBlackjackHit))
		if !ok {
			answer("This game is over.")
			return true
		}
		outcome, err := game.Hit(userID)
		switch {
		case errors.Is(err, common.ErrNotYourGame):
			answer("This isn't your game!")
			return true
		case errors.Is(err, common.ErrGameFinished):
			answer("This game is over.")
			return true
		}
		answer("")
		if outcome == OutcomePlayerBust {
			h.finishBlackjack(ctx, game, outcome)
			return true
		}
		edit := tgbotapi.NewEditMessageText(game.ChatID, game.MessageID, blackjackPlayingText(game))
		markup := blackjackKeyboard(game.ID)
		edit.ReplyMarkup = &markup
		if _, err := h.sender.Send(edit); err != nil {
			log.WithError(err).Warn("не удалось обновить сообщение блэкджека")
		}
		return true

	case strings.HasPrefix(data, cbBlackjackStd):
		game, ok := h.sessions.Blackjack(strings.TrimPrefix(data, cbBlackjackStd))
		if !ok {
			answer("This game is over.")
			return true
		}
		outcome, err := game.Stand(userID)
		switch {
		case errors.Is(err, common.ErrNotYourGame):
			answer("This isn't your game!")
			return true
		case errors.Is(err, common.ErrGameFinished):
			answer("This game is over.")
			return true
		}
		answer("")
		h.finishBlackjack(ctx, game, outcome)
		return true
	}
	return false
}
