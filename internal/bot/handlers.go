package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"bizgifts-bot/internal/model"
	"bizgifts-bot/internal/service"
	"bizgifts-bot/internal/telegram"
)

// Sender delivers outbound messages. Implemented by *telegram.Client.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Fixed responses. Centralized so handlers and tests agree on exact text.
const (
	msgOperatorOnly   = "This command is only available to the operator."
	msgNotConnected   = "You need to connect your business account first."
	msgNoGifts        = "You have no gifts."
	msgNothingConvert = "You have no gifts to convert."
	msgRetryLater     = "Something went wrong. Please try again later."
	msgTransferUsage  = "Usage: /transfer <owned_gift_id> <target_chat_id>"
	msgChatIDInvalid  = "target_chat_id must be a valid integer (the recipient's chat ID)."
	msgCleared        = "All business connections have been cleared."
	msgUserScoped     = "This command shows data for your own connected account; it is not available to the operator account."
	msgWelcome        = "Hello! Add this bot to your Telegram business account to manage the gifts and stars it owns. Once connected, use /gifts, /stars and /convert."
	msgConnected      = "Your business account is now connected."
)

// Handlers implements the bot command surface.
type Handlers struct {
	sender      Sender
	connections *service.ConnectionService
	assets      *service.AssetService
	gate        *service.AdminGate
}

// NewHandlers creates the command handlers.
func NewHandlers(sender Sender, connections *service.ConnectionService, assets *service.AssetService, gate *service.AdminGate) *Handlers {
	return &Handlers{
		sender:      sender,
		connections: connections,
		assets:      assets,
		gate:        gate,
	}
}

// reply sends text to a chat, logging delivery failures.
func (h *Handlers) reply(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("[Handlers] WARN: send to chat %d failed: %v", chatID, err)
	}
}

// HandleBusinessConnection records a (re)connected business account, notifies
// the operator and confirms to the connecting user.
func (h *Handlers) HandleBusinessConnection(ctx context.Context, bc *telegram.BusinessConnection) {
	rec := model.ConnectionRecord{
		UserID:       bc.User.ID,
		ConnectionID: bc.ID,
		Username:     bc.User.Username,
		FirstName:    bc.User.FirstName,
		LastName:     bc.User.LastName,
	}

	if err := h.connections.Record(ctx, rec); err != nil {
		log.Printf("[Handlers] ERROR: saving connection for user %d failed: %v", bc.User.ID, err)
		return
	}
	log.Printf("[Handlers] Business account connected: user=%d connection=%s", bc.User.ID, bc.ID)

	h.reply(ctx, h.gate.OperatorID(), fmt.Sprintf("User #%d connected the bot.", bc.User.ID))
	h.reply(ctx, bc.User.ID, msgConnected)
}

// HandleMessage routes one inbound message to its command handler.
// Plain (non-command) messages are ignored.
func (h *Handlers) HandleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || !strings.HasPrefix(msg.Text, "/") {
		return
	}

	args := strings.Fields(msg.Text)
	command := strings.ToLower(args[0])

	switch command {
	case "/start":
		h.handleStart(ctx, msg)
	case "/gifts":
		h.handleGifts(ctx, msg)
	case "/stars":
		h.handleStars(ctx, msg)
	case "/transfer":
		h.handleTransfer(ctx, msg, args)
	case "/convert":
		h.handleConvert(ctx, msg)
	case "/clear_connections":
		h.handleClearConnections(ctx, msg)
	default:
		h.reply(ctx, msg.Chat.ID, "Unknown command. Available: /start /gifts /stars /convert")
	}
}

// handleStart greets users; the operator gets the connection count and the
// command reference instead.
func (h *Handlers) handleStart(ctx context.Context, msg *telegram.Message) {
	if !h.gate.IsOperator(msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, msgWelcome)
		return
	}

	count, err := h.connections.Count(ctx)
	if err != nil {
		log.Printf("[Handlers] WARN: connection count failed: %v", err)
		count = 0
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"Connections: %d\n\n"+
			"/gifts - View gifts\n"+
			"/stars - View stars\n"+
			"/transfer <owned_gift_id> <target_chat_id> - Manually transfer a gift\n"+
			"/convert - Convert gifts to stars\n"+
			"/clear_connections - Clear all connections",
		count))
}

// handleGifts lists the gifts owned by the caller's connected account.
func (h *Handlers) handleGifts(ctx context.Context, msg *telegram.Message) {
	if h.gate.IsOperator(msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, msgUserScoped)
		return
	}

	gifts, err := h.assets.ListGifts(ctx, msg.From.ID)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, h.retrievalFailure(err, "gifts", msg.From.ID))
		return
	}

	if len(gifts) == 0 {
		h.reply(ctx, msg.Chat.ID, msgNoGifts)
		return
	}

	var b strings.Builder
	b.WriteString("Your gifts:\n")
	for _, gift := range gifts {
		fmt.Fprintf(&b, "- ID: %s, Type: %s\n", gift.OwnedID, gift.Name)
	}
	h.reply(ctx, msg.Chat.ID, b.String())
}

// handleStars reports the star balance of the caller's connected account.
func (h *Handlers) handleStars(ctx context.Context, msg *telegram.Message) {
	if h.gate.IsOperator(msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, msgUserScoped)
		return
	}

	balance, err := h.assets.StarBalance(ctx, msg.From.ID)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, h.retrievalFailure(err, "star balance", msg.From.ID))
		return
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Star balance: %d", balance))
}

// handleTransfer performs the operator-only single-gift transfer. The transfer
// always originates from the operator's own connected account. Argument errors
// are reported before any platform call is attempted.
func (h *Handlers) handleTransfer(ctx context.Context, msg *telegram.Message, args []string) {
	if !h.gate.IsOperator(msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, msgOperatorOnly)
		return
	}

	if len(args) != 3 {
		h.reply(ctx, msg.Chat.ID, msgTransferUsage)
		return
	}

	ownedGiftID := args[1]
	newOwnerChatID, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, msgChatIDInvalid)
		return
	}

	err = h.assets.Transfer(ctx, msg.From.ID, model.TransferIntent{
		OwnedGiftID:    ownedGiftID,
		NewOwnerChatID: newOwnerChatID,
	})
	switch {
	case err == nil:
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Gift %s transferred to chat %d.", ownedGiftID, newOwnerChatID))
	case errors.Is(err, service.ErrNotConnected):
		h.reply(ctx, msg.Chat.ID, "Operator's business connection not found. Connect the operator account first.")
	case telegram.IsRejected(err):
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Failed to transfer gift: %s. Double-check the owned_gift_id and the target chat ID.", telegram.RejectionReason(err)))
	default:
		log.Printf("[Handlers] ERROR: transfer failed for operator %d: %v", msg.From.ID, err)
		h.reply(ctx, msg.Chat.ID, msgRetryLater)
	}
}

// handleConvert converts all the caller's gifts into stars, tolerating
// per-gift failures.
func (h *Handlers) handleConvert(ctx context.Context, msg *telegram.Message) {
	result, err := h.assets.ConvertAll(ctx, msg.From.ID)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, h.retrievalFailure(err, "gifts for conversion", msg.From.ID))
		return
	}

	switch {
	case result.Total == 0:
		h.reply(ctx, msg.Chat.ID, msgNothingConvert)
	case result.Converted == 0:
		h.reply(ctx, msg.Chat.ID, "No gifts were converted. The platform refused every attempt; try again later.")
	default:
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf(
			"Successfully converted %d gift(s) into stars. Use /stars to check your updated balance.",
			result.Converted))
	}
}

// handleClearConnections empties the connection registry (operator-only).
func (h *Handlers) handleClearConnections(ctx context.Context, msg *telegram.Message) {
	if !h.gate.IsOperator(msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, msgOperatorOnly)
		return
	}

	if err := h.connections.ClearAll(ctx); err != nil {
		log.Printf("[Handlers] ERROR: clearing connections failed: %v", err)
		h.reply(ctx, msg.Chat.ID, msgRetryLater)
		return
	}

	h.reply(ctx, msg.Chat.ID, msgCleared)
	log.Printf("[Handlers] All connections cleared by operator %d", msg.From.ID)
}

// retrievalFailure maps a resolution or gateway error to user-facing text.
// A refused call usually means a stale or revoked connection; the stored
// record is never invalidated automatically.
func (h *Handlers) retrievalFailure(err error, what string, userID int64) string {
	switch {
	case errors.Is(err, service.ErrNotConnected):
		return msgNotConnected
	case telegram.IsRejected(err):
		log.Printf("[Handlers] WARN: fetching %s refused for user %d: %v", what, userID, err)
		return fmt.Sprintf("Failed to retrieve %s. Your business connection might be inactive or invalid.", what)
	default:
		log.Printf("[Handlers] ERROR: fetching %s failed for user %d: %v", what, userID, err)
		return msgRetryLater
	}
}
