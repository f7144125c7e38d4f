package telegram

// User is a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Chat identifies a Telegram chat.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// Message is an incoming message. Only the fields the bot reads are mapped.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// BusinessConnection describes a business account connecting to (or
// disconnecting from) the bot. ID is the opaque connection handle used for
// every business-account API call.
type BusinessConnection struct {
	ID         string `json:"id"`
	User       User   `json:"user"`
	UserChatID int64  `json:"user_chat_id,omitempty"`
	IsEnabled  bool   `json:"is_enabled,omitempty"`
}

// Update is one entry from getUpdates. Exactly one of the payload fields is set.
type Update struct {
	UpdateID           int64               `json:"update_id"`
	Message            *Message            `json:"message,omitempty"`
	BusinessConnection *BusinessConnection `json:"business_connection,omitempty"`
	BusinessMessage    *Message            `json:"business_message,omitempty"`
}

// starAmount is the result payload of getBusinessAccountStarBalance.
type starAmount struct {
	Amount int64 `json:"amount"`
}

// ownedGifts is the result payload of getBusinessAccountGifts.
type ownedGifts struct {
	TotalCount int             `json:"total_count"`
	Gifts      []ownedGiftWire `json:"gifts"`
}

// ownedGiftWire is a single gift entry as the platform returns it. Regular and
// unique gifts nest the descriptive name differently.
type ownedGiftWire struct {
	Type        string `json:"type"`
	OwnedGiftID string `json:"owned_gift_id"`
	Gift        struct {
		BaseName string `json:"base_name,omitempty"` // unique gifts
		Name     string `json:"name,omitempty"`      // unique gifts (full name)
		Sticker  struct {
			Emoji string `json:"emoji,omitempty"`
		} `json:"sticker,omitempty"` // regular gifts
	} `json:"gift"`
}

// label returns the best available descriptive name for a gift.
func (g ownedGiftWire) label() string {
	switch {
	case g.Gift.Name != "":
		return g.Gift.Name
	case g.Gift.BaseName != "":
		return g.Gift.BaseName
	case g.Gift.Sticker.Emoji != "":
		return g.Gift.Sticker.Emoji
	default:
		return g.Type
	}
}
