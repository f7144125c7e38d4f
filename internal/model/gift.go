package model

// OwnedGift is a single gift held by a connected business account. Fetched on
// demand from the platform, never persisted locally.
type OwnedGift struct {
	OwnedID string `json:"owned_gift_id"`
	Name    string `json:"name"`
}

// TransferIntent describes a single gift transfer before it is issued to the
// platform. Built per invocation and discarded afterwards.
type TransferIntent struct {
	ConnectionID   string
	OwnedGiftID    string
	NewOwnerChatID int64
}
