package service

import (
	"context"
	"log"

	"bizgifts-bot/internal/model"
	"bizgifts-bot/internal/telegram"
)

// AssetGateway is the contract over the platform's business-account asset
// operations. Implemented by *telegram.Client; faked in tests.
//
// Calls the platform explicitly refused surface as *telegram.APIError;
// transport and decoding failures surface as ordinary wrapped errors.
type AssetGateway interface {
	ListOwnedGifts(ctx context.Context, connectionID string) ([]model.OwnedGift, error)
	StarBalance(ctx context.Context, connectionID string) (int64, error)
	TransferGift(ctx context.Context, connectionID, ownedGiftID string, newOwnerChatID int64) error
	ConvertGiftToStars(ctx context.Context, connectionID, ownedGiftID string) error
}

// ConnectionResolver resolves a user to their stored connection ID.
// Implemented by *ConnectionService.
type ConnectionResolver interface {
	Resolve(ctx context.Context, userID int64) (string, error)
}

// ConvertResult summarizes one bulk conversion run. The batch has no
// atomicity: partial success is the expected outcome, not an error state.
type ConvertResult struct {
	Total     int // gifts the account owned when the run started
	Converted int // gifts successfully converted to stars
}

// AssetService orchestrates asset operations against connected business
// accounts. Each operation resolves the relevant user's connection first and
// is stateless across invocations.
type AssetService struct {
	gateway     AssetGateway
	connections ConnectionResolver
}

// NewAssetService creates a new asset service.
// Returns nil if either dependency is nil.
func NewAssetService(gateway AssetGateway, connections ConnectionResolver) *AssetService {
	if gateway == nil || connections == nil {
		return nil
	}
	return &AssetService{gateway: gateway, connections: connections}
}

// ListGifts returns the gifts owned by the user's connected account.
// Returns ErrNotConnected without touching the gateway when the user has no
// connection on record. An empty slice means the account owns nothing.
func (s *AssetService) ListGifts(ctx context.Context, userID int64) ([]model.OwnedGift, error) {
	connectionID, err := s.connections.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.gateway.ListOwnedGifts(ctx, connectionID)
}

// StarBalance returns the star balance of the user's connected account.
func (s *AssetService) StarBalance(ctx context.Context, userID int64) (int64, error) {
	connectionID, err := s.connections.Resolve(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.gateway.StarBalance(ctx, connectionID)
}

// Transfer moves one gift out of fromUserID's connected account. Exactly one
// gateway call is made and its outcome is returned verbatim; there is no
// retry. The gift never self-invalidates the stored connection on failure.
func (s *AssetService) Transfer(ctx context.Context, fromUserID int64, intent model.TransferIntent) error {
	connectionID, err := s.connections.Resolve(ctx, fromUserID)
	if err != nil {
		return err
	}
	return s.gateway.TransferGift(ctx, connectionID, intent.OwnedGiftID, intent.NewOwnerChatID)
}

// ConvertAll converts every gift owned by the user's connected account into
// stars, one convertGiftToStars call per gift in listing order. A refused or
// failed item is logged and skipped; the batch never aborts early. The
// returned counts let callers distinguish "owned nothing" (Total 0) from
// "every attempt failed" (Total > 0, Converted 0).
func (s *AssetService) ConvertAll(ctx context.Context, userID int64) (ConvertResult, error) {
	connectionID, err := s.connections.Resolve(ctx, userID)
	if err != nil {
		return ConvertResult{}, err
	}

	gifts, err := s.gateway.ListOwnedGifts(ctx, connectionID)
	if err != nil {
		return ConvertResult{}, err
	}

	result := ConvertResult{Total: len(gifts)}
	for _, gift := range gifts {
		if err := s.gateway.ConvertGiftToStars(ctx, connectionID, gift.OwnedID); err != nil {
			if telegram.IsRejected(err) {
				log.Printf("[AssetService] WARN: convert refused for gift %s: %v", gift.OwnedID, err)
			} else {
				log.Printf("[AssetService] ERROR: convert failed for gift %s: %v", gift.OwnedID, err)
			}
			continue
		}
		result.Converted++
	}

	log.Printf("[AssetService] Converted %d/%d gifts for user %d", result.Converted, result.Total, userID)
	return result, nil
}
