package identity

import (
	"github.com/google/uuid"

	"github.com/duelhq/duelsync/internal/model"
)

// Provider mints player identities. Every mode of play goes through the
// same PlayerState contract; only where the identity comes from differs.
type Provider interface {
	NewPlayer(displayName, deckLabel string) model.PlayerState
}

// Guest mints throwaway identities for networked play; the id is stable
// for the life of the match but not tied to any account.
type Guest struct{}

// NewGuest creates a guest identity provider
func NewGuest() *Guest {
	return &Guest{}
}

// NewPlayer mints a fresh guest identity
func (g *Guest) NewPlayer(displayName, deckLabel string) model.PlayerState {
	return model.PlayerState{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: displayName,
		DeckLabel:   deckLabel,
	}
}

// Ensure providers implement the interface
var (
	_ Provider = (*Guest)(nil)
	_ Provider = (*LocalPair)(nil)
)

// LocalPair models pass-and-play on a single device: two full identities
// minted side by side, so the second seat is an ordinary player rather
// than a special-cased code path.
type LocalPair struct {
	inner Provider
}

// NewLocalPair creates a pass-and-play identity provider
func NewLocalPair() *LocalPair {
	return &LocalPair{inner: NewGuest()}
}

// NewPlayer mints one seat's identity
func (l *LocalPair) NewPlayer(displayName, deckLabel string) model.PlayerState {
	return l.inner.NewPlayer(displayName, deckLabel)
}

// NewPair mints both seats of a local match at once
func (l *LocalPair) NewPair(hostName, hostDeck, guestName, guestDeck string) (model.PlayerState, model.PlayerState) {
	return l.NewPlayer(hostName, hostDeck), l.NewPlayer(guestName, guestDeck)
}
