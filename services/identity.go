package services

import (
	"sync"

	"chatsphere/contract"
)

// NicknameRegistry is an in-process IdentityProvider. Identity lives
// outside the engine; this registry only caches display names pushed in by
// the embedding application and falls back to the raw id for everyone
// else.
type NicknameRegistry struct {
	mu        sync.RWMutex
	nicknames map[string]string
}

var _ contract.IdentityProvider = (*NicknameRegistry)(nil)

func NewNicknameRegistry() *NicknameRegistry {
	return &NicknameRegistry{nicknames: make(map[string]string)}
}

func (r *NicknameRegistry) Register(userID, nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nicknames[userID] = nickname
}

func (r *NicknameRegistry) Nickname(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if nickname, ok := r.nicknames[userID]; ok {
		return nickname
	}
	return userID
}
