package domain

import "errors"

// --- ERREURS DU DOMAINE ---
var (
	// ErrGraphUnavailable : échec de lecture du graphe social
	ErrGraphUnavailable = errors.New("social graph unavailable")
	// ErrContentUnavailable : échec de lecture du dépôt de contenu
	ErrContentUnavailable = errors.New("content unavailable")

	ErrInvalidContent = errors.New("invalid content item")
	ErrInvalidToken   = errors.New("invalid token")
)
