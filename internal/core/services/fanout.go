package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fetchOrdered exécute fetch pour chaque clé (au plus limit en parallèle) et
// renvoie les résultats dans l'ordre des clés, quel que soit l'ordre d'arrivée.
// La première erreur annule le contexte des autres et est renvoyée seule.
func fetchOrdered[K, V any](ctx context.Context, limit int, keys []K, fetch func(context.Context, K) ([]V, error)) ([][]V, error) {
	results := make([][]V, len(keys))
	if len(keys) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items, err := fetch(gctx, key)
			if err != nil {
				return err
			}
			results[i] = items // chaque goroutine écrit son propre slot
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
