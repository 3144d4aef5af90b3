package store

import (
	"context"

	"ci-build-watcher/src/contracts"
	"ci-build-watcher/src/logger"
)

// Open loads src into an InMemoryStore. Any load failure, including an empty
// snapshot, is logged and absorbed: the store is built from the fallback
// dataset selected by mode instead. Open never fails.
func Open(ctx context.Context, src Source, mode FallbackMode, log logger.Logger, opts ...Option) *InMemoryStore {
	s := newStore(opts)

	log.Info("Attempting to load CI data from: %s", src.Name())

	repos, err := src.Load(ctx)
	if err == nil {
		s.load(repos)
		nRepos, nBuilds := s.Counts()
		log.Info("Loaded %d repositories and %d builds from %s", nRepos, nBuilds, src.Name())
		return s
	}

	log.Error("Could not load CI data from %s: %v", src.Name(), err)

	var fallback []contracts.Repository
	if mode != FallbackEmpty {
		fallback = FallbackRepositories(s.now())
	}
	s.load(fallback)

	nRepos, nBuilds := s.Counts()
	log.Info("Using %s fallback data: %d repositories, %d builds", fallbackName(mode), nRepos, nBuilds)
	return s
}

func fallbackName(mode FallbackMode) string {
	if mode == FallbackEmpty {
		return string(FallbackEmpty)
	}
	return string(FallbackSeed)
}
