package services

// Config carries behavior switches for the level services.
type Config struct {
	// ValidateChainOrder rejects levels whose parent does not belong to the
	// immediately preceding tier in chain order. Off by default: existing
	// datasets contain levels that predate the invariant and nothing in
	// storage enforces it.
	ValidateChainOrder bool
}
