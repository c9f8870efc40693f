package persist

// Persister saves and loads one state type under a fixed basename.
type Persister[T any] struct {
	basename string
	codec    Codec
}

// NewPersister creates a persister for basename using codec.
func NewPersister[T any](basename string, codec Codec) *Persister[T] {
	return &Persister[T]{basename: basename, codec: codec}
}

// Save writes state into dir and returns the path written.
func (p *Persister[T]) Save(dir string, state *T) (string, error) {
	return SaveState(dir, p.basename, p.codec, state)
}

// Load reads the state stored in dir.
func (p *Persister[T]) Load(dir string) (*T, error) {
	var state T

	if err := LoadState(dir, p.basename, p.codec, &state); err != nil {
		return nil, err
	}

	return &state, nil
}
