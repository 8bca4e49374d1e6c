package storage

// NullStore discards everything written to it and reports every key
// missing. Useful as the slow half of a Paired store in tests, or to
// run the applier against a throwaway MIRROR when exercising the merge
// core in isolation.
type NullStore struct{}

var _ Enumerable = NullStore{}

func (NullStore) Get(Key) (Value, error) {
	return nil, ErrNotFound
}

func (NullStore) Put(Key, Value) error {
	return nil
}

func (NullStore) Delete(Key) error {
	return nil
}

func (NullStore) Contains(Key) (bool, error) {
	return false, nil
}

func (NullStore) ForEach(func(Key) error) error {
	return nil
}
