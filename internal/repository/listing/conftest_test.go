package listing

import (
	"context"

	"github.com/bazaria-cloud/searchd/internal/db"
)

// fakeStore is an in-memory stand-in for the Redis store: a key/value map
// plus one ordered id list. Fn fields override individual operations for
// error injection.
type fakeStore struct {
	kv   map[string][]byte
	list []string

	getFn    func(ctx context.Context, key string) ([]byte, error)
	lrangeFn func(ctx context.Context, key string, start, stop int64) ([]string, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{kv: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	v, ok := f.kv[key]
	if !ok {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrKeyNotFound}
	}
	return v, nil
}

func (f *fakeStore) GetMulti(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := f.kv[k]; ok {
			out[i] = v
		}
	}
	return out, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	f.kv[key] = value
	return nil
}

func (f *fakeStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if f.lrangeFn != nil {
		return f.lrangeFn(ctx, key, start, stop)
	}
	if start >= int64(len(f.list)) {
		return nil, nil
	}
	if stop >= int64(len(f.list)) {
		stop = int64(len(f.list)) - 1
	}
	return f.list[start : stop+1], nil
}

func (f *fakeStore) LLen(_ context.Context, _ string) (int64, error) {
	return int64(len(f.list)), nil
}

func (f *fakeStore) RPush(_ context.Context, _ string, values ...string) error {
	f.list = append(f.list, values...)
	return nil
}
