// Package mocks provides gomock-generated mocks for the agenda client ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockKVStore(ctrl)
//	store.EXPECT().Get(gomock.Any(), ports.KeyAuthToken).Return("T1", true, nil)
package mocks

// Generate mock for KVStore interface from internal/ports package.
// This creates MockKVStore with methods for all KVStore interface methods:
// Get, Set, Remove
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=kv_store_mock.go github.com/church-agenda/agenda-client/internal/ports KVStore
