package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeKV struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (f *fakeKV) Del(_ context.Context, key string) (bool, error) {
	_, ok := f.data[key]
	delete(f.data, key)
	delete(f.ttls, key)
	return ok, nil
}

func newTestStore() (*Store, *fakeKV) {
	kv := newFakeKV()
	return NewStore(kv, zap.NewNop()), kv
}

func TestVerifyCorrectCode(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "jaimin", "482913"))
	require.NoError(t, store.Verify(ctx, "jaimin", "482913"))
}

func TestVerifyLeadingZeros(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "jaimin", "007123"))

	// "7123" must not match "007123"; codes compare as strings.
	assert.ErrorIs(t, store.Verify(ctx, "jaimin", "7123"), ErrCodeMismatch)
	assert.NoError(t, store.Verify(ctx, "jaimin", "007123"))
}

func TestVerifyMissingRecord(t *testing.T) {
	store, _ := newTestStore()

	err := store.Verify(context.Background(), "nobody", "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWrongAttemptLockout(t *testing.T) {
	store, kv := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "jaimin", "482913"))

	for i := 0; i < MaxWrongAttempts; i++ {
		assert.ErrorIs(t, store.Verify(ctx, "jaimin", "000000"), ErrCodeMismatch)
	}

	// The cap is reached; even the correct code fails and the record is gone.
	assert.ErrorIs(t, store.Verify(ctx, "jaimin", "482913"), ErrMaxAttempts)
	_, ok := kv.data["otp:jaimin"]
	assert.False(t, ok)

	// With the record deleted the next verify sees no record at all.
	assert.ErrorIs(t, store.Verify(ctx, "jaimin", "482913"), ErrNotFound)
}

func TestWrongAttemptResetsTTL(t *testing.T) {
	store, kv := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "jaimin", "482913"))
	kv.ttls["otp:jaimin"] = time.Minute // simulate partial expiry

	assert.ErrorIs(t, store.Verify(ctx, "jaimin", "999999"), ErrCodeMismatch)
	assert.Equal(t, TTL, kv.ttls["otp:jaimin"])
}

func TestRecordWrongAttemptAbsent(t *testing.T) {
	store, _ := newTestStore()

	recorded, err := store.RecordWrongAttempt(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestReissueResetsAttempts(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "jaimin", "111111"))
	for i := 0; i < MaxWrongAttempts-1; i++ {
		assert.ErrorIs(t, store.Verify(ctx, "jaimin", "000000"), ErrCodeMismatch)
	}

	// A resend overwrites the record, clearing the counter.
	require.NoError(t, store.Issue(ctx, "jaimin", "222222"))
	assert.ErrorIs(t, store.Verify(ctx, "jaimin", "000000"), ErrCodeMismatch)
	assert.NoError(t, store.Verify(ctx, "jaimin", "222222"))
}

func TestCorruptRecordDropped(t *testing.T) {
	store, kv := newTestStore()
	ctx := context.Background()

	kv.data["otp:jaimin"] = []byte("{not json")
	assert.ErrorIs(t, store.Verify(ctx, "jaimin", "123456"), ErrNotFound)
	_, ok := kv.data["otp:jaimin"]
	assert.False(t, ok)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateCode(CodeLength)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
	}
	assert.Equal(t, "", GenerateCode(0))
}
