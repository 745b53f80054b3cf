package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quizbot/internal/adapter"
	"quizbot/internal/domain"
	"quizbot/internal/quiz"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "quizbot:session:state:42:test", sessionKey(domain.KindTest, 42))
	assert.Equal(t, "quizbot:session:state:42:level", sessionKey(domain.KindLevel, 42))
}

func TestSessionStore_Redis(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(adapter.NewRedisCacheAdapter(db), time.Hour)

	state := quiz.State{
		Kind:      domain.KindTest,
		UserID:    42,
		Phase:     quiz.PhaseAnswering,
		SessionID: 7,
		Questions: verbalBank(2),
		Cursor:    1,
		Score:     1,
		StartTime: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	t.Run("save", func(t *testing.T) {
		mock.ExpectSet("quizbot:session:state:42:test", string(raw), time.Hour).SetVal("OK")
		require.NoError(t, store.Save(ctx, state))
	})

	t.Run("load", func(t *testing.T) {
		mock.ExpectGet("quizbot:session:state:42:test").SetVal(string(raw))
		got, err := store.Load(ctx, domain.KindTest, 42)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(7), got.SessionID)
		assert.Equal(t, 1, got.Cursor)
		assert.Len(t, got.Questions, 2)
		assert.True(t, state.StartTime.Equal(got.StartTime))
	})

	t.Run("miss", func(t *testing.T) {
		mock.ExpectGet("quizbot:session:state:42:level").RedisNil()
		got, err := store.Load(ctx, domain.KindLevel, 42)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("corrupt", func(t *testing.T) {
		mock.ExpectGet("quizbot:session:state:42:test").SetVal("{not json")
		_, err := store.Load(ctx, domain.KindTest, 42)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeStoreFailure, domainErr.Code)
	})

	t.Run("backend down", func(t *testing.T) {
		mock.ExpectGet("quizbot:session:state:42:test").SetErr(errors.New("connection refused"))
		_, err := store.Load(ctx, domain.KindTest, 42)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeStoreFailure, domainErr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectDel("quizbot:session:state:42:test").SetVal(1)
		require.NoError(t, store.Delete(ctx, domain.KindTest, 42))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
