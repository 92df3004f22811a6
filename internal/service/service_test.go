package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/archivist/internal/config"
	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/jwt"
)

func TestAuthJwt(t *testing.T) {
	cfg := config.Auth{JWTSecret: "s3cret", Issuer: "archivist"}
	s := NewAuthService(cfg)

	token, err := jwt.Create("u-admin", "archivist", time.Minute, []byte("s3cret"))
	require.NoError(t, err)

	result, err := s.AuthJwt(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", result.UserID)

	forged, err := jwt.Create("u-admin", "archivist", time.Minute, []byte("other"))
	require.NoError(t, err)
	_, err = s.AuthJwt(context.Background(), forged)
	assert.Error(t, err)

	_, err = NewAuthService(config.Auth{}).AuthJwt(context.Background(), token)
	assert.Error(t, err)
}

func TestSignalPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewSignalService(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msgs, err := s.Subscribe(ctx, "manifests")
	require.NoError(t, err)

	err = s.Publish(ctx, "manifests", map[string]string{"type": "manifest.resolved", "manifestId": "m1"})
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.JSONEq(t, `{"type":"manifest.resolved","manifestId":"m1"}`, string(msg))
	case <-ctx.Done():
		t.Fatal("no message received")
	}

	cancel()
	for range msgs {
	}
}

func TestSignalSubscribeRequiresChannels(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewSignalService(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stream, err := s.Subscribe(ctx)
	assert.Nil(t, stream)
	assert.ErrorIs(t, err, domain.ArgumentError{Field: "channels"})
	assert.NoError(t, ctx.Err())
}
