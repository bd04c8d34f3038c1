// Package kvtest holds the behaviour every kv.Store backend must share.
package kvtest

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/monedero-app/monedero/internal/kv"
)

// StoreSuite runs the common Store contract against a backend. Open must
// return a fresh, empty store for every test.
type StoreSuite struct {
	suite.Suite
	Open  func() kv.Store
	store kv.Store
	ctx   context.Context
}

// SetupTest runs before each test
func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.Open()
}

// TearDownTest runs after each test
func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreSuite) TestGetMissing() {
	v, found, err := s.store.Get(s.ctx, "@user")
	s.Require().NoError(err)
	s.False(found)
	s.Nil(v)
}

func (s *StoreSuite) TestSetGet() {
	s.Require().NoError(s.store.Set(s.ctx, "@user", []byte(`{"id":"1"}`)))

	v, found, err := s.store.Get(s.ctx, "@user")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(`{"id":"1"}`, string(v))
}

func (s *StoreSuite) TestSetReplacesWholeValue() {
	s.Require().NoError(s.store.Set(s.ctx, "k", []byte(`[1,2,3,4,5]`)))
	s.Require().NoError(s.store.Set(s.ctx, "k", []byte(`[]`)))

	v, _, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal(`[]`, string(v))
}

func (s *StoreSuite) TestRemove() {
	s.Require().NoError(s.store.Set(s.ctx, "@user", []byte(`{}`)))
	s.Require().NoError(s.store.Remove(s.ctx, "@user"))

	_, found, err := s.store.Get(s.ctx, "@user")
	s.Require().NoError(err)
	s.False(found)

	s.NoError(s.store.Remove(s.ctx, "@user"), "removing an absent key is not an error")
}

func (s *StoreSuite) TestKeys() {
	for _, k := range []string{"@users_profile", "@transactions_2", "@transactions_1", "plain/with/slash", ".dotted"} {
		s.Require().NoError(s.store.Set(s.ctx, k, []byte(`[]`)))
	}

	keys, err := s.store.Keys(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{".dotted", "@transactions_1", "@transactions_2", "@users_profile", "plain/with/slash"}, keys)
}

func (s *StoreSuite) TestReturnedValueIsACopy() {
	s.Require().NoError(s.store.Set(s.ctx, "k", []byte("abc")))
	v, _, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	v[0] = 'z'

	again, _, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal("abc", string(again))
}

func (s *StoreSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, _, err := s.store.Get(ctx, "k")
	s.ErrorIs(err, context.Canceled)
	s.ErrorIs(s.store.Set(ctx, "k", []byte("v")), context.Canceled)
}

func (s *StoreSuite) TestClosed() {
	s.Require().NoError(s.store.Close())

	_, _, err := s.store.Get(s.ctx, "k")
	s.ErrorIs(err, kv.ErrClosed)
	s.ErrorIs(s.store.Set(s.ctx, "k", []byte("v")), kv.ErrClosed)
	s.ErrorIs(s.store.Remove(s.ctx, "k"), kv.ErrClosed)
	s.store = nil
}
