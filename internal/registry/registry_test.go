package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUniquePerKey(t *testing.T) {
	r := New()
	first, second := &struct{ n int }{1}, &struct{ n int }{2}

	assert.True(t, r.Register(RoleLobby, "ABC234", first))
	assert.False(t, r.Register(RoleLobby, "ABC234", second), "second owner must be rejected")

	// Same code under the other role is a distinct key.
	assert.True(t, r.Register(RoleGame, "ABC234", second))

	h, ok := r.Lookup(RoleLobby, "ABC234")
	require.True(t, ok)
	assert.Same(t, first, h)
}

func TestLookupMissing(t *testing.T) {
	r := New()
	_, ok := r.Lookup(RoleGame, "ABC234")
	assert.False(t, ok)
}

func TestReleaseIsLeaseScoped(t *testing.T) {
	r := New()
	old, fresh := &struct{ n int }{1}, &struct{ n int }{2}

	require.True(t, r.Register(RoleLobby, "ABC234", old))
	r.Release(RoleLobby, "ABC234", old)
	_, ok := r.Lookup(RoleLobby, "ABC234")
	assert.False(t, ok)

	// A stale owner must not evict its successor.
	require.True(t, r.Register(RoleLobby, "ABC234", fresh))
	r.Release(RoleLobby, "ABC234", old)
	h, ok := r.Lookup(RoleLobby, "ABC234")
	require.True(t, ok)
	assert.Same(t, fresh, h)
}

func TestCodesFiltersByRole(t *testing.T) {
	r := New()
	r.Register(RoleLobby, "AAAAAA", 1)
	r.Register(RoleLobby, "BBBBBB", 2)
	r.Register(RoleGame, "AAAAAA", 3)

	assert.ElementsMatch(t, []string{"AAAAAA", "BBBBBB"}, r.Codes(RoleLobby))
	assert.ElementsMatch(t, []string{"AAAAAA"}, r.Codes(RoleGame))
}

func TestConcurrentRegisterSingleWinner(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	wins := make(chan int, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if r.Register(RoleGame, "ABC234", n) {
				wins <- n
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []int
	for n := range wins {
		winners = append(winners, n)
	}
	require.Len(t, winners, 1)

	h, ok := r.Lookup(RoleGame, "ABC234")
	require.True(t, ok)
	assert.Equal(t, winners[0], h)
}
