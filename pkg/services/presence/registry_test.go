package presence

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterReplacesSameEmployee(t *testing.T) {
	r := NewRegistry()

	assert.Nil(t, r.Register(session("c-1", "emp-1", false, newFakeConn("c-1", 1))))
	replaced := r.Register(session("c-2", "emp-1", false, newFakeConn("c-2", 1)))

	require.NotNil(t, replaced)
	assert.Equal(t, "c-1", replaced.ConnectionID)
	assert.Equal(t, 1, r.Count())

	conns := r.ConnectionsFor("emp-1")
	require.Len(t, conns, 1)
	assert.Equal(t, "c-2", conns[0].ID())

	_, ok := r.Lookup("c-1")
	assert.False(t, ok)
}

func TestRegistryUnregisterStaleConnection(t *testing.T) {
	r := NewRegistry()
	r.Register(session("c-1", "emp-1", false, nil))
	r.Register(session("c-2", "emp-1", false, nil))

	_, ok := r.Unregister("c-1")
	assert.False(t, ok)

	s, ok := r.Unregister("c-2")
	require.True(t, ok)
	assert.Equal(t, "emp-1", s.Employee.ID)
	assert.Empty(t, r.ConnectionsFor("emp-1"))
}

func TestRegistryListOnlineOrdered(t *testing.T) {
	r := NewRegistry()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"emp-c", "emp-a", "emp-b"} {
		s := session("c-"+id, id, id == "emp-a", nil)
		s.ConnectedAt = base.Add(time.Duration(i) * time.Minute)
		r.Register(s)
	}

	online := r.ListOnline()
	require.Len(t, online, 3)
	assert.Equal(t, "emp-c", online[0].ID)
	assert.Equal(t, "emp-a", online[1].ID)
	assert.True(t, online[1].Observer)
	assert.Len(t, r.Observers(), 1)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c-%d", i)
			r.Register(session(id, fmt.Sprintf("emp-%d", i%10), i%2 == 0, nil))
			_ = r.ListOnline()
			_ = r.Observers()
			if i%3 == 0 {
				r.Unregister(id)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, r.Count(), 10)
}
