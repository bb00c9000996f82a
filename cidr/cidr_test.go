package cidr

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetMembership(t *testing.T) {
	s, err := NewSet([]string{"10.0.0.0/8", "192.168.1.5"})
	require.NoError(t, err)

	require.True(t, s.ContainsString("10.1.2.3"))
	require.True(t, s.ContainsString("192.168.1.5"))
	require.False(t, s.ContainsString("192.168.1.6"))
	require.False(t, s.ContainsString("8.8.8.8"))
}

func TestSetRejectsGarbage(t *testing.T) {
	_, err := NewSet([]string{"not-an-ip"})
	require.ErrorIs(t, err, ErrInvalidCIDR)
}

func TestNilAndEmptyAreNeverMembers(t *testing.T) {
	s, err := NewSet(nil)
	require.NoError(t, err)
	require.False(t, s.Contains(nil))
	require.False(t, s.Contains(net.ParseIP("1.1.1.1")))
}

// P8 (CIDR): for every ip in CIDR, membership returns true; for a
// sample outside, false.
func TestP8SampleOutside(t *testing.T) {
	s, err := NewSet([]string{"203.0.113.0/24"})
	require.NoError(t, err)

	for _, ip := range []string{"203.0.113.1", "203.0.113.254"} {
		require.True(t, s.ContainsString(ip), ip)
	}
	for _, ip := range []string{"8.8.8.8", "1.1.1.1", "203.0.114.1"} {
		require.False(t, s.ContainsString(ip), ip)
	}
}
