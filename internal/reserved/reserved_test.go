package reserved

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContains(t *testing.T) {
	s := Default()

	tests := []struct {
		ip      string
		want    bool
		network string
	}{
		{"10.1.2.3", true, "10.0.0.0/8"},
		{"127.0.0.1", true, "127.0.0.0/8"},
		{"172.31.255.255", true, "172.16.0.0/12"},
		{"172.32.0.1", false, ""},
		{"192.168.1.1", true, "192.168.0.0/16"},
		{"169.254.10.10", true, "169.254.0.0/16"},
		{"100.64.0.1", true, "100.64.0.0/10"},
		{"224.0.0.251", true, "224.0.0.0/4"},
		{"255.255.255.255", true, "240.0.0.0/4"},
		{"0.0.0.0", true, "0.0.0.0/8"},
		{"::ffff:192.168.1.1", true, "192.168.0.0/16"},
		{"::1", true, "::1/128"},
		{"::", true, "::/128"},
		{"fd00::1", true, "fc00::/7"},
		{"fe80::1", true, "fe80::/10"},
		{"ff02::1", true, "ff00::/8"},
		{"8.8.8.8", false, ""},
		{"203.0.113.1", false, ""},
		{"2001:db8::1", false, ""},
		{"2001:218::1", false, ""},
		{"::2", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip)

			assert.Equal(t, tt.want, s.Contains(ip))
			assert.Equal(t, tt.network, s.Network(ip))
		})
	}
}

func TestNewInvalidNetwork(t *testing.T) {
	_, err := New([]string{"10.0.0.0/8", "not-a-network"})
	assert.Error(t, err)
}

func TestNewEmpty(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	assert.False(t, s.Contains(net.ParseIP("10.0.0.1")))
	assert.False(t, s.Contains(net.ParseIP("::1")))
}

func TestContainsInvalidIP(t *testing.T) {
	assert.False(t, Default().Contains(net.IP{1, 2, 3}))
}
