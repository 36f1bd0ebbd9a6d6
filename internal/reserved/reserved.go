// Package reserved detects addresses in special-purpose networks that can
// never be geolocated.
package reserved

import (
	"net"

	"github.com/asergeyev/nradix"
	"github.com/juju/errors"
)

// Networks lists the special-purpose blocks rejected by Set. Documentation
// ranges (192.0.2.0/24, 198.51.100.0/24, 203.0.113.0/24, 2001:db8::/32) are
// not included: they are ordinary "not in the database" addresses.
var Networks = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"::/128",
	"::1/128",
	"100::/64",
	"fc00::/7",
	"fe80::/10",
	"ff00::/8",
}

// Set is an immutable radix tree of networks. IPv4 and IPv6 live in separate
// trees so a v4 prefix never shadows a v6 one.
type Set struct {
	v4 *nradix.Tree
	v6 *nradix.Tree
}

// New builds a Set from CIDR strings.
func New(cidrs []string) (*Set, error) {
	s := &Set{
		v4: nradix.NewTree(0),
		v6: nradix.NewTree(0),
	}

	for _, cidr := range cidrs {
		ip, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, errors.Annotatef(err, "Incorrect network %s", cidr)
		}

		tree := s.v6
		if ip.To4() != nil {
			tree = s.v4
		}
		if err := tree.AddCIDR(network.String(), network.String()); err != nil && err != nradix.ErrNodeBusy {
			return nil, errors.Annotatef(err, "Cannot add network %s", cidr)
		}
	}

	return s, nil
}

// Default returns a Set built from Networks.
func Default() *Set {
	s, err := New(Networks)
	if err != nil {
		panic(err)
	}
	return s
}

// Contains reports whether ip belongs to one of the networks. IPv4-mapped
// IPv6 addresses are matched against the IPv4 networks.
func (s *Set) Contains(ip net.IP) bool {
	network, err := s.lookup(ip)
	return err == nil && network != nil
}

// Network returns the matching network, or an empty string.
func (s *Set) Network(ip net.IP) string {
	network, err := s.lookup(ip)
	if err != nil || network == nil {
		return ""
	}
	return network.(string)
}

func (s *Set) lookup(ip net.IP) (interface{}, error) {
	if v4 := ip.To4(); v4 != nil {
		return s.v4.FindCIDR(v4.String() + "/32")
	}
	if len(ip) != net.IPv6len {
		return nil, errors.Errorf("Incorrect IP %v", ip)
	}
	return s.v6.FindCIDR(ip.String() + "/128")
}
