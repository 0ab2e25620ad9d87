package applemidi

import (
	"net"
	"strconv"
)

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, newError("split_addr", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, newError("parse_port", addr, err)
	}
	return host, port, nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// dataAddrFromControl derives the listen address for a session's data
// socket from its control socket's actual bound address: same host,
// port + 1.
func dataAddrFromControl(controlAddr net.Addr) (string, error) {
	host, port, err := splitHostPort(controlAddr.String())
	if err != nil {
		return "", err
	}
	return joinHostPort(host, port+1), nil
}
