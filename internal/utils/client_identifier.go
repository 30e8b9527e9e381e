package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIDType distinguishes how a caller is identified for rate limiting.
type ClientIDType int

const (
	ClientIDTypeIP ClientIDType = iota
	ClientIDTypeDeviceID
)

// ClientIdentifier holds a typed value that is either an IP address
// (web callers) or a device ID (mobile apps).
type ClientIdentifier struct {
	Type  ClientIDType
	Value string
}

// GetClientIdentifier returns the Device-ID when the X-Device-ID header is
// present (mobile apps send it), otherwise the best-guess client IP.
func GetClientIdentifier(r *http.Request) ClientIdentifier {
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return ClientIdentifier{Type: ClientIDTypeDeviceID, Value: deviceID}
	}
	return ClientIdentifier{Type: ClientIDTypeIP, Value: detectIP(r)}
}

// detectIP extracts the best IP address from typical headers or RemoteAddr.
func detectIP(r *http.Request) string {
	forwardedFor := r.Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		for _, ip := range ips {
			cleanIP := strings.TrimSpace(ip)
			if isValidIP(cleanIP) {
				return cleanIP
			}
		}
	}

	cfConnectingIP := r.Header.Get("CF-Connecting-IP")
	if cfConnectingIP != "" && isValidIP(cfConnectingIP) {
		return cfConnectingIP
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" && isValidIP(realIP) {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
