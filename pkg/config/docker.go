package config

import (
	"net"
	"net/url"
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker returns true if the application is running inside a Docker container.
// Detection is based on the presence of /.dockerenv file which exists in all Docker containers.
// The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveHostForDocker returns the host to dial for a service on the host machine.
// Inside Docker, "localhost" and "127.0.0.1" become "host.docker.internal".
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

// ResolveURLForDocker applies ResolveHostForDocker to the host of a URL,
// keeping its port. Unparseable URLs are returned unchanged.
func ResolveURLForDocker(rawURL string) string {
	return resolveURL(rawURL, IsRunningInDocker())
}

func resolveHost(host string, inDocker bool) string {
	if !inDocker {
		return host
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return host
}

func resolveURL(rawURL string, inDocker bool) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	host := resolveHost(u.Hostname(), inDocker)
	if host == u.Hostname() {
		return rawURL
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}
	return u.String()
}
