package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"sheet2form/internal/config"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultSSHPort = "22"

// Target is a file on a remote host, written as user@host:path.
type Target struct {
	User string
	Host string
	Path string
}

func (t Target) String() string {
	return fmt.Sprintf("%s@%s:%s", t.User, t.Host, t.Path)
}

// ParseTarget parses a target in format: user@host:path
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return Target{}, fmt.Errorf("remote target is empty")
	}

	parts := strings.SplitN(s, "@", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Target{}, fmt.Errorf("invalid remote target %q: expected user@host:path", s)
	}

	hostParts := strings.SplitN(parts[1], ":", 2)
	if len(hostParts) != 2 || hostParts[0] == "" || hostParts[1] == "" {
		return Target{}, fmt.Errorf("invalid remote target %q: expected user@host:path", s)
	}

	return Target{User: parts[0], Host: hostParts[0], Path: hostParts[1]}, nil
}

// LooksRemote reports whether s should be fetched over SSH rather than opened locally.
func LooksRemote(s string) bool {
	if strings.Contains(s, "://") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 {
		return false
	}
	colon := strings.Index(s[at:], ":")
	return colon > 1
}

// SSHFetcher downloads files over SSH using public key authentication.
type SSHFetcher struct {
	keyPath        string
	knownHostsPath string
	retry          config.RetryConfig

	// fetchOnce is swapped out in tests.
	fetchOnce func(ctx context.Context, target Target) ([]byte, error)
}

// NewSSHFetcher creates a fetcher. When knownHostsPath does not exist, host keys
// are not verified.
func NewSSHFetcher(keyPath, knownHostsPath string) *SSHFetcher {
	f := &SSHFetcher{
		keyPath:        keyPath,
		knownHostsPath: knownHostsPath,
		retry:          config.DefaultResilienceConfig.RemoteFetch,
	}
	f.fetchOnce = f.download
	return f
}

// Fetch returns the contents of target, retrying transient failures.
func (f *SSHFetcher) Fetch(ctx context.Context, target Target) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, f.retry.Timeout)
		data, err := f.fetchOnce(attemptCtx, target)
		cancel()
		if err == nil {
			log.Info().
				Str("target", target.String()).
				Int("bytes", len(data)).
				Int("attempt", attempt).
				Msg("Fetched remote spreadsheet")
			return data, nil
		}
		lastErr = err

		if attempt == f.retry.MaxAttempts || ctx.Err() != nil {
			break
		}

		wait := f.retry.Backoff(attempt)
		log.Warn().
			Err(err).
			Str("target", target.String()).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Remote fetch failed, retrying")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch %s cancelled: %w", target, ctx.Err())
		}
	}

	return nil, fmt.Errorf("failed to fetch %s: %w", target, lastErr)
}

// download runs one SSH connection and reads the target file from it.
func (f *SSHFetcher) download(ctx context.Context, target Target) ([]byte, error) {
	clientConfig, err := f.clientConfig(target.User)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(target.Host, defaultSSHPort)
	dialer := &net.Dialer{Timeout: clientConfig.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SSH server %s: %w", target.Host, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SSH handshake with %s failed: %w", target.Host, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	log.Debug().
		Str("host", target.Host).
		Str("user", target.User).
		Msg("Connected to SSH server")

	// Unblock session.Output when the caller gives up.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-stop:
		}
	}()

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	data, err := session.Output(catCommand(target.Path))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("reading %s: %w", target.Path, ctx.Err())
		}
		return nil, fmt.Errorf("reading %s: %w", target.Path, err)
	}
	return data, nil
}

func (f *SSHFetcher) clientConfig(user string) (*ssh.ClientConfig, error) {
	keyData, err := os.ReadFile(f.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key file %s: %w", f.keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH private key: %w", err)
	}

	hostKeyCallback, err := f.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         30 * time.Second,
	}, nil
}

func (f *SSHFetcher) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if f.knownHostsPath == "" {
		log.Warn().Msg("No known_hosts file configured, host keys will not be verified")
		return ssh.InsecureIgnoreHostKey(), nil
	}

	if _, err := os.Stat(f.knownHostsPath); errors.Is(err, os.ErrNotExist) {
		log.Warn().
			Str("known_hosts", f.knownHostsPath).
			Msg("known_hosts file not found, host keys will not be verified")
		return ssh.InsecureIgnoreHostKey(), nil
	}

	callback, err := knownhosts.New(f.knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", f.knownHostsPath, err)
	}
	return callback, nil
}

// catCommand builds the remote read command. A leading ~/ is dropped since the
// session starts in the home directory and a quoted ~ is not expanded.
func catCommand(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		path = rest
	}
	return "cat " + shellQuote(path)
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
