// Package controller turns a configured host into a ready Target.
package controller

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/hostctl/internal/config"
	"github.com/danmuck/hostctl/internal/host"
	"github.com/danmuck/hostctl/internal/protocol"
	"github.com/danmuck/hostctl/internal/target"
	"github.com/danmuck/hostctl/internal/transport"
)

// Opener resolves host entries from Config. Every remote session it opens
// shares one socket factory, which lives until Close.
type Opener struct {
	Config config.Config
	// Local configures targets for hosts in local mode.
	Local target.Options
	// Dialer replaces the zmq4 socket factory for remote hosts.
	Dialer transport.Dialer

	mu      sync.Mutex
	factory *transport.Factory
}

// Session is an open target plus whatever it holds open.
type Session struct {
	Name   string
	Target target.Target

	host *host.Host
}

// dialer returns the injected Dialer, or the shared factory, creating it on
// first use.
func (o *Opener) dialer() transport.Dialer {
	if o.Dialer != nil {
		return o.Dialer
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.factory == nil {
		o.factory = transport.NewFactory(o.Config.Transport)
	}
	return o.factory
}

// Close releases the shared socket factory, tearing down any socket a
// session still holds. A later Open starts a fresh factory.
func (o *Opener) Close() error {
	o.mu.Lock()
	f := o.factory
	o.factory = nil
	o.mu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// Open resolves name (or the only configured host) to a Session. Remote
// hosts are connected before Open returns.
func (o *Opener) Open(name string) (*Session, error) {
	entry, err := o.Config.Host(name)
	if err != nil {
		return nil, err
	}

	switch entry.Mode {
	case config.ModeLocal:
		tgt, err := target.Local(entry.Platform, o.Local)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("host", entry.Name).Str("platform", entry.Platform).Msg("local target ready")
		return &Session{Name: entry.Name, Target: tgt}, nil

	case config.ModeRemote:
		s := &Session{Name: entry.Name}
		s.host = host.New(o.dialer(), o.Config.Transport)
		if err := s.host.Connect(entry.Hostname, entry.APIPort, entry.UploadPort, entry.DownloadPort); err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Target = target.NewRemote(s.host)
		log.Debug().Str("host", entry.Name).Str("hostname", entry.Hostname).
			Uint32("api_port", entry.APIPort).Msg("remote target ready")
		return s, nil

	default:
		return nil, fmt.Errorf("%w: host %q mode %q", config.ErrInvalidConfig, entry.Name, entry.Mode)
	}
}

// Remote reports whether the session talks to an agent.
func (s *Session) Remote() bool {
	return s.host != nil
}

// Upload places localPath at remotePath on the session's host. Local
// sessions copy the file, honoring the backup option the same way an agent
// does. Options and the source are checked before anything at remotePath
// moves, and a failed copy puts the backup back.
func (s *Session) Upload(localPath string, remotePath string, opts ...protocol.FileOption) error {
	if s.host != nil {
		return s.host.Upload(localPath, remotePath, opts...)
	}
	var suffix string
	for _, opt := range opts {
		if opt.Name != protocol.OptionBackupExistingFile {
			return fmt.Errorf("%w: %q", protocol.ErrInvalidOption, opt.Name)
		}
		suffix = opt.Value
	}
	isFile, err := s.Target.FileIsFile(localPath)
	if err != nil {
		return err
	}
	if !isFile {
		return &target.OsError{Op: "upload", Path: localPath, Err: os.ErrNotExist}
	}

	backup := ""
	if suffix != "" {
		exists, err := s.Target.FileExists(remotePath)
		if err != nil {
			return err
		}
		if exists {
			backup = remotePath + suffix
			if err := s.Target.FileMove(remotePath, backup); err != nil {
				return err
			}
		}
	}
	if err := s.Target.FileCopy(localPath, remotePath); err != nil {
		if backup != "" {
			if rerr := s.Target.FileMove(backup, remotePath); rerr != nil {
				log.Error().Err(rerr).Str("backup", backup).Msg("restore after failed upload")
			}
		}
		return err
	}
	return nil
}

// Close releases the host sockets. The socket factory belongs to the Opener.
func (s *Session) Close() error {
	if s.host == nil {
		return nil
	}
	return s.host.Close()
}
