// Package publish delivers race snapshots to the dashboard, either as a JSON
// file or as NATS message.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/afero"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/model"
)

const (
	DefaultSubjectPrefix = "rse.snapshot"
	DefaultFlushTimeout  = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, snap *model.RaceSnapshot) error
	Close() error
}

// Subject returns the NATS subject for a race, e.g. rse.snapshot.road_america.1
func Subject(prefix, track string, race int) string {
	t := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(track)), " ", "_")
	t = strings.ReplaceAll(t, ".", "_")
	return fmt.Sprintf("%s.%s.%d", prefix, t, race)
}

// Marshal returns the persisted JSON representation (2 space indentation).
func Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// FilePublisher overwrites a file with the latest snapshot.
type FilePublisher struct {
	fs   afero.Fs
	path string
	l    *log.Logger
}

func NewFilePublisher(fs afero.Fs, path string) *FilePublisher {
	return &FilePublisher{fs: fs, path: path, l: log.Default().Named("publish.file")}
}

func (p *FilePublisher) Publish(ctx context.Context, snap *model.RaceSnapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(p.fs, p.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", p.path, err)
	}
	p.l.Info("Snapshot written", log.String("file", p.path), log.Int("cars", len(snap.Cars)))
	return nil
}

func (p *FilePublisher) Close() error { return nil }

// natsConn is the part of *nats.Conn used by NatsPublisher
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

type NatsPublisher struct {
	conn         natsConn
	subject      string
	flushTimeout time.Duration
	l            *log.Logger
}

// NewNatsPublisher publishes to subject using nc. The connection is drained on Close.
func NewNatsPublisher(nc *nats.Conn, subject string) *NatsPublisher {
	return newNatsPublisher(nc, subject)
}

func newNatsPublisher(c natsConn, subject string) *NatsPublisher {
	return &NatsPublisher{
		conn:         c,
		subject:      subject,
		flushTimeout: DefaultFlushTimeout,
		l:            log.Default().Named("publish.nats"),
	}
}

// Connect opens a connection to the NATS server at url.
// Failed connection attempts are retried until wait has passed.
func Connect(url string, wait time.Duration) (*nats.Conn, error) {
	opts := []nats.Option{nats.Name("rse")}
	if wait > 0 {
		opts = append(opts,
			nats.RetryOnFailedConnect(true),
			nats.ReconnectWait(time.Second),
			nats.MaxReconnects(max(1, int(wait/time.Second))))
	}
	return nats.Connect(url, opts...)
}

func (p *NatsPublisher) Publish(ctx context.Context, snap *model.RaceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	// the server roundtrip needs a deadline, an earlier one of ctx still applies
	fctx, cancel := context.WithTimeout(ctx, p.flushTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(fctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}
	p.l.Debug("Snapshot published", log.String("subject", p.subject), log.Int("bytes", len(data)))
	return nil
}

func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}

// Multi publishes to all publishers. Errors are collected, a failing
// publisher does not prevent the others from publishing.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, snap *model.RaceSnapshot) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
