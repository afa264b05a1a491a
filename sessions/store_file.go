package sessions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	sessionFileName = "session.json"
	lockoutFileName = "lockout.json"
)

// envelope wraps a persisted record with the identity of the writing
// context, so that watchers can drop events caused by their own writes.
// A null Record is the tombstone left by Clear.
type envelope struct {
	Writer string          `json:"writer"`
	Record json.RawMessage `json:"record"`
}

// FileStore persists the session and the lockout map as JSON files in a
// device-scoped directory. Sibling processes sharing the directory see
// each other's session writes as change notifications through an
// fsnotify watcher; the files themselves are the only shared channel.
type FileStore struct {
	dir     string
	id      string
	log     zerolog.Logger
	watcher *fsnotify.Watcher
	changes chan Change

	mu sync.Mutex // serializes file operations within this handle
}

var _ Store = (*FileStore)(nil)

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

func WithFileLogger(log zerolog.Logger) FileStoreOption {
	return func(fs *FileStore) { fs.log = log }
}

// NewFileStore opens (creating if needed) the store directory and
// starts watching it for sibling writes.
func NewFileStore(dir string, options ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching store directory: %w", err)
	}

	fs := &FileStore{
		dir:     dir,
		id:      uuid.New().String(),
		log:     zerolog.Nop(),
		watcher: watcher,
		changes: make(chan Change, 8),
	}
	for _, opt := range options {
		opt(fs)
	}

	go fs.watch()
	return fs, nil
}

func (fs *FileStore) Read() (Session, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	record, _, ok := fs.readRecord(sessionFileName)
	if !ok {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(record, &s); err != nil {
		// Corrupt session records degrade to "no session".
		fs.log.Warn().Err(err).Msg("discarding malformed session record")
		return Session{}, false
	}
	return s, true
}

func (fs *FileStore) Write(s Session) error {
	record, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.writeRecord(sessionFileName, record)
}

// Clear writes a tombstone rather than removing the file: siblings
// still need an attributable notification, and remove events carry no
// writer identity.
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.writeRecord(sessionFileName, nil)
}

func (fs *FileStore) ReadLockoutMeta(email string) LockoutMeta {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.readMetaMap()[MetaKey(email)]
}

func (fs *FileStore) WriteLockoutMeta(email string, meta LockoutMeta) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	all := fs.readMetaMap()
	all[MetaKey(email)] = meta
	record, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encoding lockout map: %w", err)
	}
	return fs.writeRecord(lockoutFileName, record)
}

func (fs *FileStore) ResetLockoutMeta(email string) error {
	return fs.WriteLockoutMeta(email, LockoutMeta{})
}

func (fs *FileStore) Changes() <-chan Change {
	return fs.changes
}

func (fs *FileStore) Close() error {
	// Closing the watcher ends the watch goroutine, which closes the
	// changes channel on its way out.
	return fs.watcher.Close()
}

func (fs *FileStore) readMetaMap() map[string]LockoutMeta {
	all := make(map[string]LockoutMeta)
	record, _, ok := fs.readRecord(lockoutFileName)
	if !ok {
		return all
	}
	if err := json.Unmarshal(record, &all); err != nil {
		fs.log.Warn().Err(err).Msg("discarding malformed lockout map")
		return make(map[string]LockoutMeta)
	}
	return all
}

// readRecord returns the record payload and the writer ID from an
// envelope file. Missing, corrupt, or tombstoned files all come back as
// absent.
func (fs *FileStore) readRecord(name string) (json.RawMessage, string, bool) {
	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		return nil, "", false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		fs.log.Warn().Err(err).Str("file", name).Msg("discarding malformed store file")
		return nil, "", false
	}
	if len(env.Record) == 0 || string(env.Record) == "null" {
		return nil, env.Writer, false
	}
	return env.Record, env.Writer, true
}

func (fs *FileStore) writeRecord(name string, record json.RawMessage) error {
	data, err := json.Marshal(envelope{Writer: fs.id, Record: record})
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}
	path := filepath.Join(fs.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// watch turns file events from sibling processes into change
// notifications, dropping events attributed to this handle's own
// writes.
func (fs *FileStore) watch() {
	defer close(fs.changes)
	for {
		select {
		case ev, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != sessionFileName {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			fs.mu.Lock()
			_, writer, _ := fs.readRecord(sessionFileName)
			fs.mu.Unlock()
			if writer == fs.id {
				continue
			}
			select {
			case fs.changes <- Change{Origin: writer, At: time.Now()}:
			default:
				// Slow consumer; the periodic sweep catches it up.
			}
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.log.Warn().Err(err).Msg("store watcher error")
		}
	}
}
