// Package store is the embedding-host-side persistence layer spec.md §6
// calls out as an external collaborator ("no environment variables, no
// files, no network" — that constraint binds the core interpreter, not
// the host around it). It durably records named baseline Snapshots so a
// host can load one, run a Transaction against it, and persist the
// resulting view as the next baseline. The core transaction/tree/change
// packages never import this package.
package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"

	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/tree"
)

// ErrNotFound is returned by Load when name has no stored snapshot.
var ErrNotFound = errors.New("store: snapshot not found")

// record is the gob-serializable wire shape of a tree.Snapshot. There's
// no third-party structured-serialization library in the retrieval pack
// that fits an ad hoc struct-of-maps shape like this one (protobuf/grpc
// were dropped — see DESIGN.md — because nothing else in this engine
// needs an RPC stack, and pulling one in only for this would mean
// generating .proto-derived code for a single internal record type); gob
// is the standard-library choice for exactly this "one Go process writes
// it, the same Go process reads it back" case.
type record struct {
	Root  ids.NodeID
	Nodes map[ids.NodeID]tree.SnapshotNode
}

// Store persists named tree.Snapshot baselines in an embedded LevelDB
// instance, grounded on the teacher's direct syndtr/goleveldb dependency.
type Store struct {
	db  *leveldb.DB
	log *zap.Logger
}

// Open opens (creating if absent) a LevelDB database at dir.
func Open(dir string, log *zap.Logger) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists snapshot under name, overwriting any prior value.
func (s *Store) Save(name string, snapshot tree.Snapshot) error {
	nodes := make(map[ids.NodeID]tree.SnapshotNode, snapshot.NodeCount())
	for _, id := range snapshot.AllIDs() {
		nodes[id] = snapshot.GetSnapshotNode(id)
	}
	rec := record{Root: snapshot.Root(), Nodes: nodes}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}
	if err := s.db.Put([]byte(name), buf.Bytes(), nil); err != nil {
		return fmt.Errorf("store: put %s: %w", name, err)
	}
	s.log.Debug("saved snapshot", zap.String("name", name), zap.Int("nodes", len(nodes)))
	return nil
}

// Load reads the snapshot stored under name.
func (s *Store) Load(name string) (tree.Snapshot, error) {
	raw, err := s.db.Get([]byte(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return tree.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return tree.Snapshot{}, fmt.Errorf("store: get %s: %w", name, err)
	}

	var rec record
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return tree.Snapshot{}, fmt.Errorf("store: decode %s: %w", name, err)
	}
	snapshot, err := tree.New(rec.Root, rec.Nodes)
	if err != nil {
		return tree.Snapshot{}, fmt.Errorf("store: rebuild %s: %w", name, err)
	}
	return snapshot, nil
}

// Names lists every stored snapshot name.
func (s *Store) Names() ([]string, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	var names []string
	for iter.Next() {
		names = append(names, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("store: iterate: %w", err)
	}
	return names, nil
}
