// Package disk implements the block archive on top of LevelDB. Blocks
// are keyed by their big endian encoded number so a forward iteration
// returns them in chain order.
package disk

import (
	"encoding/binary"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/syndtr/goleveldb/leveldb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Disk represents a LevelDB backed block archive.
type Disk struct {
	db *leveldb.DB
}

// New opens or creates the archive database at the specified path.
func New(path string) (*Disk, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	return &Disk{db: db}, nil
}

// Write persists the block under its number.
func (d *Disk) Write(block ledger.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("marshal block %d: %w", block.Number, err)
	}

	if err := d.db.Put(blockKey(block.Number), data, nil); err != nil {
		return fmt.Errorf("write block %d: %w", block.Number, err)
	}

	return nil
}

// ReadAll returns every archived block in block number order.
func (d *Disk) ReadAll() ([]ledger.Block, error) {
	var blocks []ledger.Block

	iter := d.db.NewIterator(nil, nil)
	defer iter.Release()

	for iter.Next() {
		var block ledger.Block
		if err := json.Unmarshal(iter.Value(), &block); err != nil {
			return nil, fmt.Errorf("unmarshal block: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate archive: %w", err)
	}

	return blocks, nil
}

// Reset drops every archived block. This happens when the chain is
// replaced wholesale by a longer one from a peer.
func (d *Disk) Reset() error {
	batch := new(leveldb.Batch)

	iter := d.db.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterate archive: %w", err)
	}

	if err := d.db.Write(batch, nil); err != nil {
		return fmt.Errorf("reset archive: %w", err)
	}

	return nil
}

// Close releases the underlying database.
func (d *Disk) Close() error {
	return d.db.Close()
}

// blockKey encodes the block number so keys sort in chain order.
func blockKey(number uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, number)
	return key
}
