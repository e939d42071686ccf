package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
)

const snapshotVersion = 1

// Snapshot is the on-disk form of a MemoryRecordStore.
type Snapshot struct {
	Version      int                  `json:"version"`
	SavedAt      time.Time            `json:"saved_at"`
	Customers    []models.Customer    `json:"customers"`
	Accounts     []models.Account     `json:"accounts"`
	Transactions []models.Transaction `json:"transactions"`
}

func (m *MemoryRecordStore) snapshotLocked() Snapshot {
	s := Snapshot{
		Version:      snapshotVersion,
		Customers:    make([]models.Customer, 0, len(m.customerOrder)),
		Accounts:     make([]models.Account, 0, len(m.accountOrder)),
		Transactions: make([]models.Transaction, len(m.transactions)),
	}
	for _, id := range m.customerOrder {
		s.Customers = append(s.Customers, *m.customers[id])
	}
	for _, id := range m.accountOrder {
		s.Accounts = append(s.Accounts, m.accounts[id].Clone())
	}
	copy(s.Transactions, m.transactions)
	return s
}

// Restore replaces the store contents with the snapshot.
func (m *MemoryRecordStore) Restore(s Snapshot) error {
	fresh := NewMemoryRecordStore(m.snapshotPath)
	for _, c := range s.Customers {
		if err := fresh.AddCustomer(c); err != nil {
			return err
		}
	}
	for _, a := range s.Accounts {
		if err := fresh.AddAccount(a); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = fresh.customers
	m.customerOrder = fresh.customerOrder
	m.accounts = fresh.accounts
	m.accountOrder = fresh.accountOrder
	m.transactions = append(make([]models.Transaction, 0, len(s.Transactions)), s.Transactions...)
	return nil
}

// LoadSnapshot reads a snapshot file. A missing file yields an error
// matching fs.ErrNotExist.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

// SaveSnapshot writes the snapshot to path+".tmp" and renames it over path,
// so an interrupted write never leaves a truncated file behind.
func SaveSnapshot(path string, snap Snapshot) error {
	snap.SavedAt = time.Now()
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Open builds a store from the snapshot at path, starting empty when the
// file does not exist yet.
func Open(path string) (*MemoryRecordStore, error) {
	store := NewMemoryRecordStore(path)
	if path == "" {
		return store, nil
	}

	snap, err := LoadSnapshot(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	if err := store.Restore(snap); err != nil {
		return nil, err
	}
	return store, nil
}
