package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/swap-contract/contracts/swap/swapconst"
)

// Store keeps the Config record. Save must be atomic: a failed Save leaves
// the previous record visible.
type Store interface {
	// Load returns ErrConfigNotFound if there is no record and
	// ErrStorageCorrupted if it can't be decoded.
	Load(ctx context.Context) (Config, error)
	Save(ctx context.Context, cfg Config) error
}

// KVStore is a Store over neo-go key-value storage. The record is kept under
// the same key and in the same format as in the swap contract storage.
type KVStore struct {
	db storage.Store
}

var configKey = []byte(swapconst.ConfigKey)

// NewKVStore wraps db.
func NewKVStore(db storage.Store) *KVStore {
	return &KVStore{db: db}
}

// OpenKVStore opens the database described by cfg.
func OpenKVStore(cfg dbconfig.DBConfiguration) (*KVStore, error) {
	db, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Type, err)
	}

	return NewKVStore(db), nil
}

// Load implements Store.
func (s *KVStore) Load(ctx context.Context) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	raw, err := s.db.Get(configKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return Config{}, ErrConfigNotFound
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return DecodeConfig(raw)
}

// Save implements Store.
func (s *KVStore) Save(ctx context.Context, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}

	err = s.db.PutChangeSet(map[string][]byte{string(configKey): raw}, nil)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Close closes underlying database.
func (s *KVStore) Close() error {
	return s.db.Close()
}

// EncodeConfig serializes cfg the way the swap contract stores it.
func EncodeConfig(cfg Config) ([]byte, error) {
	item := stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(cfg.Admin.BytesBE()),
		assetToItem(cfg.Accepted),
		assetToItem(cfg.Offered),
		stackitem.NewBigInteger(cfg.ExchangeRate.ToBig()),
		stackitem.NewByteArray([]byte(cfg.ViewCredential)),
		stackitem.NewBigInteger(big.NewInt(int64(cfg.Forward))),
		stackitem.NewBigInteger(cfg.TotalRaised.ToBig()),
		stackitem.NewBigInteger(new(big.Int).SetUint64(cfg.SaleEndTime)),
	})

	raw, err := stackitem.Serialize(item)
	if err != nil {
		return nil, fmt.Errorf("serialize config: %w", err)
	}

	return raw, nil
}

// DecodeConfig is the inverse of EncodeConfig. It also accepts records read
// from the swap contract storage.
func DecodeConfig(raw []byte) (Config, error) {
	cfg, err := decodeConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrStorageCorrupted, err)
	}

	return cfg, nil
}

func decodeConfig(raw []byte) (Config, error) {
	var cfg Config

	item, err := stackitem.Deserialize(raw)
	if err != nil {
		return cfg, err
	}

	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return cfg, errors.New("not a struct")
	}
	if len(arr) != 8 {
		return cfg, fmt.Errorf("wrong number of fields %d", len(arr))
	}

	if cfg.Admin, err = itemToUint160(arr[0]); err != nil {
		return cfg, fmt.Errorf("field Admin: %w", err)
	}
	if cfg.Accepted, err = itemToAsset(arr[1]); err != nil {
		return cfg, fmt.Errorf("field Accepted: %w", err)
	}
	if cfg.Offered, err = itemToAsset(arr[2]); err != nil {
		return cfg, fmt.Errorf("field Offered: %w", err)
	}
	if cfg.ExchangeRate, err = itemToAmount(arr[3]); err != nil {
		return cfg, fmt.Errorf("field ExchangeRate: %w", err)
	}

	cred, err := arr[4].TryBytes()
	if err != nil {
		return cfg, fmt.Errorf("field ViewCredential: %w", err)
	}
	cfg.ViewCredential = string(cred)

	forward, err := arr[5].TryInteger()
	if err != nil {
		return cfg, fmt.Errorf("field Forward: %w", err)
	}
	if !forward.IsUint64() || forward.Uint64() > 255 || !ForwardPolicy(forward.Uint64()).valid() {
		return cfg, fmt.Errorf("field Forward: unknown policy %s", forward)
	}
	cfg.Forward = ForwardPolicy(forward.Uint64())

	if cfg.TotalRaised, err = itemToAmount(arr[6]); err != nil {
		return cfg, fmt.Errorf("field TotalRaised: %w", err)
	}

	end, err := arr[7].TryInteger()
	if err != nil {
		return cfg, fmt.Errorf("field SaleEndTime: %w", err)
	}
	if !end.IsUint64() {
		return cfg, fmt.Errorf("field SaleEndTime: out of range %s", end)
	}
	cfg.SaleEndTime = end.Uint64()

	return cfg, nil
}

func assetToItem(a AssetRef) stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(a.Hash.BytesBE()),
		stackitem.NewByteArray(a.CodeHash.BytesBE()),
	})
}

func itemToAsset(item stackitem.Item) (AssetRef, error) {
	var a AssetRef

	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return a, errors.New("not a struct")
	}
	if len(arr) != 2 {
		return a, fmt.Errorf("wrong number of fields %d", len(arr))
	}

	h, err := itemToUint160(arr[0])
	if err != nil {
		return a, fmt.Errorf("field Hash: %w", err)
	}

	b, err := arr[1].TryBytes()
	if err != nil {
		return a, fmt.Errorf("field CodeHash: %w", err)
	}
	code, err := util.Uint256DecodeBytesBE(b)
	if err != nil {
		return a, fmt.Errorf("field CodeHash: %w", err)
	}

	return AssetRef{Hash: h, CodeHash: code}, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}

	return util.Uint160DecodeBytesBE(b)
}

func itemToAmount(item stackitem.Item) (uint256.Int, error) {
	b, err := item.TryInteger()
	if err != nil {
		return uint256.Int{}, err
	}

	return AmountFromBig(b)
}
