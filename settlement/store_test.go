package settlement

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := testParams(123, ForwardImmediate).config()
	cfg.TotalRaised = MaxAmount()
	cfg.SaleEndTime = 1700000000
	return cfg
}

func TestConfigCodec(t *testing.T) {
	cfg := testConfig()

	raw, err := EncodeConfig(cfg)
	require.NoError(t, err)

	actual, err := DecodeConfig(raw)
	require.NoError(t, err)
	require.Equal(t, cfg, actual)

	t.Run("layout", func(t *testing.T) {
		item, err := stackitem.Deserialize(raw)
		require.NoError(t, err)

		fields := item.Value().([]stackitem.Item)
		require.Len(t, fields, 8)

		admin, err := fields[0].TryBytes()
		require.NoError(t, err)
		require.Equal(t, adminAcc.BytesBE(), admin)

		cred, err := fields[4].TryBytes()
		require.NoError(t, err)
		require.Equal(t, testCredential, string(cred))
	})

	t.Run("corrupted", func(t *testing.T) {
		for name, raw := range map[string][]byte{
			"empty":   nil,
			"garbage": {0xff, 0x01, 0x02},
			"integer": mustSerialize(t, stackitem.Make(42)),
			"short":   mustSerialize(t, stackitem.NewStruct([]stackitem.Item{stackitem.Make(1)})),
		} {
			_, err := DecodeConfig(raw)
			require.ErrorIs(t, err, ErrStorageCorrupted, name)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		mod := func(i int, v stackitem.Item) []byte {
			item, err := stackitem.Deserialize(raw)
			require.NoError(t, err)

			fields := item.Value().([]stackitem.Item)
			fields[i] = v
			return mustSerialize(t, stackitem.NewStruct(fields))
		}

		for name, raw := range map[string][]byte{
			"negative rate":  mod(3, stackitem.Make(-1)),
			"unknown policy": mod(5, stackitem.Make(7)),
			"short admin":    mod(0, stackitem.Make([]byte{1, 2, 3})),
			"flat asset":     mod(1, stackitem.Make(util.Uint160{}.BytesBE())),
			"negative end":   mod(7, stackitem.Make(-5)),
		} {
			_, err := DecodeConfig(raw)
			require.ErrorIs(t, err, ErrStorageCorrupted, name)
		}
	})
}

func mustSerialize(t *testing.T, item stackitem.Item) []byte {
	raw, err := stackitem.Serialize(item)
	require.NoError(t, err)
	return raw
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()

	check := func(t *testing.T, s *KVStore) {
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, ErrConfigNotFound)

		cfg := testConfig()
		require.NoError(t, s.Save(ctx, cfg))

		actual, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, cfg, actual)

		cfg.TotalRaised = NewAmount(1)
		require.NoError(t, s.Save(ctx, cfg))

		actual, err = s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, NewAmount(1), actual.TotalRaised)
	}

	t.Run(dbconfig.InMemoryDB, func(t *testing.T) {
		s, err := OpenKVStore(dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB})
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, s.Close()) })

		check(t, s)
	})

	t.Run(dbconfig.BoltDB, func(t *testing.T) {
		s, err := OpenKVStore(dbconfig.DBConfiguration{
			Type: dbconfig.BoltDB,
			BoltDBOptions: dbconfig.BoltDBOptions{
				FilePath: filepath.Join(t.TempDir(), "swap.bolt"),
			},
		})
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, s.Close()) })

		check(t, s)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := OpenKVStore(dbconfig.DBConfiguration{Type: "tape"})
		require.Error(t, err)
	})

	t.Run("corrupted record", func(t *testing.T) {
		db := storage.NewMemoryStore()
		require.NoError(t, db.PutChangeSet(map[string][]byte{string(configKey): {0x00}}, nil))

		_, err := NewKVStore(db).Load(ctx)
		require.ErrorIs(t, err, ErrStorageCorrupted)
	})

	t.Run("canceled", func(t *testing.T) {
		s := NewKVStore(storage.NewMemoryStore())

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		require.ErrorIs(t, s.Save(cctx, testConfig()), context.Canceled)
		_, err := s.Load(cctx)
		require.ErrorIs(t, err, context.Canceled)

		_, err = s.Load(ctx)
		require.ErrorIs(t, err, ErrConfigNotFound)
	})
}
