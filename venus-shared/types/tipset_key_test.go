package types_test

import (
	"encoding/json"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-gas/pkg/testhelpers"
	tf "github.com/filecoin-project/venus-gas/pkg/testhelpers/testflags"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

func TestTipSetKey(t *testing.T) {
	tf.UnitTest(t)

	c1 := testhelpers.CidFromString(t, "a")
	c2 := testhelpers.CidFromString(t, "b")
	c3 := testhelpers.CidFromString(t, "c")

	t.Run("empty", func(t *testing.T) {
		assert.True(t, types.EmptyTSK.IsEmpty())
		assert.True(t, types.NewTipSetKey().IsEmpty())
		assert.Equal(t, types.EmptyTSK, types.NewTipSetKey())
		assert.Empty(t, types.EmptyTSK.Cids())
		assert.Equal(t, "{ }", types.EmptyTSK.String())
	})

	t.Run("order is kept", func(t *testing.T) {
		key := types.NewTipSetKey(c1, c2, c3)
		assert.False(t, key.IsEmpty())
		assert.Equal(t, []cid.Cid{c1, c2, c3}, key.Cids())
		assert.NotEqual(t, key, types.NewTipSetKey(c3, c2, c1))
		assert.Equal(t, "{ "+c1.String()+" "+c2.String()+" "+c3.String()+" }", key.String())
	})

	t.Run("usable as map key", func(t *testing.T) {
		seen := map[types.TipSetKey]int{}
		seen[types.NewTipSetKey(c1, c2)]++
		seen[types.NewTipSetKey(c1, c2)]++
		seen[types.NewTipSetKey(c2)]++
		assert.Equal(t, 2, seen[types.NewTipSetKey(c1, c2)])
		assert.Len(t, seen, 2)
	})

	t.Run("bytes", func(t *testing.T) {
		key := types.NewTipSetKey(c1, c2)
		decoded, err := types.TipSetKeyFromBytes(key.Bytes())
		require.NoError(t, err)
		assert.Equal(t, key, decoded)

		_, err = types.TipSetKeyFromBytes(append(key.Bytes(), 0xff))
		assert.Error(t, err)
		_, err = types.TipSetKeyFromBytes([]byte{0x01})
		assert.Error(t, err)

		decoded, err = types.TipSetKeyFromBytes(nil)
		require.NoError(t, err)
		assert.True(t, decoded.IsEmpty())
	})

	t.Run("json", func(t *testing.T) {
		key := types.NewTipSetKey(c1, c2)
		data, err := json.Marshal(key)
		require.NoError(t, err)

		var cids []cid.Cid
		require.NoError(t, json.Unmarshal(data, &cids))
		assert.Equal(t, []cid.Cid{c1, c2}, cids)

		var decoded types.TipSetKey
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, key, decoded)

		assert.Error(t, json.Unmarshal([]byte(`"nope"`), &decoded))
	})
}
