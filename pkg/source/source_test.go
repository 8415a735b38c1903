package source

import (
	"errors"
	"testing"

	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/testutils"
	"github.com/spiceai/dualaxis/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer(t *testing.T) {
	t.Run("Resolve() - static table", testResolveStaticFunc())
	t.Run("Resolve() - table value", testResolveTableValueFunc())
	t.Run("Resolve() - not tabular", testResolveNotTabularFunc())
	t.Run("Resolve() - provider observed once per call", testResolveProviderFunc())
	t.Run("Resolve() - provider error", testResolveProviderErrorFunc())
}

func testResolveStaticFunc() func(*testing.T) {
	return func(t *testing.T) {
		tbl := testutils.WeatherTable(t, "temp")
		n := NewStatic(tbl)
		assert.Equal(t, uint64(0), n.Generation())

		snapshot, err := n.Resolve()
		require.NoError(t, err)
		assert.Same(t, tbl, snapshot.Table)
		assert.Equal(t, uint64(1), snapshot.Generation)

		snapshot, err = n.Resolve()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), snapshot.Generation)
		assert.Equal(t, uint64(2), n.Generation())
	}
}

func testResolveTableValueFunc() func(*testing.T) {
	return func(t *testing.T) {
		tbl := testutils.WeatherTable(t, "temp", "hum")

		snapshot, err := NewStatic(*tbl).Resolve()
		require.NoError(t, err)
		assert.Equal(t, []string{"date", "temp", "hum"}, snapshot.Table.Names())
	}
}

func testResolveNotTabularFunc() func(*testing.T) {
	return func(t *testing.T) {
		values := []interface{}{nil, "date,temp", 42, []string{"date"}, (*table.Table)(nil)}
		for _, value := range values {
			_, err := NewStatic(value).Resolve()
			assert.True(t, validation.Is(err, validation.NotTabular), "%#v", value)
		}

		_, err := NewFromProvider(nil).Resolve()
		assert.True(t, validation.Is(err, validation.NotTabular))
	}
}

func testResolveProviderFunc() func(*testing.T) {
	return func(t *testing.T) {
		calls := 0
		tbl := testutils.WeatherTable(t, "temp")
		n := NewFromProvider(func() (interface{}, error) {
			calls++
			return tbl, nil
		})

		_, err := n.Resolve()
		require.NoError(t, err)
		assert.Equal(t, 1, calls)

		_, err = n.Resolve()
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	}
}

func testResolveProviderErrorFunc() func(*testing.T) {
	return func(t *testing.T) {
		n := NewFromProvider(func() (interface{}, error) {
			return nil, errors.New("connection refused")
		})

		_, err := n.Resolve()
		assert.EqualError(t, err, "failed to read data: connection refused")
		assert.Equal(t, validation.Reason(""), validation.ReasonOf(err))
		assert.Equal(t, uint64(0), n.Generation())
	}
}
